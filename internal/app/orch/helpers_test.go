package orch

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Tandem/internal/app"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   error
	closed bool
}

func (f *fakeConn) TrySend(b core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.frames = append(f.frames, b)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) failWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, b := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(b, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) last(t *testing.T, typ core.MessageType) map[string]any {
	t.Helper()
	msgs := f.messages(t)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i]["type"] == string(typ) {
			return msgs[i]
		}
	}
	return nil
}

func (f *fakeConn) has(t *testing.T, typ core.MessageType) func() bool {
	return func() bool { return f.last(t, typ) != nil }
}

// fakeMedia fires its callbacks on demand.
type fakeMedia struct {
	mu          sync.Mutex
	closed      bool
	onClosed    func()
	onConnected func()
	offers      []webrtc.SessionDescription
}

func (m *fakeMedia) Start(context.Context) error { return nil }

func (m *fakeMedia) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cb := m.onClosed
	m.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (m *fakeMedia) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *fakeMedia) ApplyOfferAndCreateAnswer(offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offers = append(m.offers, offer)
	return &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 answer"}, nil
}

func (m *fakeMedia) OnTrack(func(context.Context, *webrtc.TrackRemote, *webrtc.RTPReceiver)) {}

func (m *fakeMedia) OnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

func (m *fakeMedia) OnClosed(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onClosed = fn
}

func (m *fakeMedia) connect() {
	m.mu.Lock()
	cb := m.onConnected
	m.mu.Unlock()
	cb()
}

// engine hands out one controllable stream per user.
type engine struct {
	mu      sync.Mutex
	streams map[domain.UserID]*stream
}

type stream struct {
	events chan pipeline.Event
	once   sync.Once
}

func (s *stream) Feed([]byte) error { return nil }
func (s *stream) Events() <-chan pipeline.Event { return s.events }
func (s *stream) Close() error {
	s.once.Do(func() { close(s.events) })
	return nil
}

func (e *engine) Open(_ context.Context, spec pipeline.Spec) (pipeline.Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &stream{events: make(chan pipeline.Event, 8)}
	e.streams[spec.UserID] = s
	return s, nil
}

func (e *engine) stream(uid domain.UserID) *stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streams[uid]
}

type fixture struct {
	orch   *Orchestrator
	engine *engine
	media  map[domain.UserID]*fakeMedia
	mu     sync.Mutex
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		engine: &engine{streams: make(map[domain.UserID]*stream)},
		media:  make(map[domain.UserID]*fakeMedia),
	}
	cfg := app.DefaultRelayConfig()
	f.orch = New(context.Background(), app.NewConnections(), app.NewRoomManager(), cfg, f.engine,
		func(uid domain.UserID) (core.MediaConnection, error) {
			m := &fakeMedia{}
			f.mu.Lock()
			f.media[uid] = m
			f.mu.Unlock()
			return m, nil
		})
	t.Cleanup(f.orch.Runner.Shutdown)
	return f
}

func (f *fixture) mediaOf(uid domain.UserID) *fakeMedia {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.media[uid]
}

// join attaches a control channel and joins through it.
func (f *fixture) join(t *testing.T, uid string, lang string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	cid := domain.ConnectionID("c-" + uid)
	f.orch.AttachSignal(cid, conn)
	f.orch.HandleInbound(cid, core.JoinRequest{UserID: uid, Language: lang})
	require.NotNil(t, conn.last(t, core.TypeJoinResult), "join reply")
	return conn
}

const (
	wait = time.Second
	tick = 5 * time.Millisecond
)
