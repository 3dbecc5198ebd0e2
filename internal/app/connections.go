package app

import (
	"encoding/json"
	"sync"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// ConnectionHook observes registry mutations. It runs inside the registry's
// critical section and must not call back into Connections.
type ConnectionHook func(id domain.ConnectionID, active int)

// Connections maps connection ids to live control channels. Sends are
// best-effort: a failed send evicts the channel and the message is lost.
type Connections struct {
	mu      sync.Mutex
	conns   map[domain.ConnectionID]core.SignalConnection
	// channels dropped after a failed send, until their reader releases them
	evicted map[domain.ConnectionID]core.SignalConnection

	onConnect    []ConnectionHook
	onDisconnect []ConnectionHook
}

func NewConnections() *Connections {
	return &Connections{
		conns:   make(map[domain.ConnectionID]core.SignalConnection),
		evicted: make(map[domain.ConnectionID]core.SignalConnection),
	}
}

func (c *Connections) OnConnect(h ConnectionHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onConnect = append(c.onConnect, h)
}

func (c *Connections) OnDisconnect(h ConnectionHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = append(c.onDisconnect, h)
}

// Connect registers conn under id. Re-registering an id replaces and closes
// the previous channel.
func (c *Connections) Connect(id domain.ConnectionID, conn core.SignalConnection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.conns[id]; ok && old != conn {
		old.Close()
		log.Info().Str("module", "app.connections").Str("conn", string(id)).Msg("replaced connection")
	}
	c.conns[id] = conn
	delete(c.evicted, id)
	for _, h := range c.onConnect {
		h(id, len(c.conns))
	}
	log.Info().Str("module", "app.connections").Str("conn", string(id)).Int("active", len(c.conns)).Msg("connected")
}

// Disconnect removes id if present. Calling it twice is harmless.
func (c *Connections) Disconnect(id domain.ConnectionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.conns[id]; !ok {
		return
	}
	c.removeLocked(id)
}

// Release removes id while conn is still the registered channel. It also
// reports true for a channel evicted after a failed send that nothing has
// replaced yet. A reader of a superseded connection gets false and cannot
// evict its replacement.
func (c *Connections) Release(id domain.ConnectionID, conn core.SignalConnection) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gone, ok := c.evicted[id]; ok && gone == conn {
		delete(c.evicted, id)
		return true
	}
	cur, ok := c.conns[id]
	if !ok || cur != conn {
		return false
	}
	c.removeLocked(id)
	return true
}

func (c *Connections) removeLocked(id domain.ConnectionID) {
	delete(c.conns, id)
	for _, h := range c.onDisconnect {
		h(id, len(c.conns))
	}
	log.Info().Str("module", "app.connections").Str("conn", string(id)).Int("active", len(c.conns)).Msg("disconnected")
}

// evictLocked drops a channel whose send failed and closes it so the
// adapter's pumps wind down.
func (c *Connections) evictLocked(id domain.ConnectionID, conn core.SignalConnection, err error) {
	log.Warn().Err(err).Str("module", "app.connections").Str("conn", string(id)).Msg("send failed, evicting")
	c.removeLocked(id)
	c.evicted[id] = conn
	conn.Close()
}

// CloseAll drops and closes every channel.
func (c *Connections) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, conn := range c.conns {
		c.removeLocked(id)
		conn.Close()
	}
	clear(c.evicted)
}

func (c *Connections) IsConnected(id domain.ConnectionID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.conns[id]
	return ok
}

func (c *Connections) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conns)
}

func (c *Connections) IDs() []domain.ConnectionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Keys(c.conns)
}

func (c *Connections) SendJSON(id domain.ConnectionID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.connections").Msg("sendJSON marshal")
		return
	}
	c.sendFrame(id, b, false)
}

// SendAudioChunk delivers PCM wrapped in a base64 JSON envelope.
func (c *Connections) SendAudioChunk(id domain.ConnectionID, pcm []byte, sampleRate int, format string) {
	c.SendJSON(id, core.NewAudioChunk(pcm, sampleRate, format))
}

// SendAudioBuffer delivers raw PCM on a binary-capable channel. Text-only
// channels receive the JSON envelope instead.
func (c *Connections) SendAudioBuffer(id domain.ConnectionID, pcm []byte, sampleRate int, format string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.conns[id]
	if !ok {
		return
	}
	f, binary := audioFrameFor(conn, pcm, sampleRate, format)
	if f == nil {
		return
	}
	if err := trySend(conn, f, binary); err != nil {
		c.evictLocked(id, conn, err)
	}
}

func audioFrameFor(conn core.SignalConnection, pcm []byte, sampleRate int, format string) (core.Frame, bool) {
	if _, ok := conn.(core.BinarySignalConnection); ok {
		return pcm, true
	}
	b, err := json.Marshal(core.NewAudioChunk(pcm, sampleRate, format))
	if err != nil {
		log.Error().Err(err).Str("module", "app.connections").Msg("audio chunk marshal")
		return nil, false
	}
	return b, false
}

func (c *Connections) sendFrame(id domain.ConnectionID, f core.Frame, binary bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conn, ok := c.conns[id]
	if !ok {
		return
	}
	if err := trySend(conn, f, binary); err != nil {
		c.evictLocked(id, conn, err)
	}
}

func (c *Connections) BroadcastJSON(v any) core.PublishResult {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.connections").Msg("broadcastJSON marshal")
		return core.PublishResult{}
	}
	return c.broadcast(func(core.SignalConnection) (core.Frame, bool) { return b, false })
}

func (c *Connections) BroadcastAudioChunk(pcm []byte, sampleRate int, format string) core.PublishResult {
	return c.BroadcastJSON(core.NewAudioChunk(pcm, sampleRate, format))
}

// BroadcastAudioBuffer sends raw PCM to binary-capable channels and the JSON
// envelope to the rest.
func (c *Connections) BroadcastAudioBuffer(pcm []byte, sampleRate int, format string) core.PublishResult {
	return c.broadcast(func(conn core.SignalConnection) (core.Frame, bool) {
		return audioFrameFor(conn, pcm, sampleRate, format)
	})
}

// broadcast sends to every channel, then evicts the ones that failed. One bad
// channel never stops delivery to the rest.
func (c *Connections) broadcast(frameFor func(core.SignalConnection) (core.Frame, bool)) core.PublishResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := core.PublishResult{}
	failed := make(map[domain.ConnectionID]error)
	for id, conn := range c.conns {
		f, binary := frameFor(conn)
		if f == nil {
			continue
		}
		if err := trySend(conn, f, binary); err != nil {
			failed[id] = err
			continue
		}
		res.SentTo++
	}
	for id, err := range failed {
		c.evictLocked(id, c.conns[id], err)
		res.Dropped = append(res.Dropped, id)
	}
	log.Debug().Str("module", "app.connections").Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func trySend(conn core.SignalConnection, f core.Frame, binary bool) error {
	if binary {
		return conn.(core.BinarySignalConnection).TrySendBinary(f)
	}
	return conn.TrySend(f)
}
