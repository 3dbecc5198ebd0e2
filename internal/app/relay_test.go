package app

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/stretchr/testify/require"
)

type relayFixture struct {
	conns  *Connections
	rooms  *RoomManager
	relay  *SessionRelay
	clock  *manualClock
	alice  *fakeConn
	bob    *fakeBinaryConn
	roomID domain.RoomID
}

// newRelayFixture matches alice (en) with bob (es). Bob's channel is
// binary-capable.
func newRelayFixture(t *testing.T, cfg RelayConfig) *relayFixture {
	t.Helper()
	f := &relayFixture{
		conns: NewConnections(),
		rooms: newTestRoomManager(),
		clock: &manualClock{t: time.Unix(1700000000, 0)},
		alice: &fakeConn{},
		bob:   &fakeBinaryConn{},
	}
	f.relay = NewSessionRelay(f.conns, f.rooms, cfg)
	f.relay.cooldown.now = f.clock.Now

	f.conns.Connect("c-alice", f.alice)
	f.conns.Connect("c-bob", f.bob)
	_, err := f.rooms.AddUser("alice", "c-alice", domain.English)
	require.NoError(t, err)
	f.roomID, err = f.rooms.AddUser("bob", "c-bob", domain.Spanish)
	require.NoError(t, err)
	require.NotEmpty(t, f.roomID)
	return f
}

func pcmOf(v int16, n int) []byte {
	b := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}

func TestSessionRelay_Matched(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())
	room, ok := f.rooms.GetRoom(f.roomID)
	req.True(ok)

	f.relay.Matched(room)

	a := f.alice.last(t, core.TypeRoomMatched)
	req.NotNil(a)
	req.Equal("bob", a["partner_id"])
	req.Equal("es", a["partner_language"])
	req.Equal(string(f.roomID), a["room_id"])
	b := f.bob.last(t, core.TypeRoomMatched)
	req.Equal("alice", b["partner_id"])
	req.Equal("en", b["partner_language"])
}

func TestSessionRelay_SpeechCooldown(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	// Given a forwarded utterance
	req.True(f.relay.Speech("alice", "hello there", domain.English))

	// When the next one arrives inside the cooldown
	f.clock.Advance(500 * time.Millisecond)
	req.False(f.relay.Speech("alice", "again", domain.English))

	// Then only one pair of messages went out
	req.Equal([]string{string(core.TypeUserSpeech)}, f.alice.types(t))
	req.Equal([]string{string(core.TypeBotTranscription)}, f.bob.types(t))

	tr := f.bob.last(t, core.TypeBotTranscription)
	req.Equal("alice", tr["from_user"])
	req.Equal("bob", tr["to_user"])
	req.Equal("en", tr["from_language"])
	req.Equal("es", tr["to_language"])
	req.Equal("hello there", tr["original_text"])

	u, _ := f.rooms.GetUser("alice")
	req.True(u.Speaking)

	// the partner has its own window
	req.True(f.relay.Speech("bob", "hola", domain.Spanish))

	f.clock.Advance(600 * time.Millisecond)
	req.True(f.relay.Speech("alice", "third", domain.English))
}

func TestSessionRelay_SpeechDetectsLanguage(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	req.True(f.relay.Speech("alice", "Hola, ¿cómo estás? Me gustaría reservar una mesa para dos personas esta noche.", domain.AutoDetect))
	req.Equal("es", f.alice.last(t, core.TypeUserSpeech)["language"])

	// undetectable text falls back to the user's language
	f.clock.Advance(2 * time.Second)
	req.True(f.relay.Speech("alice", "123", ""))
	req.Equal("en", f.alice.last(t, core.TypeUserSpeech)["language"])
}

func TestSessionRelay_SpeechUnknownUser(t *testing.T) {
	f := newRelayFixture(t, DefaultRelayConfig())
	require.False(t, f.relay.Speech("ghost", "boo", domain.English))
}

func TestSessionRelay_SynthesisStatus(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	f.relay.SynthesisStarted("alice")
	u, _ := f.rooms.GetUser("alice")
	req.True(u.Speaking)
	f.relay.SynthesisStopped("alice")
	u, _ = f.rooms.GetUser("alice")
	req.False(u.Speaking)

	req.Equal([]string{string(core.TypeAudioStarted), string(core.TypeAudioStopped)}, f.alice.types(t))
	req.Equal([]string{string(core.TypeTTSStarted), string(core.TypeTTSStopped)}, f.bob.types(t))
	req.Equal("alice", f.bob.last(t, core.TypeTTSStarted)["from_user"])
}

func TestSessionRelay_AudioOnlyWhileSynthesizing(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())
	loud := pcmOf(8000, 160)

	req.False(f.relay.AudioFrame("alice", loud, 24000, false))

	f.relay.SynthesisStarted("alice")
	req.True(f.relay.AudioFrame("alice", loud, 24000, false))
	f.relay.SynthesisStopped("alice")
	req.False(f.relay.AudioFrame("alice", loud, 24000, false))

	chunk := f.alice.last(t, core.TypeAudio)
	req.NotNil(chunk)
	req.EqualValues(24000, chunk["sample_rate"])
	req.Equal(AudioFormat, chunk["format"])
	// audio stays on the speaker's own channel
	req.Nil(f.bob.last(t, core.TypeAudio))
}

func TestSessionRelay_AudioSilenceGate(t *testing.T) {
	req := require.New(t)
	cfg := DefaultRelayConfig()
	cfg.MaxSilentFrames = 2
	f := newRelayFixture(t, cfg)
	quiet := pcmOf(5, 160)

	f.relay.SynthesisStarted("alice")
	req.True(f.relay.AudioFrame("alice", quiet, 16000, false))
	req.True(f.relay.AudioFrame("alice", quiet, 16000, false))
	req.False(f.relay.AudioFrame("alice", quiet, 16000, false))

	// the last frame of an utterance always goes out
	req.True(f.relay.AudioFrame("alice", quiet, 16000, true))
	req.True(f.relay.AudioFrame("alice", quiet, 16000, false))
}

func TestSessionRelay_BinaryAudioMode(t *testing.T) {
	req := require.New(t)
	cfg := DefaultRelayConfig()
	cfg.AudioMode = AudioModeBinary
	f := newRelayFixture(t, cfg)

	f.relay.SynthesisStarted("bob")
	final := pcmOf(10000, 100)
	req.True(f.relay.AudioFrame("bob", final, 16000, true))

	req.Len(f.bob.raw, 1)
	got := f.bob.raw[0]
	req.Len(got, len(final))
	// leading samples untouched, the tail faded to silence
	req.Equal(final[:2], []byte(got[:2]))
	req.Equal([]byte{0, 0}, []byte(got[len(got)-2:]))

	// a text-only channel still gets JSON in binary mode
	f.relay.SynthesisStarted("alice")
	req.True(f.relay.AudioFrame("alice", pcmOf(8000, 10), 16000, false))
	req.NotNil(f.alice.last(t, core.TypeAudio))
}

func TestSessionRelay_TranslationFanOut(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	f.relay.Translation("alice", "hola amigo")

	bt := f.bob.last(t, core.TypeBotTranslation)
	req.NotNil(bt)
	req.Equal("hola amigo", bt["translated_text"])
	req.Equal("es", bt["target_language"])
	req.Nil(f.alice.last(t, core.TypeBotTranslation))

	tg := f.alice.last(t, core.TypeTranslationGenerated)
	req.NotNil(tg)
	req.Equal("es", tg["target_language"])

	for _, c := range []*fakeConn{f.alice, &f.bob.fakeConn} {
		rt := c.last(t, core.TypeRoomTranslation)
		req.NotNil(rt)
		req.Equal(string(f.roomID), rt["room_id"])
		req.Equal("hola amigo", rt["translation"])
	}
}

func TestSessionRelay_Ready(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	f.relay.Ready("bob")

	self := f.bob.last(t, core.TypeBidirectionalReady)
	req.NotNil(self)
	req.Equal("alice", self["partner_id"])
	other := f.alice.last(t, core.TypePartnerReady)
	req.NotNil(other)
	req.Equal("bob", other["partner_id"])
}

func TestSessionRelay_Disconnect(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())
	f.relay.SynthesisStarted("alice")
	req.True(f.relay.Speech("alice", "bye", domain.English))

	roomID, held := f.relay.Disconnect("alice")
	req.True(held)
	req.Equal(f.roomID, roomID)

	pd := f.bob.last(t, core.TypePartnerDisconnected)
	req.NotNil(pd)
	req.Equal("alice", pd["partner_id"])

	_, ok := f.rooms.GetUser("alice")
	req.False(ok)
	room, ok := f.rooms.GetRoom(f.roomID)
	req.True(ok)
	req.Len(room.Users, 1)

	// per-user state is gone
	f.relay.mu.Lock()
	_, synth := f.relay.synth["alice"]
	_, gate := f.relay.gates["alice"]
	f.relay.mu.Unlock()
	req.False(synth)
	req.False(gate)

	// the survivor has nobody left to notify
	_, held = f.relay.Disconnect("bob")
	req.True(held)
	_, ok = f.rooms.GetRoom(f.roomID)
	req.False(ok)
}

func TestSessionRelay_Dispatch(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())

	events := []pipeline.Event{
		pipeline.SpeechRecognized{Text: "good morning", Source: domain.English},
		pipeline.SynthesisStarted{},
		pipeline.AudioFrame{PCM: pcmOf(9000, 80), SampleRate: 24000},
		pipeline.SynthesisStopped{},
		pipeline.TranslationReady{Text: "buenos días"},
	}
	for _, ev := range events {
		f.relay.Dispatch("alice", ev)
	}

	req.Equal([]string{
		string(core.TypeUserSpeech),
		string(core.TypeAudioStarted),
		string(core.TypeAudio),
		string(core.TypeAudioStopped),
		string(core.TypeTranslationGenerated),
		string(core.TypeRoomTranslation),
	}, f.alice.types(t))
	req.Equal([]string{
		string(core.TypeBotTranscription),
		string(core.TypeTTSStarted),
		string(core.TypeTTSStopped),
		string(core.TypeBotTranslation),
		string(core.TypeRoomTranslation),
	}, f.bob.types(t))
}

func TestSessionRelay_LateEventsAfterRemoval(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t, DefaultRelayConfig())
	f.relay.Disconnect("alice")

	// a pipeline still draining after the user left
	f.relay.SynthesisStarted("alice")
	req.False(f.relay.AudioFrame("alice", pcmOf(8000, 160), 24000, false))

	f.relay.mu.Lock()
	defer f.relay.mu.Unlock()
	req.Empty(f.relay.synth)
	req.Empty(f.relay.gates)
}
