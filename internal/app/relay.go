package app

import (
	"sync"
	"time"

	"github.com/dkeye/Tandem/internal/audio"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/dkeye/Tandem/internal/pipeline"
	"github.com/rs/zerolog/log"
)

type AudioMode string

const (
	AudioModeJSON   AudioMode = "json"
	AudioModeBinary AudioMode = "binary"
)

// AudioFormat tags every outbound audio chunk.
const AudioFormat = "pcm_s16le"

type RelayConfig struct {
	SpeechCooldown  time.Duration
	VolumeThreshold float64
	MaxSilentFrames int
	AudioMode       AudioMode
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		SpeechCooldown:  time.Second,
		VolumeThreshold: audio.DefaultVolumeThreshold,
		MaxSilentFrames: audio.DefaultMaxSilentFrames,
		AudioMode:       AudioModeJSON,
	}
}

// SessionRelay turns pipeline events of one user into control messages for
// that user, their partner and their room.
//
// The relay never holds its own lock while calling Connections or
// RoomManager.
type SessionRelay struct {
	conns    *Connections
	rooms    *RoomManager
	cooldown *RateLimiter
	cfg      RelayConfig

	mu    sync.Mutex
	gates map[domain.UserID]*audio.Gate
	synth map[domain.UserID]bool
}

func NewSessionRelay(conns *Connections, rooms *RoomManager, cfg RelayConfig) *SessionRelay {
	r := &SessionRelay{
		conns:    conns,
		rooms:    rooms,
		cooldown: NewCooldown(cfg.SpeechCooldown),
		cfg:      cfg,
		gates:    make(map[domain.UserID]*audio.Gate),
		synth:    make(map[domain.UserID]bool),
	}
	rooms.OnUserRemoved(func(u domain.User, _ domain.RoomID) { r.forget(u.ID) })
	return r
}

func (r *SessionRelay) forget(uid domain.UserID) {
	r.cooldown.Forget(uid)
	r.mu.Lock()
	delete(r.gates, uid)
	delete(r.synth, uid)
	r.mu.Unlock()
}

// route resolves the user and, when matched, the partner from one consistent
// view of the matcher.
func (r *SessionRelay) route(uid domain.UserID) (self, partner domain.User, paired, ok bool) {
	if room, found := r.rooms.GetUserRoom(uid); found {
		self, _ = room.Member(uid)
		partner, paired = room.Partner(uid)
		return self, partner, paired, true
	}
	self, ok = r.rooms.GetUser(uid)
	return self, domain.User{}, false, ok
}

func botRoute(from, to domain.User) core.BotRoute {
	return core.BotRoute{
		FromUser:     from.ID,
		ToUser:       to.ID,
		FromLanguage: from.Language,
		ToLanguage:   to.Language,
	}
}

// Matched announces a new room to both members.
func (r *SessionRelay) Matched(room domain.RoomSnapshot) {
	for _, u := range room.Users {
		p, ok := room.Partner(u.ID)
		if !ok {
			continue
		}
		r.conns.SendJSON(u.ConnectionID, core.RoomMatched{
			Envelope:        core.NewEnvelope(core.TypeRoomMatched),
			UserID:          u.ID,
			RoomID:          room.ID,
			PartnerID:       p.ID,
			PartnerLanguage: p.Language,
		})
	}
	log.Info().Str("module", "app.relay").Str("room", string(room.ID)).Msg("room matched")
}

// Ready announces that the user's translation session is live.
func (r *SessionRelay) Ready(uid domain.UserID) {
	self, partner, paired, ok := r.route(uid)
	if !ok || !paired {
		return
	}
	r.conns.SendJSON(self.ConnectionID, core.SessionReady{
		Envelope:        core.NewEnvelope(core.TypeBidirectionalReady),
		UserID:          self.ID,
		PartnerID:       partner.ID,
		RoomID:          self.RoomID,
		UserLanguage:    self.Language,
		PartnerLanguage: partner.Language,
		Message:         "translation session ready",
	})
	r.conns.SendJSON(partner.ConnectionID, core.SessionReady{
		Envelope:        core.NewEnvelope(core.TypePartnerReady),
		UserID:          partner.ID,
		PartnerID:       self.ID,
		RoomID:          self.RoomID,
		UserLanguage:    partner.Language,
		PartnerLanguage: self.Language,
		Message:         "partner connected",
	})
}

// Speech relays a transcription. It reports false when the event was dropped,
// either for an unknown user or by the per-user cooldown.
func (r *SessionRelay) Speech(uid domain.UserID, text string, source domain.Language) bool {
	self, partner, paired, ok := r.route(uid)
	if !ok {
		return false
	}
	if !r.cooldown.Allow(uid) {
		log.Debug().Str("module", "app.relay").Str("user", string(uid)).Msg("speech suppressed by cooldown")
		return false
	}

	lang := source
	if lang == "" || lang == domain.AutoDetect {
		lang = domain.DetectLanguage(text)
	}
	if lang == domain.AutoDetect {
		lang = self.Language
	}

	r.rooms.SetSpeakingStatus(uid, true)
	r.conns.SendJSON(self.ConnectionID, core.UserSpeech{
		Envelope: core.NewEnvelope(core.TypeUserSpeech),
		UserID:   uid,
		Text:     text,
		Language: lang,
	})
	if paired {
		r.conns.SendJSON(partner.ConnectionID, core.BotTranscription{
			Envelope:         core.NewEnvelope(core.TypeBotTranscription),
			BotRoute:         botRoute(self, partner),
			OriginalText:     text,
			OriginalLanguage: lang,
		})
	}
	return true
}

// SynthesisStarted opens the user's audio window. Events for users already
// removed leave no relay state behind.
func (r *SessionRelay) SynthesisStarted(uid domain.UserID) {
	if _, ok := r.rooms.GetUser(uid); !ok {
		return
	}
	r.mu.Lock()
	r.synth[uid] = true
	r.gateLocked(uid).Reset()
	r.mu.Unlock()
	r.synthesis(uid, true)
}

func (r *SessionRelay) SynthesisStopped(uid domain.UserID) {
	r.mu.Lock()
	delete(r.synth, uid)
	r.mu.Unlock()
	r.synthesis(uid, false)
}

func (r *SessionRelay) synthesis(uid domain.UserID, active bool) {
	self, partner, paired, ok := r.route(uid)
	if !ok {
		return
	}
	r.rooms.SetSpeakingStatus(uid, active)

	selfType, partnerType, msg := core.TypeAudioStopped, core.TypeTTSStopped, "translation audio finished"
	if active {
		selfType, partnerType, msg = core.TypeAudioStarted, core.TypeTTSStarted, "translation audio playing"
	}
	r.conns.SendJSON(self.ConnectionID, core.UserStatus{
		Envelope: core.NewEnvelope(selfType),
		UserID:   uid,
		Message:  msg,
	})
	if paired {
		r.conns.SendJSON(partner.ConnectionID, core.BotStatus{
			Envelope: core.NewEnvelope(partnerType),
			BotRoute: botRoute(self, partner),
			Message:  msg,
		})
	}
}

func (r *SessionRelay) gateLocked(uid domain.UserID) *audio.Gate {
	g, ok := r.gates[uid]
	if !ok {
		g = audio.NewGate(r.cfg.VolumeThreshold, r.cfg.MaxSilentFrames)
		r.gates[uid] = g
	}
	return g
}

// AudioFrame forwards synthesized audio to the user's own connection while
// synthesis is active. Long silent runs are dropped; a final frame always
// passes and is faded out.
func (r *SessionRelay) AudioFrame(uid domain.UserID, pcm []byte, sampleRate int, final bool) bool {
	r.mu.Lock()
	if !r.synth[uid] {
		r.mu.Unlock()
		return false
	}
	gate := r.gateLocked(uid)
	r.mu.Unlock()

	if final {
		pcm = audio.FadeOut(pcm)
		gate.Reset()
	} else if !gate.Admit(pcm) {
		return false
	}

	self, ok := r.rooms.GetUser(uid)
	if !ok {
		return false
	}
	if r.cfg.AudioMode == AudioModeBinary {
		r.conns.SendAudioBuffer(self.ConnectionID, pcm, sampleRate, AudioFormat)
	} else {
		r.conns.SendAudioChunk(self.ConnectionID, pcm, sampleRate, AudioFormat)
	}
	return true
}

// Translation delivers translated text to the partner, echoes it to the
// speaker and logs it to every room member.
func (r *SessionRelay) Translation(uid domain.UserID, text string) {
	room, found := r.rooms.GetUserRoom(uid)
	if !found {
		return
	}
	self, _ := room.Member(uid)
	partner, paired := room.Partner(uid)
	if !paired {
		return
	}
	route := botRoute(self, partner)

	r.conns.SendJSON(partner.ConnectionID, core.BotTranslation{
		Envelope:       core.NewEnvelope(core.TypeBotTranslation),
		BotRoute:       route,
		TranslatedText: text,
		TargetLanguage: partner.Language,
	})
	r.conns.SendJSON(self.ConnectionID, core.TranslationGenerated{
		Envelope:       core.NewEnvelope(core.TypeTranslationGenerated),
		UserID:         uid,
		TranslatedText: text,
		TargetLanguage: partner.Language,
	})
	for _, m := range room.Users {
		r.conns.SendJSON(m.ConnectionID, core.RoomTranslation{
			Envelope:    core.NewEnvelope(core.TypeRoomTranslation),
			BotRoute:    route,
			RoomID:      room.ID,
			Translation: text,
		})
	}
}

// Disconnect tells the partner, then removes the user from the matcher.
// It returns the room the user held.
func (r *SessionRelay) Disconnect(uid domain.UserID) (domain.RoomID, bool) {
	if partner, ok := r.rooms.GetTranslationPartner(uid); ok {
		r.conns.SendJSON(partner.ConnectionID, core.PartnerDisconnected{
			Envelope:  core.NewEnvelope(core.TypePartnerDisconnected),
			UserID:    partner.ID,
			PartnerID: uid,
			Message:   "your translation partner has left",
		})
	}
	return r.rooms.RemoveUser(uid)
}

// Dispatch routes one pipeline event. It is the Sink handed to the runner.
func (r *SessionRelay) Dispatch(uid domain.UserID, ev pipeline.Event) {
	switch e := ev.(type) {
	case pipeline.SpeechRecognized:
		r.Speech(uid, e.Text, e.Source)
	case pipeline.SynthesisStarted:
		r.SynthesisStarted(uid)
	case pipeline.SynthesisStopped:
		r.SynthesisStopped(uid)
	case pipeline.AudioFrame:
		r.AudioFrame(uid, e.PCM, e.SampleRate, e.Final)
	case pipeline.TranslationReady:
		r.Translation(uid, e.Text)
	default:
		log.Warn().Str("module", "app.relay").Str("user", string(uid)).Msgf("unhandled event %T", ev)
	}
}
