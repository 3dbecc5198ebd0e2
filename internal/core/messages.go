package core

import (
	"encoding/base64"
	"time"

	"github.com/dkeye/Tandem/internal/domain"
)

// MessageType is the "type" tag carried by every control message.
type MessageType string

// Outbound message tags.
const (
	TypePong                 MessageType = "pong"
	TypeError                MessageType = "error"
	TypeJoinResult           MessageType = "join_result"
	TypeLeft                 MessageType = "left"
	TypeStats                MessageType = "stats"
	TypeRoomMatched          MessageType = "room_matched"
	TypeAudio                MessageType = "audio"
	TypeUserSpeech           MessageType = "user_speech"
	TypeBotTranscription     MessageType = "bot_transcription"
	TypeBotTranslation       MessageType = "bot_translation"
	TypeTranslationGenerated MessageType = "translation_generated"
	TypeRoomTranslation      MessageType = "room_translation"
	TypeAudioStarted         MessageType = "translation_audio_started"
	TypeAudioStopped         MessageType = "translation_audio_stopped"
	TypeTTSStarted           MessageType = "tts_started"
	TypeTTSStopped           MessageType = "tts_stopped"
	TypeBidirectionalReady   MessageType = "bidirectional_ready"
	TypePartnerReady         MessageType = "partner_ready"
	TypePartnerDisconnected  MessageType = "partner_disconnected"
	TypeServerShutdown       MessageType = "server_shutdown"
)

// Envelope is embedded in every outbound message.
type Envelope struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
}

func NewEnvelope(t MessageType) Envelope {
	return Envelope{Type: t, Timestamp: time.Now().UnixMilli()}
}

type ErrorMessage struct {
	Envelope
	Error string `json:"error"`
}

func NewError(msg string) ErrorMessage {
	return ErrorMessage{Envelope: NewEnvelope(TypeError), Error: msg}
}

// AudioChunk carries base64 PCM for JSON-only consumers such as browsers.
type AudioChunk struct {
	Envelope
	Data       string `json:"data"`
	SampleRate int    `json:"sample_rate"`
	Format     string `json:"format"`
}

func NewAudioChunk(pcm []byte, sampleRate int, format string) AudioChunk {
	return AudioChunk{
		Envelope:   NewEnvelope(TypeAudio),
		Data:       base64.StdEncoding.EncodeToString(pcm),
		SampleRate: sampleRate,
		Format:     format,
	}
}

// JoinResult is both the HTTP join response and the control channel reply.
type JoinResult struct {
	UserID          domain.UserID       `json:"user_id"`
	ConnectionID    domain.ConnectionID `json:"connection_id"`
	Language        domain.Language     `json:"language"`
	Status          string              `json:"status"`
	RoomID          domain.RoomID       `json:"room_id,omitempty"`
	PartnerID       domain.UserID       `json:"partner_id,omitempty"`
	PartnerLanguage domain.Language     `json:"partner_language,omitempty"`
}

const (
	StatusWaiting = "waiting"
	StatusMatched = "matched"
)

type JoinResultMessage struct {
	Envelope
	JoinResult
}

type Stats struct {
	Waiting     map[domain.Language]int `json:"waiting"`
	ActiveRooms int                     `json:"active_rooms"`
	Users       int                     `json:"users"`
	Connections int                     `json:"connections"`
}

type StatsMessage struct {
	Envelope
	Stats
}

type LeftMessage struct {
	Envelope
	UserID domain.UserID `json:"user_id"`
	RoomID domain.RoomID `json:"room_id,omitempty"`
}

type RoomMatched struct {
	Envelope
	UserID          domain.UserID   `json:"user_id"`
	RoomID          domain.RoomID   `json:"room_id"`
	PartnerID       domain.UserID   `json:"partner_id"`
	PartnerLanguage domain.Language `json:"partner_language"`
}

// UserStatus is a self-addressed status line.
type UserStatus struct {
	Envelope
	UserID  domain.UserID `json:"user_id"`
	Message string        `json:"message,omitempty"`
}

type UserSpeech struct {
	Envelope
	UserID   domain.UserID   `json:"user_id"`
	Text     string          `json:"text"`
	Language domain.Language `json:"language"`
}

// BotRoute tags partner-bound coordination messages with both ends.
type BotRoute struct {
	FromUser     domain.UserID   `json:"from_user"`
	ToUser       domain.UserID   `json:"to_user"`
	FromLanguage domain.Language `json:"from_language"`
	ToLanguage   domain.Language `json:"to_language"`
}

type BotTranscription struct {
	Envelope
	BotRoute
	OriginalText     string          `json:"original_text"`
	OriginalLanguage domain.Language `json:"original_language"`
}

type BotStatus struct {
	Envelope
	BotRoute
	Message string `json:"message"`
}

type BotTranslation struct {
	Envelope
	BotRoute
	TranslatedText string          `json:"translated_text"`
	TargetLanguage domain.Language `json:"target_language"`
}

type TranslationGenerated struct {
	Envelope
	UserID         domain.UserID   `json:"user_id"`
	TranslatedText string          `json:"translated_text"`
	TargetLanguage domain.Language `json:"target_language"`
}

type RoomTranslation struct {
	Envelope
	BotRoute
	RoomID      domain.RoomID `json:"room_id"`
	Translation string        `json:"translation"`
}

type SessionReady struct {
	Envelope
	UserID          domain.UserID   `json:"user_id"`
	PartnerID       domain.UserID   `json:"partner_id"`
	RoomID          domain.RoomID   `json:"room_id"`
	UserLanguage    domain.Language `json:"user_language"`
	PartnerLanguage domain.Language `json:"partner_language"`
	Message         string          `json:"message"`
}

type PartnerDisconnected struct {
	Envelope
	UserID    domain.UserID `json:"user_id"`
	PartnerID domain.UserID `json:"partner_id"`
	Message   string        `json:"message"`
}

type ServerShutdown struct {
	Envelope
	Message string `json:"message"`
}
