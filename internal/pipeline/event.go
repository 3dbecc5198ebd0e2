package pipeline

import "github.com/dkeye/Tandem/internal/domain"

// Event is produced by a translation stream. The set of variants is closed.
type Event interface {
	event()
}

// SpeechRecognized carries a final transcription of the user's speech.
// Source is the language reported by the recognizer and may be empty.
type SpeechRecognized struct {
	Text   string
	Source domain.Language
}

type SynthesisStarted struct{}

type SynthesisStopped struct{}

// AudioFrame is a chunk of synthesized 16-bit little-endian mono PCM.
// Final marks the last frame of an utterance.
type AudioFrame struct {
	PCM        []byte
	SampleRate int
	Final      bool
}

// TranslationReady carries translated text for the partner.
type TranslationReady struct {
	Text string
}

func (SpeechRecognized) event() {}
func (SynthesisStarted) event() {}
func (SynthesisStopped) event() {}
func (AudioFrame) event()       {}
func (TranslationReady) event() {}
