// Package pipeline defines the boundary to the speech recognition,
// translation and synthesis engine, and runs one stream per user.
package pipeline

import (
	"context"
	"errors"

	"github.com/dkeye/Tandem/internal/domain"
)

var (
	ErrStreamClosed = errors.New("pipeline: stream closed")
	ErrNoSession    = errors.New("pipeline: no session for user")
	ErrRunning      = errors.New("pipeline: session already running")
	ErrStopped      = errors.New("pipeline: runner stopped")
	ErrCancelled    = errors.New("pipeline: session stopped while opening")
)

// Spec describes one user's translation session.
type Spec struct {
	UserID      domain.UserID
	Source      domain.Language
	Target      domain.Language
	Voice       string
	Instruction string
}

// NewSpec fills voice and system instruction from the language table.
func NewSpec(uid domain.UserID, source, target domain.Language) Spec {
	return Spec{
		UserID:      uid,
		Source:      source,
		Target:      target,
		Voice:       Voice(source),
		Instruction: SystemInstruction(source, target),
	}
}

type Engine interface {
	Open(ctx context.Context, spec Spec) (Stream, error)
}

// Stream consumes the user's inbound audio and emits events until closed.
// Events is closed by the stream once it has stopped producing.
type Stream interface {
	Feed(payload []byte) error
	Events() <-chan Event
	Close() error
}
