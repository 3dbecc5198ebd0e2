package core

import (
	"errors"

	"github.com/dkeye/Tandem/internal/domain"
)

// Frame is a raw payload handed to a transport.
type Frame []byte

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// SignalConnection abstracts the control channel transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend must not block: a full queue is reported as ErrBackpressure.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// BinarySignalConnection is a control channel that can also carry raw
// binary frames (e.g. PCM audio) next to JSON text frames.
type BinarySignalConnection interface {
	SignalConnection
	TrySendBinary(Frame) error
}

// PublishResult reports fan-out delivery stats.
type PublishResult struct {
	SentTo  int
	Dropped []domain.ConnectionID
}
