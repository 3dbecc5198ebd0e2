package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
)

// Silent is an Engine that accepts audio and never produces events.
// It keeps the server usable without an external translation backend.
type Silent struct{}

func (Silent) Open(ctx context.Context, _ Spec) (Stream, error) {
	s := &silentStream{events: make(chan Event)}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}

type silentStream struct {
	events chan Event
	once   sync.Once
	closed atomic.Bool
	bytes  atomic.Int64
}

func (s *silentStream) Feed(payload []byte) error {
	if s.closed.Load() {
		return ErrStreamClosed
	}
	s.bytes.Add(int64(len(payload)))
	return nil
}

func (s *silentStream) Events() <-chan Event { return s.events }

func (s *silentStream) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.events)
	})
	return nil
}
