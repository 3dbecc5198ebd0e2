package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Sink receives every event a user's stream emits, in order.
type Sink func(uid domain.UserID, ev Event)

// ExitFunc runs once when a user's task ends, however it ends.
type ExitFunc func(uid domain.UserID, err error)

type task struct {
	stream Stream
	cancel context.CancelFunc
}

// Runner supervises one stream task per user.
type Runner struct {
	engine Engine

	mu      sync.Mutex
	tasks   map[domain.UserID]*task
	stopped bool
	wg      conc.WaitGroup
}

func NewRunner(engine Engine) *Runner {
	return &Runner{
		engine: engine,
		tasks:  make(map[domain.UserID]*task),
	}
}

// Start opens a stream for spec.UserID and pumps its events into sink until
// the stream ends, Stop is called or ctx is cancelled. onExit always runs,
// including when the engine panics.
func (r *Runner) Start(ctx context.Context, spec Spec, sink Sink, onExit ExitFunc) error {
	uid := spec.UserID

	tctx, cancel := context.WithCancel(ctx)
	// the reserved slot carries cancel so Stop reaches a session still opening
	reserved := &task{cancel: cancel}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		cancel()
		return ErrStopped
	}
	if _, ok := r.tasks[uid]; ok {
		r.mu.Unlock()
		cancel()
		return ErrRunning
	}
	r.tasks[uid] = reserved
	r.mu.Unlock()

	stream, err := r.engine.Open(tctx, spec)
	if err != nil {
		cancel()
		r.mu.Lock()
		if r.tasks[uid] == reserved {
			delete(r.tasks, uid)
		}
		r.mu.Unlock()
		return fmt.Errorf("open stream for %s: %w", uid, err)
	}

	t := &task{stream: stream, cancel: cancel}
	r.mu.Lock()
	if r.stopped || tctx.Err() != nil || r.tasks[uid] != reserved {
		if r.tasks[uid] == reserved {
			delete(r.tasks, uid)
		}
		stopped := r.stopped
		r.mu.Unlock()
		cancel()
		_ = stream.Close()
		if stopped {
			return ErrStopped
		}
		return ErrCancelled
	}
	r.tasks[uid] = t
	r.mu.Unlock()

	log.Info().Str("module", "pipeline").Str("user", string(uid)).
		Str("source", string(spec.Source)).Str("target", string(spec.Target)).
		Str("voice", spec.Voice).Msg("session started")

	r.wg.Go(func() {
		var pc panics.Catcher
		var runErr error
		defer func() {
			cancel()
			_ = stream.Close()
			r.mu.Lock()
			if r.tasks[uid] == t {
				delete(r.tasks, uid)
			}
			r.mu.Unlock()
			if rec := pc.Recovered(); rec != nil {
				runErr = rec.AsError()
				log.Error().Str("module", "pipeline").Str("user", string(uid)).
					Err(runErr).Msg("session panicked")
			}
			log.Info().Str("module", "pipeline").Str("user", string(uid)).Msg("session ended")
			if onExit != nil {
				onExit(uid, runErr)
			}
		}()
		pc.Try(func() { runErr = pump(tctx, stream, uid, sink) })
	})
	return nil
}

func pump(ctx context.Context, stream Stream, uid domain.UserID, sink Sink) error {
	events := stream.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			sink(uid, ev)
		}
	}
}

// Feed forwards inbound audio to the user's stream.
func (r *Runner) Feed(uid domain.UserID, payload []byte) error {
	r.mu.Lock()
	t, ok := r.tasks[uid]
	r.mu.Unlock()
	if !ok || t.stream == nil {
		return ErrNoSession
	}
	return t.stream.Feed(payload)
}

// Stop cancels the user's task, including one whose stream is still
// opening. It does not wait for it to exit.
func (r *Runner) Stop(uid domain.UserID) bool {
	r.mu.Lock()
	t, ok := r.tasks[uid]
	r.mu.Unlock()
	if !ok {
		return false
	}
	t.cancel()
	return true
}

func (r *Runner) Running(uid domain.UserID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[uid]
	return ok
}

func (r *Runner) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// Shutdown cancels every task and waits for all of them to exit.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	r.stopped = true
	for _, t := range r.tasks {
		t.cancel()
	}
	r.mu.Unlock()
	r.wg.Wait()
}
