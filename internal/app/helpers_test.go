package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame it accepts.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	raw    []core.Frame
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

func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, m := range f.messages(t) {
		out = append(out, m["type"].(string))
	}
	return out
}

// last returns the most recent message of the given type, or nil.
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

type fakeBinaryConn struct {
	fakeConn
}

func (f *fakeBinaryConn) TrySendBinary(b core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.raw = append(f.raw, b)
	return nil
}
