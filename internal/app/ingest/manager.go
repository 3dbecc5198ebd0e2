package ingest

import (
	"context"
	"sync"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
)

// Manager keeps at most one running pump per user.
type Manager struct {
	mu    sync.RWMutex
	pumps map[domain.UserID]*pump
}

func NewManager() *Manager {
	return &Manager{pumps: make(map[domain.UserID]*pump)}
}

// Start launches a pump for uid, replacing any previous one.
func (m *Manager) Start(ctx context.Context, uid domain.UserID, src Source, feed FeedFunc) {
	logger := log.With().
		Str("module", "ingest").
		Str("user", string(uid)).
		Logger()

	pctx, cancel := context.WithCancel(ctx)
	p := &pump{uid: uid, src: src, feed: feed, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if old, ok := m.pumps[uid]; ok {
		logger.Info().Msg("replacing existing ingest")
		old.cancel()
	}
	m.pumps[uid] = p
	m.mu.Unlock()

	logger.Info().Msg("starting ingest loop")
	go func() {
		p.loop(pctx, &logger)
		m.mu.Lock()
		if m.pumps[uid] == p {
			delete(m.pumps, uid)
		}
		m.mu.Unlock()
	}()
}

// Stop cancels the user's pump. A pump blocked in a read exits once the
// source is closed.
func (m *Manager) Stop(uid domain.UserID) bool {
	m.mu.Lock()
	p, ok := m.pumps[uid]
	if ok {
		delete(m.pumps, uid)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}
	p.cancel()
	return true
}

func (m *Manager) Has(uid domain.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.pumps[uid]
	return ok
}
