package app

import (
	"sync"

	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type mediaEntry struct {
	PeerID string
	Conn   core.MediaConnection
}

// MediaRegistry holds the single live media connection of each user.
type MediaRegistry struct {
	mu      sync.RWMutex
	entries map[domain.UserID]*mediaEntry
}

func NewMediaRegistry() *MediaRegistry {
	return &MediaRegistry{entries: make(map[domain.UserID]*mediaEntry)}
}

// Bind stores mc for uid and returns its peer id. A previous connection is
// unbound first and closed outside the lock.
func (r *MediaRegistry) Bind(uid domain.UserID, mc core.MediaConnection) string {
	entry := &mediaEntry{PeerID: "pc_" + uuid.NewString(), Conn: mc}

	r.mu.Lock()
	old, replaced := r.entries[uid]
	r.entries[uid] = entry
	r.mu.Unlock()

	if replaced && old.Conn != mc {
		old.Conn.Close()
		log.Info().Str("module", "app.media").Str("user", string(uid)).Str("pc_id", old.PeerID).Msg("replaced media connection")
	}
	log.Info().Str("module", "app.media").Str("user", string(uid)).Str("pc_id", entry.PeerID).Msg("bound media")
	return entry.PeerID
}

func (r *MediaRegistry) Get(uid domain.UserID) (core.MediaConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[uid]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

// Release unbinds uid only while mc is still its connection.
func (r *MediaRegistry) Release(uid domain.UserID, mc core.MediaConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[uid]
	if !ok || e.Conn != mc {
		return false
	}
	delete(r.entries, uid)
	return true
}

// Unbind removes and closes the user's connection.
func (r *MediaRegistry) Unbind(uid domain.UserID) bool {
	r.mu.Lock()
	e, ok := r.entries[uid]
	delete(r.entries, uid)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.Conn.Close()
	log.Info().Str("module", "app.media").Str("user", string(uid)).Str("pc_id", e.PeerID).Msg("unbound media")
	return true
}

func (r *MediaRegistry) Users() []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.entries)
}

func (r *MediaRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
