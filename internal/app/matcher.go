package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/Tandem/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type (
	// MatchHook fires inside the matcher's critical section right after a
	// room is created. It must not call back into RoomManager or Connections.
	MatchHook func(room domain.RoomSnapshot)
	// RemoveHook fires inside the critical section after a user is dropped.
	RemoveHook func(user domain.User, roomID domain.RoomID)
)

type waitingEntry struct {
	id  domain.UserID
	seq uint64
}

// RoomManager owns users, rooms and the per-language waiting pool.
//
// Matching: a newcomer is paired with the longest-waiting user of any other
// language; failing that, with the longest-waiting user of the same language;
// otherwise it waits. "Longest waiting" is the admission sequence, so the
// choice is deterministic for a given pool.
type RoomManager struct {
	mu      sync.RWMutex
	users   map[domain.UserID]*domain.User
	byConn  map[domain.ConnectionID]domain.UserID
	rooms   map[domain.RoomID]*domain.TranslationRoom
	waiting map[domain.Language][]waitingEntry

	seq         uint64
	roomCounter uint64
	now         func() time.Time

	onMatched []MatchHook
	onRemoved []RemoveHook
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		users:   make(map[domain.UserID]*domain.User),
		byConn:  make(map[domain.ConnectionID]domain.UserID),
		rooms:   make(map[domain.RoomID]*domain.TranslationRoom),
		waiting: make(map[domain.Language][]waitingEntry),
		now:     time.Now,
	}
}

func (m *RoomManager) OnMatched(h MatchHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMatched = append(m.onMatched, h)
}

func (m *RoomManager) OnUserRemoved(h RemoveHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemoved = append(m.onRemoved, h)
}

// AddUser admits a user and tries to match them. It returns the new room id,
// or "" when the user was queued.
func (m *RoomManager) AddUser(id domain.UserID, conn domain.ConnectionID, lang domain.Language) (domain.RoomID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; ok {
		return "", domain.ErrUserExists
	}
	if owner, ok := m.byConn[conn]; ok {
		log.Warn().Str("module", "app.matcher").Str("conn", string(conn)).Str("owner", string(owner)).Str("user", string(id)).Msg("connection already bound")
		return "", domain.ErrConnectionInUse
	}
	user := domain.NewUser(id, conn, lang, m.now())
	m.users[id] = user
	m.byConn[conn] = id
	m.seq++

	partnerID, ok := m.findPartnerLocked(lang)
	if !ok {
		m.waiting[lang] = append(m.waiting[lang], waitingEntry{id: id, seq: m.seq})
		log.Info().Str("module", "app.matcher").Str("user", string(id)).Str("lang", string(lang)).Msg("queued")
		return "", nil
	}

	partner := m.users[partnerID]
	room, err := m.openRoomLocked(partner, user)
	if err != nil {
		// The policy only ever picks unmatched waiting users.
		delete(m.users, id)
		delete(m.byConn, conn)
		return "", fmt.Errorf("match %s with %s: %w", id, partnerID, err)
	}
	m.removeWaitingLocked(partnerID, partner.Language)

	snap := room.Snapshot()
	for _, h := range m.onMatched {
		h(snap)
	}
	log.Info().
		Str("module", "app.matcher").
		Str("room", string(room.ID)).
		Str("user", string(id)).
		Str("lang", string(lang)).
		Str("partner", string(partnerID)).
		Str("partner_lang", string(partner.Language)).
		Msg("room created")
	return room.ID, nil
}

func (m *RoomManager) openRoomLocked(members ...*domain.User) (*domain.TranslationRoom, error) {
	now := m.now()
	m.roomCounter++
	room := domain.NewTranslationRoom(domain.FormatRoomID(now, m.roomCounter), now)
	for _, u := range members {
		if err := room.AddMember(u); err != nil {
			for _, added := range room.Users {
				added.RoomID = ""
			}
			return nil, err
		}
	}
	m.rooms[room.ID] = room
	return room, nil
}

func (m *RoomManager) findPartnerLocked(lang domain.Language) (domain.UserID, bool) {
	var best *waitingEntry
	for l, queue := range m.waiting {
		if l == lang || len(queue) == 0 {
			continue
		}
		if best == nil || queue[0].seq < best.seq {
			best = &queue[0]
		}
	}
	if best != nil {
		return best.id, true
	}
	if queue := m.waiting[lang]; len(queue) > 0 {
		return queue[0].id, true
	}
	return "", false
}

func (m *RoomManager) removeWaitingLocked(id domain.UserID, lang domain.Language) {
	queue := m.waiting[lang]
	for i, e := range queue {
		if e.id == id {
			queue = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(m.waiting, lang)
		return
	}
	m.waiting[lang] = queue
}

// RemoveUser drops the user from the pool, its room and the user table.
// An emptied room is closed and deleted; a room left with one member stays
// active and the caller notifies the survivor. The bool reports whether the
// user held a room.
func (m *RoomManager) RemoveUser(id domain.UserID) (domain.RoomID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return "", false
	}
	gone := *user
	roomID := user.RoomID

	m.removeWaitingLocked(id, user.Language)
	if room, ok := m.rooms[roomID]; ok {
		if room.RemoveMember(id) == 0 {
			delete(m.rooms, roomID)
			log.Info().Str("module", "app.matcher").Str("room", string(roomID)).Msg("closed empty room")
		} else {
			log.Info().Str("module", "app.matcher").Str("room", string(roomID)).Str("user", string(id)).Msg("left room, partner remains")
		}
	}
	delete(m.users, id)
	if m.byConn[user.ConnectionID] == id {
		delete(m.byConn, user.ConnectionID)
	}

	for _, h := range m.onRemoved {
		h(gone, roomID)
	}
	log.Info().Str("module", "app.matcher").Str("user", string(id)).Msg("removed user")
	return roomID, roomID != ""
}

func (m *RoomManager) GetUser(id domain.UserID) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false
	}
	return *u, true
}

func (m *RoomManager) UserByConnection(conn domain.ConnectionID) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byConn[conn]
	if !ok {
		return domain.User{}, false
	}
	return *m.users[id], true
}

func (m *RoomManager) GetRoom(id domain.RoomID) (domain.RoomSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

func (m *RoomManager) GetUserRoom(id domain.UserID) (domain.RoomSnapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok || !u.Matched() {
		return domain.RoomSnapshot{}, false
	}
	room, ok := m.rooms[u.RoomID]
	if !ok {
		return domain.RoomSnapshot{}, false
	}
	return room.Snapshot(), true
}

// GetTranslationPartner returns the other member of the user's room.
func (m *RoomManager) GetTranslationPartner(id domain.UserID) (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok || !u.Matched() {
		return domain.User{}, false
	}
	room, ok := m.rooms[u.RoomID]
	if !ok {
		return domain.User{}, false
	}
	p, ok := room.Partner(id)
	if !ok {
		return domain.User{}, false
	}
	return *p, true
}

func (m *RoomManager) SetSpeakingStatus(id domain.UserID, speaking bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Speaking = speaking
	}
}

// GetWaitingStats counts waiting users per language; empty buckets are omitted.
func (m *RoomManager) GetWaitingStats() map[domain.Language]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := lo.MapValues(m.waiting, func(q []waitingEntry, _ domain.Language) int { return len(q) })
	return lo.OmitBy(counts, func(_ domain.Language, n int) bool { return n == 0 })
}

func (m *RoomManager) ActiveRoomsCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.CountBy(lo.Values(m.rooms), func(r *domain.TranslationRoom) bool {
		return r.Status == domain.RoomActive
	})
}

func (m *RoomManager) UserCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}
