package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const MaxRoomMembers = 2

var (
	ErrRoomFull      = errors.New("room is full")
	ErrAlreadyInRoom = errors.New("user already in a room")
)

type RoomID string

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
	RoomClosed  RoomStatus = "closed"
)

// FormatRoomID builds "room_<unix seconds>_<counter>".
func FormatRoomID(at time.Time, counter uint64) RoomID {
	return RoomID(fmt.Sprintf("room_%d_%d", at.Unix(), counter))
}

// TranslationRoom pairs exactly two users. It becomes active the moment the
// second member is added.
type TranslationRoom struct {
	ID        RoomID
	CreatedAt time.Time
	Status    RoomStatus
	Users     map[UserID]*User
}

func NewTranslationRoom(id RoomID, now time.Time) *TranslationRoom {
	return &TranslationRoom{
		ID:        id,
		CreatedAt: now,
		Status:    RoomWaiting,
		Users:     make(map[UserID]*User, MaxRoomMembers),
	}
}

func (r *TranslationRoom) IsFull() bool { return len(r.Users) >= MaxRoomMembers }

func (r *TranslationRoom) AddMember(u *User) error {
	if u.Matched() && u.RoomID != r.ID {
		return ErrAlreadyInRoom
	}
	if _, ok := r.Users[u.ID]; ok {
		return ErrAlreadyInRoom
	}
	if r.IsFull() {
		return ErrRoomFull
	}
	r.Users[u.ID] = u
	u.RoomID = r.ID
	if len(r.Users) == MaxRoomMembers {
		r.Status = RoomActive
	}
	return nil
}

// RemoveMember drops the user and reports how many members remain.
// An emptied room is marked closed.
func (r *TranslationRoom) RemoveMember(id UserID) int {
	if u, ok := r.Users[id]; ok {
		u.RoomID = ""
		delete(r.Users, id)
	}
	if len(r.Users) == 0 {
		r.Status = RoomClosed
	}
	return len(r.Users)
}

func (r *TranslationRoom) Partner(id UserID) (*User, bool) {
	if _, ok := r.Users[id]; !ok {
		return nil, false
	}
	for uid, u := range r.Users {
		if uid != id {
			return u, true
		}
	}
	return nil, false
}

// LanguagePair is ordered by user id so it is stable across calls.
func (r *TranslationRoom) LanguagePair() (Language, Language, bool) {
	if len(r.Users) != MaxRoomMembers {
		return "", "", false
	}
	members := r.sortedMembers()
	return members[0].Language, members[1].Language, true
}

func (r *TranslationRoom) sortedMembers() []*User {
	out := make([]*User, 0, len(r.Users))
	for _, u := range r.Users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RoomSnapshot is a read-only copy handed out of the matcher's lock.
type RoomSnapshot struct {
	ID        RoomID     `json:"room_id"`
	CreatedAt time.Time  `json:"created_at"`
	Status    RoomStatus `json:"status"`
	Users     []User     `json:"users"`
}

func (r *TranslationRoom) Snapshot() RoomSnapshot {
	members := r.sortedMembers()
	users := make([]User, 0, len(members))
	for _, u := range members {
		users = append(users, *u)
	}
	return RoomSnapshot{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Status:    r.Status,
		Users:     users,
	}
}

func (s RoomSnapshot) Member(id UserID) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (s RoomSnapshot) Partner(id UserID) (User, bool) {
	if _, ok := s.Member(id); !ok {
		return User{}, false
	}
	for _, u := range s.Users {
		if u.ID != id {
			return u, true
		}
	}
	return User{}, false
}
