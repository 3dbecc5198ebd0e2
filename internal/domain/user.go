// Package domain contains entities and their invariants, no transport.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxUserIDLen = 64

var (
	ErrUserIDTooLong   = errors.New("user id too long")
	ErrUserExists      = errors.New("user already registered")
	ErrConnectionInUse = errors.New("connection already bound to another user")
)

type (
	UserID       string
	ConnectionID string
)

type User struct {
	ID           UserID       `json:"user_id"`
	ConnectionID ConnectionID `json:"connection_id"`
	Language     Language     `json:"language"`
	RoomID       RoomID       `json:"room_id,omitempty"`
	Speaking     bool         `json:"is_speaking"`
	JoinedAt     time.Time    `json:"joined_at"`
}

// NewUserID returns a random id for anonymous participants.
func NewUserID() UserID { return UserID(uuid.NewString()) }

// NewConnectionID returns a random control connection id.
func NewConnectionID() ConnectionID { return ConnectionID(uuid.NewString()) }

// ValidateUserID accepts any non-empty id up to MaxUserIDLen bytes.
// An empty id is valid here: callers generate one.
func ValidateUserID(id string) error {
	if len(id) > MaxUserIDLen {
		return ErrUserIDTooLong
	}
	return nil
}

func NewUser(id UserID, conn ConnectionID, lang Language, now time.Time) *User {
	return &User{
		ID:           id,
		ConnectionID: conn,
		Language:     lang,
		JoinedAt:     now,
	}
}

// Matched reports whether the user holds a room assignment.
func (u *User) Matched() bool { return u.RoomID != "" }
