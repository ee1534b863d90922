package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session. The signed token handed to the
// client is only a handle to this row; deleting the row revokes the token.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Identity is the resolved caller of a request: either an authenticated
// user with their session, or anonymous (both fields nil).
type Identity struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// Anonymous reports whether no authenticated user is attached.
func (id Identity) Anonymous() bool { return id.User == nil }
