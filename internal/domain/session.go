package domain

import (
	"context"
	"time"
)

// Session is an opaque server-side login session. The token travels in a
// cookie; everything else stays in the database.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession returns a Session for the given user valid until expiresAt.
func NewSession(token, userID string, createdAt, expiresAt time.Time) *Session {
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionRepository defines the interface for login session storage.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	// GetByToken returns ErrNotFound if the token is unknown.
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
