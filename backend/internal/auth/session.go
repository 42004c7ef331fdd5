package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is server-side state named by the sid cookie. An empty UID means
// the session is anonymous.
type Session struct {
	ID      string    `json:"id"`
	UID     string    `json:"uid,omitempty"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires"`
}

// Authenticated reports whether a user is logged in on this session
func (s *Session) Authenticated() bool {
	return s != nil && s.UID != ""
}

func (s *Session) expired(now time.Time) bool {
	return !s.Expires.IsZero() && now.After(s.Expires)
}

// SessionStore persists sessions. Load returns nil, nil for unknown or
// expired ids.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

func newSession(ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:      uuid.NewString(),
		Created: now,
		Expires: now.Add(ttl),
	}
}
