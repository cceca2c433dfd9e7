package session

import (
	"context"
	"time"
)

// Lifetime is how long a session lives from creation. There is no sliding
// renewal; refresh replaces tokens, not the session itself.
const Lifetime = time.Hour

// Session is a server-side session. User is nil until a login callback
// binds one; binding and token refresh replace fields in place.
type Session struct {
	SessionID string    `json:"session_id"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store defines how sessions are stored and retrieved. Get returns
// (nil, nil) for an unknown or expired session; Delete is idempotent.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, s Session) error
	Delete(ctx context.Context, sessionID string) error
}
