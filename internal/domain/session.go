package domain

import (
	"context"
	"time"
)

// Session represents one ongoing conversation with the agent backend. The
// identifier is issued by the backend, never locally generated.
type Session struct {
	SessionID string    `json:"session_id"`
	UserKey   string    `json:"user_key"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionRepository defines the interface for session storage
type SessionRepository interface {
	Upsert(ctx context.Context, session *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	// Delete removes the session row and tombstones any lead bound to it.
	Delete(ctx context.Context, sessionID string) error
}
