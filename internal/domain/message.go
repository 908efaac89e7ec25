package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents one transcript entry within a session
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for transcript storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]Message, error)
}
