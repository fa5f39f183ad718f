package memory

import (
	"context"
	"errors"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Message represents a single message in a conversation
type Message struct {
	ID        uint      `json:"id"`
	Role      string    `json:"role"`    // "user" or "assistant"
	Content   string    `json:"content"` // The actual message text
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the interface for conversation storage.
// Implementations: SQLStore (gorm) and RedisStore.
type Store interface {
	// CreateConversation registers a new thread owned by userID
	CreateConversation(ctx context.Context, threadID, userID string) error

	// ConversationExists checks if a thread is known
	ConversationExists(ctx context.Context, threadID string) (bool, error)

	// GetMessages returns the transcript in insertion order
	GetMessages(ctx context.Context, threadID string) ([]Message, error)

	// AppendExchange stores a user message and its reply as one unit
	AppendExchange(ctx context.Context, threadID string, user, assistant Message) error

	// DeleteConversation removes a thread and its transcript
	DeleteConversation(ctx context.Context, threadID string) error
}
