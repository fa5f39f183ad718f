package memory

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/memory"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/logger"
)

// Manager turns stored transcripts into LangChainGo conversation memory. It
// keeps no per-thread cache: every call rebuilds from the store.
type Manager struct {
	store Store
	log   *logger.Logger
}

// NewManager creates a new memory manager
func NewManager(store Store, log *logger.Logger) *Manager {
	return &Manager{store: store, log: log.With("component", "memory")}
}

// Buffer loads a thread into a fresh ConversationBuffer
func (m *Manager) Buffer(ctx context.Context, threadID string) (*memory.ConversationBuffer, error) {
	// Load history from the store
	messages, err := m.store.GetMessages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	mem := memory.NewConversationBuffer()
	for _, msg := range messages {
		var chatMsg llms.ChatMessage

		switch msg.Role {
		case RoleUser:
			chatMsg = llms.HumanChatMessage{Content: msg.Content}
		case RoleAssistant, "ai":
			chatMsg = llms.AIChatMessage{Content: msg.Content}
		default:
			m.log.Warn("unknown message role, skipping", "role", msg.Role, "thread_id", threadID)
			continue
		}

		// Add to LangChainGo memory
		if err := mem.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to memory: %w", err)
		}
	}

	m.log.Debug("loaded conversation", "thread_id", threadID, "messages", len(messages))
	return mem, nil
}

// History returns the ordered chat messages of a thread
func (m *Manager) History(ctx context.Context, threadID string) ([]llms.ChatMessage, error) {
	mem, err := m.Buffer(ctx, threadID)
	if err != nil {
		return nil, err
	}
	messages, err := mem.ChatHistory.Messages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// SaveExchange persists a user message and the assistant reply together
func (m *Manager) SaveExchange(ctx context.Context, threadID, userMessage, reply string) error {
	err := m.store.AppendExchange(ctx, threadID,
		Message{Role: RoleUser, Content: userMessage},
		Message{Role: RoleAssistant, Content: reply},
	)
	if err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	m.log.Debug("saved exchange", "thread_id", threadID)
	return nil
}

// Messages returns raw stored messages
func (m *Manager) Messages(ctx context.Context, threadID string) ([]Message, error) {
	return m.store.GetMessages(ctx, threadID)
}

// Exists checks if a thread exists
func (m *Manager) Exists(ctx context.Context, threadID string) (bool, error) {
	return m.store.ConversationExists(ctx, threadID)
}

// Create registers a new thread
func (m *Manager) Create(ctx context.Context, threadID, userID string) error {
	return m.store.CreateConversation(ctx, threadID, userID)
}

// Clear removes a thread
func (m *Manager) Clear(ctx context.Context, threadID string) error {
	if err := m.store.DeleteConversation(ctx, threadID); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	m.log.Info("cleared conversation", "thread_id", threadID)
	return nil
}

// Close closes the underlying store
func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
