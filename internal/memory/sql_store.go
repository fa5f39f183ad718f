package memory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DeyvidJesus/gomech-ai-service/internal/store"
)

// SQLStore implements Store on the relational conversations/messages tables
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateConversation(ctx context.Context, threadID, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv := &store.Conversation{ThreadID: threadID, UserID: userID}
		if err := tx.Create(conv).Error; err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) ConversationExists(ctx context.Context, threadID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&store.Conversation{}).Where("thread_id = ?", threadID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check conversation: %w", err)
	}
	return count > 0, nil
}

func (s *SQLStore) GetMessages(ctx context.Context, threadID string) ([]Message, error) {
	conv, err := s.find(ctx, s.db, threadID)
	if err != nil {
		return nil, err
	}

	var rows []store.Message
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", conv.ID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, Message{ID: r.ID, Role: r.Role, Content: r.Content, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *SQLStore) AppendExchange(ctx context.Context, threadID string, user, assistant Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.find(ctx, tx, threadID)
		if err != nil {
			return err
		}
		rows := []store.Message{
			{ConversationID: conv.ID, Role: RoleUser, Content: user.Content},
			{ConversationID: conv.ID, Role: RoleAssistant, Content: assistant.Content},
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save messages: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) DeleteConversation(ctx context.Context, threadID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := s.find(ctx, tx, threadID)
		if err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", conv.ID).Delete(&store.Message{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Delete(conv).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) find(ctx context.Context, db *gorm.DB, threadID string) (*store.Conversation, error) {
	var conv store.Conversation
	err := db.WithContext(ctx).Where("thread_id = ?", threadID).First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &conv, nil
}
