package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store interface using Redis. Each conversation is a
// metadata key plus a list of JSON-encoded messages.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // Conversation TTL (time to live)
}

type conversationMeta struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRedisStore creates a new Redis-backed store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	// Parse Redis URL
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Create Redis client
	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Client exposes the connection so other components can share it.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func (r *RedisStore) metaKey(threadID string) string {
	return fmt.Sprintf("conversation:%s", threadID)
}

func (r *RedisStore) messagesKey(threadID string) string {
	return fmt.Sprintf("conversation:%s:messages", threadID)
}

func (r *RedisStore) CreateConversation(ctx context.Context, threadID, userID string) error {
	data, err := json.Marshal(conversationMeta{UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.metaKey(threadID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create conversation in Redis: %w", err)
	}
	if !created {
		return fmt.Errorf("conversation %s already exists", threadID)
	}
	return nil
}

func (r *RedisStore) ConversationExists(ctx context.Context, threadID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.metaKey(threadID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check conversation existence: %w", err)
	}
	return exists > 0, nil
}

func (r *RedisStore) GetMessages(ctx context.Context, threadID string) ([]Message, error) {
	ok, err := r.ConversationExists(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConversationNotFound
	}

	raw, err := r.client.LRange(ctx, r.messagesKey(threadID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load messages from Redis: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for i, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		msg.ID = uint(i + 1)
		out = append(out, msg)
	}
	return out, nil
}

// AppendExchange pushes both messages inside MULTI/EXEC so readers never see
// one without the other.
func (r *RedisStore) AppendExchange(ctx context.Context, threadID string, user, assistant Message) error {
	ok, err := r.ConversationExists(ctx, threadID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConversationNotFound
	}

	now := time.Now().UTC()
	user.Role, assistant.Role = RoleUser, RoleAssistant
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if assistant.CreatedAt.IsZero() {
		assistant.CreatedAt = now
	}
	userData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	assistantData, err := json.Marshal(assistant)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, r.messagesKey(threadID), userData, assistantData)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.messagesKey(threadID), r.ttl)
			pipe.Expire(ctx, r.metaKey(threadID), r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save messages to Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteConversation(ctx context.Context, threadID string) error {
	if err := r.client.Del(ctx, r.metaKey(threadID), r.messagesKey(threadID)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping verifies the Redis connection is alive
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
