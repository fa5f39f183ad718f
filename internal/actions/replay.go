package actions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

// ReplayGuard makes a confirm token single use.
type ReplayGuard interface {
	// Consume reports whether jti was seen for the first time.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// Release forgets jti so the token can be used again.
	Release(ctx context.Context, jti string) error
}

type RedisReplayGuard struct {
	client *redis.Client
	prefix string
}

func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, prefix: "confirm:jti:"}
}

func (g *RedisReplayGuard) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+jti, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: replay guard: %v", apierr.ErrUnavailable, err)
	}
	return ok, nil
}

func (g *RedisReplayGuard) Release(ctx context.Context, jti string) error {
	if err := g.client.Del(ctx, g.prefix+jti).Err(); err != nil {
		return fmt.Errorf("%w: replay guard: %v", apierr.ErrUnavailable, err)
	}
	return nil
}

type MemoryReplayGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{seen: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryReplayGuard) Consume(_ context.Context, jti string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, exp := range g.seen {
		if now.After(exp) {
			delete(g.seen, id)
		}
	}
	if _, ok := g.seen[jti]; ok {
		return false, nil
	}
	g.seen[jti] = now.Add(ttl)
	return true, nil
}

func (g *MemoryReplayGuard) Release(_ context.Context, jti string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.seen, jti)
	return nil
}
