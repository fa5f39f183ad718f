package memory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

var ErrRegistryFull = fmt.Errorf("%w: too many active conversations", apierr.ErrUnavailable)

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// LockRegistry serializes work per thread id. An entry exists only while
// someone holds or waits for it, and at most capacity entries live at once.
type LockRegistry struct {
	mu       sync.Mutex
	entries  map[string]*lockEntry
	capacity int
}

func NewLockRegistry(capacity int) *LockRegistry {
	return &LockRegistry{entries: make(map[string]*lockEntry), capacity: capacity}
}

// Acquire blocks until the lock for key is held or ctx ends. The returned
// release func is safe to call more than once.
func (r *LockRegistry) Acquire(ctx context.Context, key string) (func(), error) {
	r.mu.Lock()
	entry, ok := r.entries[key]
	if !ok {
		if r.capacity > 0 && len(r.entries) >= r.capacity {
			r.mu.Unlock()
			return nil, ErrRegistryFull
		}
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		r.entries[key] = entry
	}
	entry.refs++
	r.mu.Unlock()

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		r.unref(key, entry)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.sem.Release(1)
			r.unref(key, entry)
		})
	}, nil
}

func (r *LockRegistry) unref(key string, entry *lockEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(r.entries, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (r *LockRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
