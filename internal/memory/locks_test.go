package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeyvidJesus/gomech-ai-service/internal/platform/apierr"
)

func TestLockRegistrySerializesSameKey(t *testing.T) {
	reg := NewLockRegistry(10)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := reg.Acquire(ctx, "thread-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.False(t, overlap)
	assert.Equal(t, 0, reg.Len())
}

func TestLockRegistryIndependentKeys(t *testing.T) {
	reg := NewLockRegistry(10)
	ctx := context.Background()

	releaseA, err := reg.Acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := reg.Acquire(ctx, "b")
		if err == nil {
			releaseB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

func TestLockRegistryContextCancel(t *testing.T) {
	reg := NewLockRegistry(10)
	release, err := reg.Acquire(context.Background(), "t")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = reg.Acquire(ctx, "t")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, reg.Len())

	release()
	release()
	assert.Equal(t, 0, reg.Len())
}

func TestLockRegistryCapacity(t *testing.T) {
	reg := NewLockRegistry(2)
	ctx := context.Background()

	r1, err := reg.Acquire(ctx, "1")
	require.NoError(t, err)
	r2, err := reg.Acquire(ctx, "2")
	require.NoError(t, err)

	_, err = reg.Acquire(ctx, "3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRegistryFull))
	assert.True(t, errors.Is(err, apierr.ErrUnavailable))

	r1()
	r3, err := reg.Acquire(ctx, "3")
	require.NoError(t, err)
	r2()
	r3()
	assert.Equal(t, 0, reg.Len())
}
