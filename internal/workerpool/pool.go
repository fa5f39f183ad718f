// Package workerpool bounds how many blocking model invocations run at once.
package workerpool

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

type Pool struct {
	size     int64
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
}

func (p *Pool) Size() int { return int(p.size) }

// InFlight reports how many workers are currently running.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Close waits for running workers to finish.
func (p *Pool) Close() {
	p.wg.Wait()
}

type result[T any] struct {
	val T
	err error
}

// Submit waits for a free slot and runs fn on a worker goroutine. If ctx ends
// first, Submit returns ctx.Err(); the worker keeps its slot until fn returns.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	p.wg.Add(1)
	p.inFlight.Add(1)
	go func() {
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
			p.wg.Done()
		}()
		val, err := fn(ctx)
		done <- result[T]{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
