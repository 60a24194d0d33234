package service

// limiter.go implements concurrency control for store operations.
//
// The limiter restricts parallel read/write dispatch to a configurable
// maximum so a burst of API calls cannot exhaust file handles or pile up
// behind the write lock. When all slots are occupied, new requests wait up
// to maxWait before failing with ErrTooManyOperations.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyOperations is returned when all operation slots are occupied
// and the wait timeout expires. Clients should retry after a short delay.
var ErrTooManyOperations = errors.New("too many concurrent operations, please try again later")

// DefaultMaxConcurrentOps is the default limit for parallel store operations.
const DefaultMaxConcurrentOps = 8

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// OperationLimiter controls concurrent store access using a semaphore.
type OperationLimiter struct {
	sem     *semaphore.Weighted
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

// NewOperationLimiter creates a limiter allowing at most maxConcurrent
// simultaneous operations. Requests that cannot acquire a slot within
// maxWait receive ErrTooManyOperations.
func NewOperationLimiter(maxConcurrent int, maxWait time.Duration) *OperationLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentOps
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &OperationLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		maxWait: maxWait,
	}
}

// Acquire attempts to acquire an operation slot.
// Returns nil on success, ErrTooManyOperations if the timeout expires, or
// the context error if the caller was cancelled while waiting.
// The caller MUST call Release when the operation completes (use defer).
func (l *OperationLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyOperations
	}

	l.mu.Lock()
	l.active++
	l.mu.Unlock()
	return nil
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *OperationLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	l.sem.Release(1)
}

// ActiveCount returns the number of currently active operations.
func (l *OperationLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}
