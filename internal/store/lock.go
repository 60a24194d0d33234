package store

// lock.go implements the per-file reader/writer lock.
//
// The lock is built on a weighted semaphore rather than sync.RWMutex so
// that waiting for the lock is context-aware: a caller whose context is
// cancelled while queued aborts cleanly without ever touching the file.
// Cancellation during an in-progress write is NOT handled here; once the
// lock is held the operation runs to completion or I/O failure.

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/semaphore"
)

// maxConcurrentReaders bounds how many readers may hold the shared lock at
// once. A writer acquires the full weight, excluding all readers.
const maxConcurrentReaders = 64

// fileLock is a context-aware reader/writer lock for one file.
type fileLock struct {
	sem *semaphore.Weighted
}

func newFileLock() *fileLock {
	return &fileLock{sem: semaphore.NewWeighted(maxConcurrentReaders)}
}

// RLock acquires the shared lock. Multiple readers may hold it at once.
func (l *fileLock) RLock(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *fileLock) RUnlock() {
	l.sem.Release(1)
}

// Lock acquires the exclusive lock. It blocks until all in-flight readers
// release, and blocks any new reader or writer until Unlock.
func (l *fileLock) Lock(ctx context.Context) error {
	return l.sem.Acquire(ctx, maxConcurrentReaders)
}

func (l *fileLock) Unlock() {
	l.sem.Release(maxConcurrentReaders)
}

// lockRegistry hands out one fileLock per canonical file path, so every
// operation addressing the same file contends on the same lock regardless
// of which caller issued it.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*fileLock
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*fileLock)}
}

// get returns the lock for path, creating it on first use. Paths are
// canonicalized so relative and absolute spellings of the same file share
// one lock.
func (r *lockRegistry) get(path string) *fileLock {
	key := canonicalPath(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = newFileLock()
		r.locks[key] = l
	}
	return l
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
