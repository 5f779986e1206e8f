package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

// IndexLock provides cross-process locking of an index directory using gofrs/flock.
// Two benchmark runs writing the same index directory would corrupt each other.
// The lock file lives next to the directory, at <indexDir>.lock, so that create
// mode can remove the directory while the lock is held.
type IndexLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewIndexLock creates a lock for the given index directory.
func NewIndexLock(indexDir string) *IndexLock {
	lockPath := filepath.Clean(indexDir) + ".lock"
	return &IndexLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Acquire takes the lock without blocking. A lock held by another process
// yields ERR_207_INDEX_LOCKED.
func (l *IndexLock) Acquire() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return benchErrors.New(benchErrors.ErrCodeIndexLocked,
			fmt.Sprintf("index is locked by another run: %s", l.path), nil).
			WithDetail("lock", l.path).
			WithSuggestion("wait for the other benchmark to finish or use a different --index")
	}

	l.locked = true
	return nil
}

// Release drops the lock.
// Safe to call multiple times or on a lock that was never acquired.
func (l *IndexLock) Release() error {
	if !l.locked {
		return nil
	}

	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *IndexLock) Path() string {
	return l.path
}

// isLocked reports whether this lock is currently held.
func (l *IndexLock) isLocked() bool {
	return l.locked
}
