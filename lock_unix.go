//go:build linux || darwin

package fleetctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	osunix "github.com/axondata/go-fleetctl/internal/unix"
)

// FileLocker implements Locker with flock(2) on the per-instance lock files
// of a Layout, so commands are serialized across processes as well.
// Lock files are created on demand and never hold content.
type FileLocker struct {
	// Layout locates the lock files
	Layout Layout
	// RetryInterval is how often a busy lock is retried
	RetryInterval time.Duration
}

// NewFileLocker creates a FileLocker for layout
func NewFileLocker(layout Layout) *FileLocker {
	return &FileLocker{
		Layout:        layout,
		RetryInterval: DefaultLockRetryInterval,
	}
}

// TryAcquire takes the lock of id within timeout
func (l *FileLocker) TryAcquire(ctx context.Context, id string, timeout time.Duration) (Unlock, error) {
	path := l.Layout.LockPath(id)
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, FileMode)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	var lockErr error
	acquired := AwaitCondition(ctx, func() bool {
		ok, err := osunix.TryLock(f)
		if err != nil {
			lockErr = err
			return true
		}
		return ok
	}, l.RetryInterval, timeout, nil)

	switch {
	case lockErr != nil:
		_ = f.Close()
		return nil, fmt.Errorf("flock %s: %w", path, lockErr)
	case !acquired:
		_ = f.Close()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s after %v", ErrLockUnavailable, id, timeout)
	}

	var once sync.Once
	var unlockErr error
	return func() error {
		once.Do(func() {
			unlockErr = osunix.Unlock(f)
			if err := f.Close(); unlockErr == nil {
				unlockErr = err
			}
		})
		return unlockErr
	}, nil
}

// WaitForRelease waits until no descriptor holds the lock of id
func (l *FileLocker) WaitForRelease(ctx context.Context, id string, timeout time.Duration) error {
	return waitForRelease(ctx, l, id, timeout)
}
