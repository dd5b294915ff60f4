package fleetctl

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Unlock releases an instance lock. Calling it more than once is harmless.
type Unlock func() error

// Locker provides one exclusive lock per instance id. The same primitive
// serves two purposes: serializing commands (TryAcquire) and waiting for an
// in-flight command to finish without running anything (WaitForRelease).
type Locker interface {
	// TryAcquire takes the lock of id, waiting at most timeout.
	// It returns ErrLockUnavailable when the wait runs out.
	TryAcquire(ctx context.Context, id string, timeout time.Duration) (Unlock, error)

	// WaitForRelease blocks until nobody holds the lock of id, waiting at
	// most timeout. It returns ErrTimeout when the wait runs out.
	WaitForRelease(ctx context.Context, id string, timeout time.Duration) error
}

// MemoryLocker implements Locker in-process with a one-slot semaphore per id
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemoryLocker creates an in-process Locker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(id string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[id] = s
	}
	return s
}

// TryAcquire takes the lock of id within timeout
func (l *MemoryLocker) TryAcquire(ctx context.Context, id string, timeout time.Duration) (Unlock, error) {
	s := l.slot(id)

	release := func() Unlock {
		var once sync.Once
		return func() error {
			once.Do(func() { <-s })
			return nil
		}
	}

	select {
	case s <- struct{}{}:
		return release(), nil
	default:
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrLockUnavailable, id)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s <- struct{}{}:
		return release(), nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s after %v", ErrLockUnavailable, id, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitForRelease waits until the lock of id is free
func (l *MemoryLocker) WaitForRelease(ctx context.Context, id string, timeout time.Duration) error {
	return waitForRelease(ctx, l, id, timeout)
}

// waitForRelease passes through the lock: acquire, then release at once
func waitForRelease(ctx context.Context, l Locker, id string, timeout time.Duration) error {
	unlock, err := l.TryAcquire(ctx, id, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: waiting for %s to release: %v", ErrTimeout, id, err)
	}
	return unlock()
}
