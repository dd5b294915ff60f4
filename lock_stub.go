//go:build !linux && !darwin

package fleetctl

import (
	"context"
	"time"
)

// FileLocker is not supported on this platform; use MemoryLocker
type FileLocker struct {
	Layout        Layout
	RetryInterval time.Duration
}

// NewFileLocker creates a FileLocker for layout
func NewFileLocker(layout Layout) *FileLocker {
	return &FileLocker{Layout: layout, RetryInterval: DefaultLockRetryInterval}
}

// TryAcquire - not supported on this platform
func (l *FileLocker) TryAcquire(ctx context.Context, id string, timeout time.Duration) (Unlock, error) {
	return nil, ErrNotSupported
}

// WaitForRelease - not supported on this platform
func (l *FileLocker) WaitForRelease(ctx context.Context, id string, timeout time.Duration) error {
	return ErrNotSupported
}
