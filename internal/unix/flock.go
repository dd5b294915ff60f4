//go:build linux || darwin

// Package unix provides platform-specific Unix primitives.
package unix

import (
	"errors"
	"os"

	sysunix "golang.org/x/sys/unix"
)

// TryLock attempts a non-blocking exclusive flock(2) on f.
// It returns false with a nil error when another descriptor holds the lock.
func TryLock(f *os.File) (bool, error) {
	err := sysunix.Flock(int(f.Fd()), sysunix.LOCK_EX|sysunix.LOCK_NB)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sysunix.EWOULDBLOCK) || errors.Is(err, sysunix.EAGAIN) {
		return false, nil
	}
	return false, err
}

// Unlock releases a lock taken with TryLock. The descriptor stays open.
func Unlock(f *os.File) error {
	return sysunix.Flock(int(f.Fd()), sysunix.LOCK_UN)
}
