//go:build linux || darwin

package unix

import (
	"errors"
	"syscall"

	sysunix "golang.org/x/sys/unix"
)

// ProcessExists reports whether the process table has an entry for pid.
// EPERM means the process exists but belongs to another user.
func ProcessExists(pid int) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	err := sysunix.Kill(pid, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sysunix.ESRCH):
		return false, nil
	case errors.Is(err, sysunix.EPERM):
		return true, nil
	}
	return false, err
}

// Kill delivers sig to pid. A missing process is reported as ESRCH.
func Kill(pid int, sig syscall.Signal) error {
	return sysunix.Kill(pid, sig)
}

// DetachedAttr returns process attributes that start the child in a new
// session, detached from the caller's process group and terminal.
func DetachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
