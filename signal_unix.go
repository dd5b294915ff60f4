//go:build linux || darwin

package fleetctl

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// Signal maps the control signal to the platform signal number
func (s ControlSignal) Signal() (syscall.Signal, bool) {
	switch s {
	case SignalTerm:
		return unix.SIGTERM, true
	case SignalKill:
		return unix.SIGKILL, true
	case SignalRotateLogs:
		return unix.SIGUSR1, true
	case SignalReload:
		return unix.SIGHUP, true
	case SignalReindex:
		return syscall.Signal(ReindexSignalNumber), true
	default:
		return 0, false
	}
}
