//go:build !linux && !darwin

package fleetctl

import "syscall"

// Signal - not supported on this platform
func (s ControlSignal) Signal() (syscall.Signal, bool) {
	return 0, false
}
