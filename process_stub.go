//go:build !linux && !darwin

package fleetctl

import "context"

// OSProcessTable is not supported on this platform
type OSProcessTable struct {
	Command string
}

// Alive - not supported on this platform
func (OSProcessTable) Alive(pid int) (bool, error) {
	return false, ErrNotSupported
}

// Owns - not supported on this platform
func (OSProcessTable) Owns(pid int) (bool, error) {
	return false, ErrNotSupported
}

// Signal - not supported on this platform
func (OSProcessTable) Signal(pid int, sig ControlSignal) error {
	return ErrNotSupported
}

// Spawn - not supported on this platform
func (l *ExecLauncher) Spawn(ctx context.Context, id string) (int, error) {
	return 0, ErrNotSupported
}
