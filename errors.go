package fleetctl

import (
	"errors"
	"fmt"
)

// Common errors returned by fleet operations
var (
	// ErrNotFound indicates the instance has no configuration file
	ErrNotFound = errors.New("fleetctl: no such instance")

	// ErrCorruptPidFile indicates the pid file is empty or unparseable
	ErrCorruptPidFile = errors.New("fleetctl: corrupt pid file")

	// ErrTimeout indicates a bounded wait ran out of budget
	ErrTimeout = errors.New("fleetctl: timeout")

	// ErrEscalated indicates the process survived both termination and kill
	ErrEscalated = errors.New("fleetctl: process survived forced kill")

	// ErrLockUnavailable indicates the instance lock could not be taken in time
	ErrLockUnavailable = errors.New("fleetctl: instance lock unavailable")

	// ErrNoProcess indicates the signalled process no longer exists
	ErrNoProcess = errors.New("fleetctl: no such process")

	// ErrNotSupported indicates the operation is unavailable on this platform
	ErrNotSupported = errors.New("fleetctl: not supported on this platform")
)

// OpError represents an error from an operation on one instance
type OpError struct {
	// Op is the operation that failed
	Op Operation
	// ID is the instance the operation targeted
	ID string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("fleetctl %s %q: %v", e.Op.String(), e.ID, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}
