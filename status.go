package fleetctl

import (
	"fmt"
	"strconv"
	"strings"
)

// State represents the lifecycle state of an instance as seen by a probe
type State int

const (
	// StateStopped indicates no pid file exists
	StateStopped State = iota
	// StateCorruptPidFile indicates the pid file is empty or unparseable
	StateCorruptPidFile
	// StateRunning indicates the pid file names a live process
	StateRunning
	// StateFailed indicates the pid file names a process that is gone
	StateFailed
)

// State string constants
const (
	stateStoppedStr = "stopped"
	stateCorruptStr = "corrupt pid file"
	stateRunningStr = "running"
	stateFailedStr  = "failed"
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateStopped:
		return stateStoppedStr
	case StateCorruptPidFile:
		return stateCorruptStr
	case StateRunning:
		return stateRunningStr
	case StateFailed:
		return stateFailedStr
	default:
		return "unknown"
	}
}

// Status is a point-in-time view of one instance. It is never cached.
type Status struct {
	// ID is the instance id
	ID string
	// State is the probed lifecycle state
	State State
	// PID is the process id from the pid file (Running and Failed only)
	PID int
	// Enabled reports whether auto-start is allowed. Only Controller.Status
	// fills it in; Prober.Probe leaves it false.
	Enabled bool
}

// Running reports whether the instance has a live process
func (s Status) Running() bool {
	return s.State == StateRunning
}

// String renders the status the way the status command prints it
func (s Status) String() string {
	var b strings.Builder
	b.WriteString(s.State.String())
	switch s.State {
	case StateRunning:
		fmt.Fprintf(&b, " (pid %d)", s.PID)
	case StateFailed:
		fmt.Fprintf(&b, " (stale pid %d)", s.PID)
	}
	return b.String()
}

// parsePID decodes pid file contents: one decimal process id, surrounding
// whitespace allowed.
func parsePID(data []byte) (int, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, fmt.Errorf("%w: empty", ErrCorruptPidFile)
	}
	pid, err := strconv.Atoi(text)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrCorruptPidFile, text)
	}
	return pid, nil
}
