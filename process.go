package fleetctl

import (
	"context"
	"strings"
)

// ProcessTable is the view of live processes the controller relies on
type ProcessTable interface {
	// Alive reports whether the process table has an entry for pid
	Alive(pid int) (bool, error)
	// Owns reports whether the live process pid is an instance of the
	// managed daemon rather than an unrelated process that reused the pid
	Owns(pid int) (bool, error)
	// Signal delivers sig to pid. A vanished process yields ErrNoProcess.
	Signal(pid int, sig ControlSignal) error
}

// Launcher starts a daemon instance detached from the caller
type Launcher interface {
	// Spawn launches the daemon for id and returns without waiting for
	// readiness. The returned pid is informational; the daemon's own pid
	// file remains the source of truth.
	Spawn(ctx context.Context, id string) (int, error)
}

// IDPlaceholder is replaced by the instance id in launcher arguments
const IDPlaceholder = "{id}"

// DefaultLaunchArgs passes the instance id to the daemon
var DefaultLaunchArgs = []string{"-i", IDPlaceholder}

// ExecLauncher runs a daemon binary once per instance. The process is put in
// its own session with stdio on /dev/null and is never waited on for
// readiness.
type ExecLauncher struct {
	// Command is the daemon binary or a supervising wrapper
	Command string
	// Args are passed to Command with IDPlaceholder substituted
	Args []string
	// Dir is the working directory of the daemon (empty: inherit)
	Dir string
	// Env is the daemon environment (nil: inherit)
	Env []string
}

// NewExecLauncher creates a launcher for command with DefaultLaunchArgs
func NewExecLauncher(command string) *ExecLauncher {
	return &ExecLauncher{
		Command: command,
		Args:    append([]string(nil), DefaultLaunchArgs...),
	}
}

// argsFor substitutes the instance id into the argument template
func (l *ExecLauncher) argsFor(id string) []string {
	args := make([]string, len(l.Args))
	for i, arg := range l.Args {
		args[i] = strings.ReplaceAll(arg, IDPlaceholder, id)
	}
	return args
}
