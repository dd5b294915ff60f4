package fleetctl

import "time"

// Instance naming and timing constants
const (
	// MaxIDLength is the longest instance id accepted for command execution
	MaxIDLength = 3

	// AllInstances is the argument that expands to every discovered instance
	AllInstances = "all"

	// DefaultPollInterval is the granularity of the stop and kill wait loops
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultStopTimeout is how long a graceful termination may take
	DefaultStopTimeout = 30 * time.Second

	// DefaultKillTimeout is how long the process may linger after SIGKILL
	DefaultKillTimeout = 10 * time.Second

	// DefaultLockWait bounds acquisition of an instance lock
	DefaultLockWait = 10 * time.Second

	// DefaultSettleDelay is the pause between launching parallel commands
	// and waiting on their completion barrier
	DefaultSettleDelay = 100 * time.Millisecond

	// DefaultLockRetryInterval is how often a busy file lock is retried
	DefaultLockRetryInterval = 50 * time.Millisecond

	// DefaultWatchDebounce coalesces bursts of pid directory events
	DefaultWatchDebounce = 10 * time.Millisecond
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode = 0o755

	// FileMode is the default mode for created files
	FileMode = 0o644
)

// Operation represents a fleet command
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpStart launches the instance if it is not running
	OpStart
	// OpStop terminates the instance, escalating to SIGKILL
	OpStop
	// OpRestart stops then starts the instance
	OpRestart
	// OpStatus probes the instance
	OpStatus
	// OpEnable clears the auto-start suppression marker and starts
	OpEnable
	// OpDisable sets the auto-start suppression marker and stops
	OpDisable
	// OpRotateLogs asks the instance to reopen its logs
	OpRotateLogs
	// OpReload asks the instance to reload its configuration
	OpReload
	// OpReindex asks the instance to rebuild its indexes
	OpReindex
)

// Operation string constants
const (
	opUnknownStr     = "unknown"
	opStartStr       = "start"
	opStopStr        = "stop"
	opRestartStr     = "restart"
	opForceReloadStr = "force-reload"
	opStatusStr      = "status"
	opEnableStr      = "enable"
	opDisableStr     = "disable"
	opRotateLogsStr  = "rotate-logs"
	opReloadStr      = "reload"
	opReindexStr     = "reindex"
)

// String returns the command name of an Operation
func (op Operation) String() string {
	switch op {
	case OpStart:
		return opStartStr
	case OpStop:
		return opStopStr
	case OpRestart:
		return opRestartStr
	case OpStatus:
		return opStatusStr
	case OpEnable:
		return opEnableStr
	case OpDisable:
		return opDisableStr
	case OpRotateLogs:
		return opRotateLogsStr
	case OpReload:
		return opReloadStr
	case OpReindex:
		return opReindexStr
	default:
		return opUnknownStr
	}
}

// ParseOperation maps a command name to an Operation.
// force-reload is accepted as an alias for restart.
func ParseOperation(name string) (Operation, bool) {
	switch name {
	case opStartStr:
		return OpStart, true
	case opStopStr:
		return OpStop, true
	case opRestartStr, opForceReloadStr:
		return OpRestart, true
	case opStatusStr:
		return OpStatus, true
	case opEnableStr:
		return OpEnable, true
	case opDisableStr:
		return OpDisable, true
	case opRotateLogsStr:
		return OpRotateLogs, true
	case opReloadStr:
		return OpReload, true
	case opReindexStr:
		return OpReindex, true
	default:
		return OpUnknown, false
	}
}

// DefaultsToAll reports whether the operation targets every discovered
// instance when no ids are given
func (op Operation) DefaultsToAll() bool {
	switch op {
	case OpStart, OpStop, OpStatus, OpRotateLogs:
		return true
	default:
		return false
	}
}

// Signal returns the control signal an operation delivers, if any
func (op Operation) Signal() (ControlSignal, bool) {
	switch op {
	case OpRotateLogs:
		return SignalRotateLogs, true
	case OpReload:
		return SignalReload, true
	case OpReindex:
		return SignalReindex, true
	default:
		return 0, false
	}
}

// Outcome is the non-error result of a single step against one instance
type Outcome int

const (
	// OutcomeNone means the step did not complete
	OutcomeNone Outcome = iota
	// OutcomeStarted means the daemon was launched
	OutcomeStarted
	// OutcomeAlreadyRunning means start found the instance running
	OutcomeAlreadyRunning
	// OutcomeStopped means the process exited after graceful termination
	OutcomeStopped
	// OutcomeKilled means the process exited only after SIGKILL
	OutcomeKilled
	// OutcomeNotRunning means there was nothing to stop or signal
	OutcomeNotRunning
	// OutcomeSignalled means the signal was delivered
	OutcomeSignalled
	// OutcomeEnabled means the suppression marker was removed
	OutcomeEnabled
	// OutcomeAlreadyEnabled means no suppression marker was present
	OutcomeAlreadyEnabled
	// OutcomeDisabled means the suppression marker was appended
	OutcomeDisabled
	// OutcomeAlreadyDisabled means the suppression marker was already present
	OutcomeAlreadyDisabled
)

// String returns the operator-facing wording of the outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeAlreadyRunning:
		return "already running"
	case OutcomeStopped:
		return "stopped"
	case OutcomeKilled:
		return "stopped (killed)"
	case OutcomeNotRunning:
		return "not running"
	case OutcomeSignalled:
		return "signalled"
	case OutcomeEnabled:
		return "enabled"
	case OutcomeAlreadyEnabled:
		return "already enabled"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeAlreadyDisabled:
		return "already disabled"
	default:
		return "none"
	}
}
