package fleetctl

// ControlSignal names the signals the control plane sends. Platform signal
// numbers are only resolved at the process boundary (see Signal).
type ControlSignal int

const (
	// SignalTerm requests graceful termination (SIGTERM)
	SignalTerm ControlSignal = iota + 1
	// SignalKill forces termination (SIGKILL)
	SignalKill
	// SignalRotateLogs asks the daemon to reopen its log files (SIGUSR1)
	SignalRotateLogs
	// SignalReload asks the daemon to reload its configuration (SIGHUP)
	SignalReload
	// SignalReindex asks the daemon to rebuild its indexes (real-time signal 37)
	SignalReindex
)

// ReindexSignalNumber is the extension signal bound to reindex. It sits in
// the Linux real-time range (SIGRTMIN+3).
const ReindexSignalNumber = 37

// String returns the string representation of a ControlSignal
func (s ControlSignal) String() string {
	switch s {
	case SignalTerm:
		return "term"
	case SignalKill:
		return "kill"
	case SignalRotateLogs:
		return "rotate-logs"
	case SignalReload:
		return "reload"
	case SignalReindex:
		return "reindex"
	default:
		return "unknown"
	}
}

// operation returns the command a signal belongs to, for error reporting
func (s ControlSignal) operation() Operation {
	switch s {
	case SignalTerm, SignalKill:
		return OpStop
	case SignalRotateLogs:
		return OpRotateLogs
	case SignalReload:
		return OpReload
	case SignalReindex:
		return OpReindex
	default:
		return OpUnknown
	}
}
