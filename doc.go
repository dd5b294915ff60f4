// Package fleetctl provides a native Go control plane for a fleet of daemon
// instances that share one binary and are told apart by a short id.
//
// Each instance is described purely by naming convention: a configuration
// file, a pid file written by the daemon and a lock file, all keyed by id
// (see Layout). Nothing about an instance is cached; its state is read fresh
// from those files and the process table on every call.
//
// The core type is the Controller, which implements point-in-time status
// probing, start, stop with escalation, restart, enable/disable of auto-start
// and signal delivery for a single instance:
//
//	layout := fleetctl.DefaultLayout("fleetd")
//	ctl := fleetctl.NewController(
//	    fleetctl.NewFSRepository(layout),
//	    fleetctl.OSProcessTable{Command: "/usr/sbin/fleetd"},
//	    fleetctl.NewExecLauncher("/usr/sbin/fleetd"),
//	)
//
//	status, err := ctl.Status(ctx, "a1")
//	fmt.Printf("%s: %v (pid %d)\n", status.ID, status.State, status.PID)
//
//	// SIGTERM, wait, SIGKILL, wait, give up
//	outcome, err := ctl.Stop(ctx, "a1")
//
// # Dispatcher for Bulk Operations
//
// The Dispatcher fans a command out over a set of ids. Every per-id execution
// runs under an exclusive per-instance lock so two commands never mutate the
// same instance at once, while different instances proceed concurrently.
// In parallel mode the Dispatcher returns only after a completion barrier on
// every instance lock has been passed:
//
//	d := fleetctl.NewDispatcher(ctl,
//	    fleetctl.WithLocker(fleetctl.NewFileLocker(layout)),
//	    fleetctl.WithLockWait(10*time.Second),
//	)
//	reports := d.Run(ctx, fleetctl.OpRestart, []string{"a1", "a2", "a3"})
//
// # Storage and Processes
//
// All persisted state goes through the Repository interface and all process
// control through ProcessTable and Launcher. FSRepository, OSProcessTable and
// ExecLauncher are the production implementations; MemoryRepository and
// MemoryLocker back tests and embedders that keep fleet state elsewhere.
package fleetctl
