package fleetctl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Controller implements the lifecycle of single instances: probing, start,
// stop with escalation, signal delivery and enable/disable.
//
// Stop sends SIGTERM and polls the process table every PollInterval for up
// to StopTimeout. If the process is still there it sends SIGKILL and polls
// again for up to KillTimeout. Only observed absence from the process table
// counts as stopped; a process that survives both leaves its pid file in
// place and is reported as ErrEscalated.
type Controller struct {
	// Repo holds configuration and pid files
	Repo Repository
	// Procs inspects and signals processes
	Procs ProcessTable
	// Launcher starts daemons
	Launcher Launcher
	// Watch optionally wakes the stop loops early when a pid file changes
	Watch PIDWatcher

	// StopTimeout bounds the wait after graceful termination
	StopTimeout time.Duration
	// KillTimeout bounds the wait after SIGKILL
	KillTimeout time.Duration
	// PollInterval is the process table polling granularity
	PollInterval time.Duration

	// Logger receives lifecycle events
	Logger zerolog.Logger
}

// NewController creates a Controller with default timeouts and a no-op logger
func NewController(repo Repository, procs ProcessTable, launcher Launcher) *Controller {
	return &Controller{
		Repo:         repo,
		Procs:        procs,
		Launcher:     launcher,
		StopTimeout:  DefaultStopTimeout,
		KillTimeout:  DefaultKillTimeout,
		PollInterval: DefaultPollInterval,
		Logger:       zerolog.Nop(),
	}
}

// Probe returns the lifecycle state of id without touching any file
func (c *Controller) Probe(ctx context.Context, id string) (Status, error) {
	p := Prober{Repo: c.Repo, Procs: c.Procs}
	return p.Probe(ctx, id)
}

// Status probes id and adds its enabled flag. An instance without a
// configuration file counts as enabled.
func (c *Controller) Status(ctx context.Context, id string) (Status, error) {
	st, err := c.Probe(ctx, id)
	if err != nil {
		return st, err
	}
	enabled, err := c.Repo.ReadEnabled(id)
	switch {
	case errors.Is(err, ErrNotFound):
		enabled = true
	case err != nil:
		return st, &OpError{Op: OpStatus, ID: id, Err: err}
	}
	st.Enabled = enabled
	return st, nil
}

// Start launches the daemon for id unless it is already running. It returns
// as soon as the process has been spawned.
func (c *Controller) Start(ctx context.Context, id string) (Outcome, error) {
	log := c.log(id)

	st, err := c.Probe(ctx, id)
	if err != nil {
		return OutcomeNone, err
	}
	if st.Running() {
		log.Info().Int("pid", st.PID).Msg("already running")
		return OutcomeAlreadyRunning, nil
	}

	pid, err := c.Launcher.Spawn(ctx, id)
	if err != nil {
		return OutcomeNone, &OpError{Op: OpStart, ID: id, Err: err}
	}
	log.Info().Int("pid", pid).Msg("started")
	return OutcomeStarted, nil
}

// Stop terminates id, escalating from SIGTERM to SIGKILL. A stale pid file
// is removed and reported as not running. A corrupt pid file is an error and
// no signal is sent.
func (c *Controller) Stop(ctx context.Context, id string) (Outcome, error) {
	log := c.log(id)

	st, err := c.Probe(ctx, id)
	if err != nil {
		return OutcomeNone, err
	}

	switch st.State {
	case StateStopped:
		log.Info().Msg("not running")
		return OutcomeNotRunning, nil
	case StateCorruptPidFile:
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: ErrCorruptPidFile}
	case StateFailed:
		log.Warn().Int("pid", st.PID).Msg("removing stale pid file")
		if err := c.Repo.RemovePID(id); err != nil {
			return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
		}
		return OutcomeNotRunning, nil
	}

	pid := st.PID
	wake, unwatch := c.watch(ctx, id)
	defer unwatch()

	gone := func() bool {
		alive, err := c.Procs.Alive(pid)
		return err == nil && !alive
	}

	if err := c.signal(pid, SignalTerm); err != nil {
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
	}
	log.Debug().Int("pid", pid).Msg("sent graceful termination")

	if AwaitCondition(ctx, gone, c.PollInterval, c.StopTimeout, wake) {
		return c.finishStop(id, OutcomeStopped)
	}
	if err := ctx.Err(); err != nil {
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
	}

	log.Warn().Int("pid", pid).Dur("timeout", c.StopTimeout).Msg("graceful stop timed out, sending kill")
	if err := c.signal(pid, SignalKill); err != nil {
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
	}

	if AwaitCondition(ctx, gone, c.PollInterval, c.KillTimeout, wake) {
		return c.finishStop(id, OutcomeKilled)
	}
	if err := ctx.Err(); err != nil {
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
	}

	log.Error().Int("pid", pid).Dur("timeout", c.KillTimeout).Msg("process survived kill, pid file left in place")
	return OutcomeNone, &OpError{
		Op:  OpStop,
		ID:  id,
		Err: fmt.Errorf("%w: pid %d after %w", ErrEscalated, pid, ErrTimeout),
	}
}

func (c *Controller) finishStop(id string, outcome Outcome) (Outcome, error) {
	if err := c.Repo.RemovePID(id); err != nil {
		return OutcomeNone, &OpError{Op: OpStop, ID: id, Err: err}
	}
	c.log(id).Info().Str("outcome", outcome.String()).Msg("stopped")
	return outcome, nil
}

// Signal delivers sig to a running instance without waiting for any effect
func (c *Controller) Signal(ctx context.Context, id string, sig ControlSignal) (Outcome, error) {
	op := sig.operation()

	st, err := c.Probe(ctx, id)
	if err != nil {
		return OutcomeNone, err
	}
	if !st.Running() {
		c.log(id).Info().Str("signal", sig.String()).Msg("not running")
		return OutcomeNotRunning, nil
	}

	if err := c.Procs.Signal(st.PID, sig); err != nil {
		if errors.Is(err, ErrNoProcess) {
			return OutcomeNotRunning, nil
		}
		return OutcomeNone, &OpError{Op: op, ID: id, Err: err}
	}
	c.log(id).Debug().Int("pid", st.PID).Str("signal", sig.String()).Msg("signalled")
	return OutcomeSignalled, nil
}

// Enable removes every auto-start suppression directive of id
func (c *Controller) Enable(ctx context.Context, id string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeNone, err
	}
	changed, err := c.Repo.WriteEnabled(id, true)
	if err != nil {
		return OutcomeNone, &OpError{Op: OpEnable, ID: id, Err: err}
	}
	if !changed {
		c.log(id).Info().Msg("already enabled")
		return OutcomeAlreadyEnabled, nil
	}
	c.log(id).Info().Msg("enabled")
	return OutcomeEnabled, nil
}

// Disable appends the auto-start suppression marker to id unless present.
// It does not stop the instance.
func (c *Controller) Disable(ctx context.Context, id string) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return OutcomeNone, err
	}
	changed, err := c.Repo.WriteEnabled(id, false)
	if err != nil {
		return OutcomeNone, &OpError{Op: OpDisable, ID: id, Err: err}
	}
	if !changed {
		c.log(id).Info().Msg("already disabled")
		return OutcomeAlreadyDisabled, nil
	}
	c.log(id).Info().Msg("disabled")
	return OutcomeDisabled, nil
}

// Restart stops id and then starts it, whatever the stop reported
func (c *Controller) Restart(ctx context.Context, id string) Report {
	r := Report{ID: id, Op: OpRestart}
	stopped, stopErr := c.Stop(ctx, id)
	r.add(stopped)
	started, startErr := c.Start(ctx, id)
	r.add(started)
	r.Err = errors.Join(stopErr, startErr)
	return r
}

// EnableAndStart enables id and starts it. An unknown instance is not started.
func (c *Controller) EnableAndStart(ctx context.Context, id string) Report {
	r := Report{ID: id, Op: OpEnable}
	enabled, err := c.Enable(ctx, id)
	if err != nil {
		r.Err = err
		return r
	}
	r.add(enabled)
	started, err := c.Start(ctx, id)
	r.add(started)
	r.Err = err
	return r
}

// DisableAndStop disables id and stops it. An unknown instance is not stopped.
func (c *Controller) DisableAndStop(ctx context.Context, id string) Report {
	r := Report{ID: id, Op: OpDisable}
	disabled, err := c.Disable(ctx, id)
	if err != nil {
		r.Err = err
		return r
	}
	r.add(disabled)
	stopped, err := c.Stop(ctx, id)
	r.add(stopped)
	r.Err = err
	return r
}

// Execute runs op against a single instance. It takes no lock; callers that
// need serialization go through a Dispatcher.
func (c *Controller) Execute(ctx context.Context, op Operation, id string) Report {
	switch op {
	case OpStart:
		return single(id, op)(c.Start(ctx, id))
	case OpStop:
		return single(id, op)(c.Stop(ctx, id))
	case OpRestart:
		return c.Restart(ctx, id)
	case OpEnable:
		return c.EnableAndStart(ctx, id)
	case OpDisable:
		return c.DisableAndStop(ctx, id)
	case OpStatus:
		st, err := c.Status(ctx, id)
		return Report{ID: id, Op: op, Status: &st, Err: err}
	}

	if sig, ok := op.Signal(); ok {
		return single(id, op)(c.Signal(ctx, id, sig))
	}
	return Report{ID: id, Op: op, Err: &OpError{Op: op, ID: id, Err: errors.New("unsupported operation")}}
}

func single(id string, op Operation) func(Outcome, error) Report {
	return func(outcome Outcome, err error) Report {
		r := Report{ID: id, Op: op, Err: err}
		r.add(outcome)
		return r
	}
}

// signal treats a process that vanished before delivery as success; the
// wait loops observe its absence either way.
func (c *Controller) signal(pid int, sig ControlSignal) error {
	if err := c.Procs.Signal(pid, sig); err != nil && !errors.Is(err, ErrNoProcess) {
		return err
	}
	return nil
}

func (c *Controller) watch(ctx context.Context, id string) (<-chan struct{}, func()) {
	if c.Watch == nil {
		return nil, func() {}
	}
	wake, cleanup, err := c.Watch(ctx, id)
	if err != nil {
		c.log(id).Debug().Err(err).Msg("pid file watch unavailable, polling only")
		return nil, func() {}
	}
	return wake, func() { _ = cleanup() }
}

func (c *Controller) log(id string) *zerolog.Logger {
	l := c.Logger.With().Str("instance", id).Logger()
	return &l
}
