package fleetctl

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"vawter.tech/stopper"
)

// Dispatcher fans a command out over a set of instances. Each per-instance
// execution runs under that instance's lock, so commands against one id are
// strictly serialized while different ids proceed independently.
//
// In parallel mode every execution is launched at once; the Dispatcher then
// passes a completion barrier on each instance lock and returns only when
// every command has released its lock.
type Dispatcher struct {
	// Controller executes the per-instance operations
	Controller *Controller
	// Locker provides the per-instance locks
	Locker Locker
	// LockWait bounds lock acquisition for a single command
	LockWait time.Duration
	// BarrierWait bounds the completion barrier for a single instance.
	// Zero means LockWait + StopTimeout + KillTimeout.
	BarrierWait time.Duration
	// SettleDelay is the pause between launching and waiting in parallel mode
	SettleDelay time.Duration
	// Sequential forces every command to run one instance at a time
	Sequential bool
	// Logger receives dispatch events
	Logger zerolog.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithLocker sets the per-instance Locker
func WithLocker(l Locker) DispatcherOption {
	return func(d *Dispatcher) {
		d.Locker = l
	}
}

// WithLockWait sets the bound on lock acquisition
func WithLockWait(wait time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.LockWait = wait
	}
}

// WithBarrierWait sets the bound on the completion barrier
func WithBarrierWait(wait time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.BarrierWait = wait
	}
}

// WithSettleDelay sets the pause before the completion barrier
func WithSettleDelay(delay time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.SettleDelay = delay
	}
}

// WithSequential forces sequential dispatch for every command
func WithSequential(sequential bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.Sequential = sequential
	}
}

// WithDispatchLogger sets the dispatch logger
func WithDispatchLogger(logger zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.Logger = logger
	}
}

// NewDispatcher creates a Dispatcher for ctl with an in-process Locker and
// default waits
func NewDispatcher(ctl *Controller, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		Controller:  ctl,
		Locker:      NewMemoryLocker(),
		LockWait:    DefaultLockWait,
		SettleDelay: DefaultSettleDelay,
		Logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// barrierWait returns the completion barrier bound: long enough for a
// command that waited for its lock and then went through full escalation.
func (d *Dispatcher) barrierWait() time.Duration {
	if d.BarrierWait > 0 {
		return d.BarrierWait
	}
	return d.LockWait + d.Controller.StopTimeout + d.Controller.KillTimeout
}

// Resolve turns command-line arguments into target ids. With no arguments,
// commands that default to all instances get every discovered id and the
// rest get none. The literal "all" always expands via discovery.
// discovered reports whether the ids came from discovery alone.
func (d *Dispatcher) Resolve(ctx context.Context, op Operation, args []string) (ids []string, discovered bool, err error) {
	if len(args) == 0 {
		if !op.DefaultsToAll() {
			return nil, false, nil
		}
		ids, err = d.Controller.Repo.List(ctx)
		return ids, true, err
	}

	discovered = true
	for _, arg := range args {
		if arg != AllInstances {
			ids = append(ids, arg)
			discovered = false
			continue
		}
		all, err := d.Controller.Repo.List(ctx)
		if err != nil {
			return nil, false, err
		}
		ids = append(ids, all...)
	}
	return ids, discovered, nil
}

// Execute resolves args and runs op. Status over discovered ids bypasses
// the id validator, matching what discovery itself accepts.
func (d *Dispatcher) Execute(ctx context.Context, op Operation, args []string) (Reports, error) {
	ids, discovered, err := d.Resolve(ctx, op, args)
	if err != nil {
		return nil, err
	}
	if op == OpStatus && discovered {
		return d.status(ctx, ids), nil
	}
	return d.Run(ctx, op, ids), nil
}

// Run executes op for ids. Invalid ids are skipped without a report.
// Status runs sequentially without locks; signal commands run sequentially
// under lock; lifecycle and enable/disable commands run in parallel unless
// the Dispatcher is Sequential.
func (d *Dispatcher) Run(ctx context.Context, op Operation, ids []string) Reports {
	ids = FilterIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	cmd := func(ctx context.Context, id string) Report {
		return d.Controller.Execute(ctx, op, id)
	}

	switch {
	case op == OpStatus:
		return d.status(ctx, ids)
	case d.Sequential:
		return d.SequentialRun(ctx, op, ids, cmd)
	}
	if _, isSignal := op.Signal(); isSignal {
		return d.SequentialRun(ctx, op, ids, cmd)
	}
	return d.ParallelRun(ctx, op, ids, cmd)
}

// Command is one per-instance execution
type Command func(ctx context.Context, id string) Report

// SequentialRun runs cmd for each valid id in order, each under its lock
func (d *Dispatcher) SequentialRun(ctx context.Context, op Operation, ids []string, cmd Command) Reports {
	ids = FilterIDs(ids)
	reports := make(Reports, 0, len(ids))
	for _, id := range ids {
		reports = append(reports, d.runLocked(ctx, op, id, cmd, nil, nil))
	}
	return reports
}

// ParallelRun launches cmd for every valid id at once, each under its lock,
// then waits on the completion barrier of every id before returning.
// Reports are returned in id order.
func (d *Dispatcher) ParallelRun(ctx context.Context, op Operation, ids []string, cmd Command) Reports {
	ids = FilterIDs(ids)
	if len(ids) == 0 {
		return nil
	}

	var mu sync.Mutex
	results := make([]*Report, len(ids))
	attempted := make([]chan struct{}, len(ids))

	sctx := stopper.WithContext(ctx)
	defer sctx.Stop(d.SettleDelay)

	for i, id := range ids {
		attempted[i] = make(chan struct{})
		sctx.Go(func(sctx *stopper.Context) error {
			// The report is recorded before the lock is released, so a
			// passed barrier implies the result is visible here.
			d.runLocked(sctx, op, id, cmd, attempted[i], func(r Report) {
				mu.Lock()
				results[i] = &r
				mu.Unlock()
			})
			return nil
		})
	}

	if d.SettleDelay > 0 {
		select {
		case <-time.After(d.SettleDelay):
		case <-ctx.Done():
		}
	}

	barrier := d.barrierWait()
	for i, id := range ids {
		select {
		case <-attempted[i]:
		case <-ctx.Done():
		}
		if err := d.Locker.WaitForRelease(ctx, id, barrier); err != nil {
			d.Logger.Warn().Str("instance", id).Err(err).Msg("completion barrier not reached")
		}
	}

	reports := make(Reports, len(ids))
	mu.Lock()
	defer mu.Unlock()
	for i, id := range ids {
		if results[i] == nil {
			reports[i] = Report{ID: id, Op: op, Err: &OpError{Op: op, ID: id, Err: ErrTimeout}}
			continue
		}
		reports[i] = *results[i]
	}
	return reports
}

// runLocked acquires the lock of id, runs cmd and releases the lock.
// attempted, if non-nil, is closed once acquisition has succeeded or failed;
// record, if non-nil, receives the report while the lock is still held.
func (d *Dispatcher) runLocked(ctx context.Context, op Operation, id string, cmd Command, attempted chan struct{}, record func(Report)) Report {
	unlock, err := d.Locker.TryAcquire(ctx, id, d.LockWait)
	if err != nil {
		d.Logger.Warn().Str("instance", id).Str("op", op.String()).Err(err).Msg("lock not acquired")
		r := Report{ID: id, Op: op, Err: &OpError{Op: op, ID: id, Err: err}}
		// No lock orders this record against the barrier
		if record != nil {
			record(r)
		}
		if attempted != nil {
			close(attempted)
		}
		return r
	}
	if attempted != nil {
		close(attempted)
	}

	r := cmd(ctx, id)
	if record != nil {
		record(r)
	}
	if err := unlock(); err != nil {
		d.Logger.Warn().Str("instance", id).Err(err).Msg("releasing lock")
	}
	return r
}

// status probes ids one at a time without taking any lock
func (d *Dispatcher) status(ctx context.Context, ids []string) Reports {
	reports := make(Reports, 0, len(ids))
	for _, id := range ids {
		reports = append(reports, d.Controller.Execute(ctx, OpStatus, id))
	}
	return reports
}
