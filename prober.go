package fleetctl

import (
	"context"
	"errors"
	"io/fs"
)

// Prober determines the lifecycle state of an instance from its pid file and
// the process table. It never modifies anything, stale pid files included.
type Prober struct {
	Repo  Repository
	Procs ProcessTable
}

// Probe returns the current state of id
func (p *Prober) Probe(ctx context.Context, id string) (Status, error) {
	st := Status{ID: id}
	if err := ctx.Err(); err != nil {
		return st, err
	}

	pid, err := p.Repo.ReadPID(id)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		st.State = StateStopped
		return st, nil
	case errors.Is(err, ErrCorruptPidFile):
		st.State = StateCorruptPidFile
		return st, nil
	case err != nil:
		return st, &OpError{Op: OpStatus, ID: id, Err: err}
	}

	st.PID = pid
	alive, err := p.Procs.Alive(pid)
	if err != nil {
		return st, &OpError{Op: OpStatus, ID: id, Err: err}
	}
	if !alive {
		st.State = StateFailed
		return st, nil
	}

	// A reused pid belongs to someone else; the instance itself is gone
	owned, err := p.Procs.Owns(pid)
	if err != nil {
		return st, &OpError{Op: OpStatus, ID: id, Err: err}
	}
	if owned {
		st.State = StateRunning
	} else {
		st.State = StateFailed
	}
	return st, nil
}
