package fleetctl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProberStates(t *testing.T) {
	repo := NewMemoryRepository()
	procs := newFakeProcs()
	procs.start(500)
	procs.startForeign(502)

	repo.SetConfig("a1", "")
	repo.SetPIDFile("a2", "500\n")
	repo.SetPIDFile("a3", "501\n")
	repo.SetPIDFile("a4", "")
	repo.SetPIDFile("a5", "502\n")

	p := &Prober{Repo: repo, Procs: procs}
	ctx := context.Background()

	tests := []struct {
		id    string
		state State
		pid   int
	}{
		{"a1", StateStopped, 0},
		{"zz", StateStopped, 0},
		{"a2", StateRunning, 500},
		{"a3", StateFailed, 501},
		{"a4", StateCorruptPidFile, 0},
		{"a5", StateFailed, 502},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			st, err := p.Probe(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.id, st.ID)
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.pid, st.PID)
		})
	}

	// Probing never cleans up stale state
	_, exists := repo.PIDFile("a3")
	assert.True(t, exists)
}

type brokenProcs struct{ fakeProcs }

func (*brokenProcs) Alive(int) (bool, error) {
	return false, errors.New("procfs unavailable")
}

type unidentifiableProcs struct{ fakeProcs }

func (*unidentifiableProcs) Owns(int) (bool, error) {
	return false, errors.New("permission denied")
}

func TestProberIdentityError(t *testing.T) {
	repo := NewMemoryRepository()
	repo.SetPIDFile("a1", "10")

	procs := &unidentifiableProcs{}
	procs.alive = map[int]bool{10: true}
	p := &Prober{Repo: repo, Procs: procs}
	st, err := p.Probe(context.Background(), "a1")

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpStatus, opErr.Op)
	assert.NotEqual(t, StateRunning, st.State, "an unverified pid is never reported running")
}

func TestProberProcessTableError(t *testing.T) {
	repo := NewMemoryRepository()
	repo.SetPIDFile("a1", "10")

	p := &Prober{Repo: repo, Procs: &brokenProcs{}}
	_, err := p.Probe(context.Background(), "a1")

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpStatus, opErr.Op)
	assert.Equal(t, "a1", opErr.ID)
}
