package fleetctl

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

// sentSignal records one signal delivered through fakeProcs
type sentSignal struct {
	pid int
	sig ControlSignal
	at  time.Time
}

// fakeProcs is an in-memory process table. Processes exit on SignalTerm or
// SignalKill unless told to ignore them. Foreign processes are alive but run
// some other program.
type fakeProcs struct {
	mu         sync.Mutex
	alive      map[int]bool
	foreign    map[int]bool
	ignoreTerm map[int]bool
	ignoreKill map[int]bool
	sent       []sentSignal
}

func newFakeProcs() *fakeProcs {
	return &fakeProcs{
		alive:      make(map[int]bool),
		foreign:    make(map[int]bool),
		ignoreTerm: make(map[int]bool),
		ignoreKill: make(map[int]bool),
	}
}

func (p *fakeProcs) start(pid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[pid] = true
}

// startForeign marks pid alive under an unrelated program
func (p *fakeProcs) startForeign(pid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[pid] = true
	p.foreign[pid] = true
}

func (p *fakeProcs) exit(pid int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.alive, pid)
}

func (p *fakeProcs) Alive(pid int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[pid], nil
}

func (p *fakeProcs) Owns(pid int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive[pid] && !p.foreign[pid], nil
}

func (p *fakeProcs) Signal(pid int, sig ControlSignal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentSignal{pid: pid, sig: sig, at: time.Now()})
	if !p.alive[pid] {
		return ErrNoProcess
	}
	switch {
	case sig == SignalTerm && !p.ignoreTerm[pid]:
		delete(p.alive, pid)
	case sig == SignalKill && !p.ignoreKill[pid]:
		delete(p.alive, pid)
	}
	return nil
}

func (p *fakeProcs) signals() []sentSignal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]sentSignal(nil), p.sent...)
}

func (p *fakeProcs) signalKinds() []ControlSignal {
	var kinds []ControlSignal
	for _, s := range p.signals() {
		kinds = append(kinds, s.sig)
	}
	return kinds
}

// fakeLauncher "spawns" a process by marking a fresh pid alive and writing
// its pid file, the way a real daemon would on startup
type fakeLauncher struct {
	mu      sync.Mutex
	repo    *MemoryRepository
	procs   *fakeProcs
	nextPID int
	delay   time.Duration
	err     error
	spawned []string
}

func (l *fakeLauncher) Spawn(ctx context.Context, id string) (int, error) {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, l.err
	}
	l.nextPID++
	pid := l.nextPID
	l.procs.start(pid)
	l.repo.SetPIDFile(id, strconv.Itoa(pid)+"\n")
	l.spawned = append(l.spawned, id)
	return pid, nil
}

func (l *fakeLauncher) spawnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.spawned)
}

// testFleet bundles a Controller over in-memory fakes with short timeouts
type testFleet struct {
	repo     *MemoryRepository
	procs    *fakeProcs
	launcher *fakeLauncher
	ctl      *Controller
}

func newTestFleet(t *testing.T) *testFleet {
	t.Helper()

	repo := NewMemoryRepository()
	procs := newFakeProcs()
	launcher := &fakeLauncher{repo: repo, procs: procs, nextPID: 1000}

	ctl := NewController(repo, procs, launcher)
	ctl.StopTimeout = 150 * time.Millisecond
	ctl.KillTimeout = 100 * time.Millisecond
	ctl.PollInterval = 5 * time.Millisecond

	return &testFleet{repo: repo, procs: procs, launcher: launcher, ctl: ctl}
}

// run configures id and starts it, returning its pid
func (f *testFleet) run(t *testing.T, id string) int {
	t.Helper()

	if _, ok := f.repo.Config(id); !ok {
		f.repo.SetConfig(id, "# "+id+"\n")
	}
	pid, err := f.launcher.Spawn(context.Background(), id)
	if err != nil {
		t.Fatalf("spawning %s: %v", id, err)
	}
	return pid
}

func (f *testFleet) pid(t *testing.T, id string) int {
	t.Helper()

	pid, err := f.repo.ReadPID(id)
	if err != nil {
		t.Fatalf("reading pid of %s: %v", id, err)
	}
	return pid
}

var errSpawn = errors.New("exec: no such file")
