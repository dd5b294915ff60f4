//go:build linux || darwin

package fleetctl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	osunix "github.com/axondata/go-fleetctl/internal/unix"
	"golang.org/x/sys/unix"
)

// OSProcessTable inspects and signals processes through kill(2)
type OSProcessTable struct {
	// Command is the daemon binary a pid must run to count as an instance.
	// Empty disables the identity check.
	Command string
}

// Alive reports whether pid exists, including processes owned by other users
func (OSProcessTable) Alive(pid int) (bool, error) {
	return osunix.ProcessExists(pid)
}

// Owns reports whether pid runs Command
func (t OSProcessTable) Owns(pid int) (bool, error) {
	if t.Command == "" {
		return true, nil
	}
	image, err := osunix.ProcessImage(pid)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ESRCH) {
			return false, nil
		}
		return false, fmt.Errorf("identify pid %d: %w", pid, err)
	}
	return imageMatches(image, t.Command), nil
}

// comLen is the length the kernel truncates command names to on darwin
const comLen = 16

// imageMatches compares a process image, a path or a bare command name,
// against the daemon command. Symlinks are resolved on both sides where the
// files exist, so "sh" matches a process whose exe is /usr/bin/dash.
func imageMatches(image, command string) bool {
	image = strings.TrimSuffix(image, " (deleted)")
	if image == "" {
		return false
	}

	want := resolveCommand(command)
	if filepath.IsAbs(image) {
		return resolvePath(image) == want
	}

	name, wantName := filepath.Base(image), filepath.Base(want)
	if name == wantName || name == filepath.Base(command) {
		return true
	}
	return len(name) >= comLen-1 && (strings.HasPrefix(wantName, name) || strings.HasPrefix(filepath.Base(command), name))
}

func resolveCommand(command string) string {
	if !strings.Contains(command, "/") {
		if found, err := exec.LookPath(command); err == nil {
			command = found
		}
	}
	if abs, err := filepath.Abs(command); err == nil {
		command = abs
	}
	return resolvePath(command)
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// Signal delivers sig to pid
func (OSProcessTable) Signal(pid int, sig ControlSignal) error {
	num, ok := sig.Signal()
	if !ok {
		return fmt.Errorf("unknown control signal %d", int(sig))
	}
	if err := osunix.Kill(pid, num); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("%w: pid %d", ErrNoProcess, pid)
		}
		return fmt.Errorf("signal %s to pid %d: %w", sig, pid, err)
	}
	return nil
}

// Spawn starts the daemon for id in a new session.
func (l *ExecLauncher) Spawn(ctx context.Context, id string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// Not CommandContext: the daemon must outlive the command that started it.
	cmd := exec.Command(l.Command, l.argsFor(id)...)
	cmd.Dir = l.Dir
	cmd.Env = l.Env
	cmd.SysProcAttr = osunix.DetachedAttr()

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid

	// Reap in the background so an exited daemon does not linger as a
	// zombie, which kill(2) would still report as alive.
	go func() { _ = cmd.Wait() }()

	return pid, nil
}
