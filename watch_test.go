//go:build linux || darwin

package fleetctl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitWake(t *testing.T, wake <-chan struct{}) {
	t.Helper()

	select {
	case <-wake:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for pid file event")
	}
}

func TestWatchPIDFile(t *testing.T) {
	layout := testLayout(t)
	require.NoError(t, os.MkdirAll(layout.PIDDir, 0o755))
	path := layout.PIDPath("a1")

	wake, cleanup, err := LayoutWatcher(layout)(context.Background(), "a1")
	require.NoError(t, err)

	t.Run("Create", func(t *testing.T) {
		writeFixture(t, path, "100\n")
		waitWake(t, wake)
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		waitWake(t, wake)
	})

	t.Run("IgnoresOtherFiles", func(t *testing.T) {
		writeFixture(t, layout.PIDPath("a2"), "200\n")
		select {
		case <-wake:
			t.Error("unexpected wake for another instance")
		case <-time.After(100 * time.Millisecond):
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- cleanup()
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Error("cleanup took too long")
	}
}

func TestWatchPIDFileMissingDir(t *testing.T) {
	_, _, err := WatchPIDFile(context.Background(), filepath.Join(t.TempDir(), "absent", "x.pid"))
	assert.Error(t, err)
}

func TestWatchPIDFileContextCanceled(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())

	_, cleanup, err := WatchPIDFile(ctx, filepath.Join(dir, "x.pid"))
	require.NoError(t, err)

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- cleanup()
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("cleanup after cancellation took too long")
	}
}
