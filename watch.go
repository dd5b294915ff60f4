package fleetctl

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// WatchCleanupFunc stops a watcher and waits for its goroutine to exit
type WatchCleanupFunc func() error

// PIDWatcher produces wake events whenever the pid file of id changes
type PIDWatcher func(ctx context.Context, id string) (<-chan struct{}, WatchCleanupFunc, error)

// LayoutWatcher returns a PIDWatcher for the pid files of layout
func LayoutWatcher(layout Layout) PIDWatcher {
	return func(ctx context.Context, id string) (<-chan struct{}, WatchCleanupFunc, error) {
		return WatchPIDFile(ctx, layout.PIDPath(id))
	}
}

// WatchPIDFile watches the directory holding path and sends on the returned
// channel after any create, write, remove or rename of path. Bursts of
// events are debounced and coalesced into a single pending wake-up, so a
// slow reader never blocks the watcher. The channel is never closed.
func WatchPIDFile(ctx context.Context, path string) (<-chan struct{}, WatchCleanupFunc, error) {
	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	wake := make(chan struct{}, 1)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	var mu sync.Mutex
	var debouncer *time.Timer

	notify := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		sctx.Defer(func() {
			mu.Lock()
			if debouncer != nil {
				debouncer.Stop()
			}
			mu.Unlock()
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				mu.Lock()
				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(DefaultWatchDebounce, notify)
				mu.Unlock()

			case _, ok := <-watcher.Errors:
				// Polling still covers whatever the watcher misses.
				if !ok {
					return nil
				}
			}
		}
		return nil
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	return wake, cleanup, nil
}
