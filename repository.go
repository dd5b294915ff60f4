package fleetctl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/renameio/v2"
)

// Repository is the persisted state of the fleet: configuration files and
// pid files keyed by instance id.
type Repository interface {
	// List returns every id that has a configuration file or a pid file,
	// deduplicated and sorted
	List(ctx context.Context) ([]string, error)

	// ReadPID returns the pid recorded for id. A missing pid file yields an
	// error matching fs.ErrNotExist, bad contents an ErrCorruptPidFile.
	ReadPID(id string) (int, error)

	// RemovePID deletes the pid file of id. A missing file is not an error.
	RemovePID(id string) error

	// ReadEnabled derives the enabled flag from the configuration file.
	// It returns ErrNotFound when id has no configuration file.
	ReadEnabled(id string) (bool, error)

	// WriteEnabled sets or clears the auto-start suppression marker and
	// reports whether the file changed. It returns ErrNotFound when id has
	// no configuration file.
	WriteEnabled(id string, enabled bool) (bool, error)
}

// FSRepository keeps fleet state in files laid out by a Layout
type FSRepository struct {
	Layout Layout
}

// NewFSRepository creates a filesystem repository for layout
func NewFSRepository(layout Layout) *FSRepository {
	return &FSRepository{Layout: layout}
}

// List scans the configuration and pid directories. A missing directory
// contributes no ids; names that do not follow the layout are ignored.
func (r *FSRepository) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	scans := []struct {
		dir     string
		extract func(string) (string, bool)
	}{
		{r.Layout.ConfigDir, r.Layout.IDFromConfig},
		{r.Layout.PIDDir, r.Layout.IDFromPID},
	}

	for _, scan := range scans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(scan.dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("scanning %s: %w", scan.dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if id, ok := scan.extract(entry.Name()); ok {
				seen[id] = struct{}{}
			}
		}
	}

	return sortedIDs(seen), nil
}

// ReadPID reads and parses the pid file of id
func (r *FSRepository) ReadPID(id string) (int, error) {
	path := r.Layout.PIDPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := parsePID(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return pid, nil
}

// RemovePID deletes the pid file of id
func (r *FSRepository) RemovePID(id string) error {
	if err := os.Remove(r.Layout.PIDPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ReadEnabled reports whether the configuration of id allows auto-start
func (r *FSRepository) ReadEnabled(id string) (bool, error) {
	data, err := r.readConfig(id)
	if err != nil {
		return false, err
	}
	return configEnabled(data), nil
}

// WriteEnabled rewrites the configuration of id atomically when the
// suppression marker needs to change. File permissions are preserved.
func (r *FSRepository) WriteEnabled(id string, enabled bool) (bool, error) {
	path := r.Layout.ConfigPath(id)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return false, err
	}

	data, err := r.readConfig(id)
	if err != nil {
		return false, err
	}

	var updated []byte
	var changed bool
	if enabled {
		updated, changed = markEnabled(data)
	} else {
		updated, changed = markDisabled(data)
	}
	if !changed {
		return false, nil
	}

	if err := renameio.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

func (r *FSRepository) readConfig(id string) ([]byte, error) {
	path := r.Layout.ConfigPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
