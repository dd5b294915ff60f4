package fleetctl

import (
	"context"
	"fmt"
	"io/fs"
	"sync"
)

// MemoryRepository keeps fleet state in memory. It stores raw file contents
// so marker and pid parsing behave exactly as with FSRepository.
type MemoryRepository struct {
	mu      sync.Mutex
	configs map[string][]byte
	pids    map[string][]byte
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		configs: make(map[string][]byte),
		pids:    make(map[string][]byte),
	}
}

// SetConfig creates or replaces the configuration contents of id
func (r *MemoryRepository) SetConfig(id, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[id] = []byte(content)
}

// Config returns the configuration contents of id
func (r *MemoryRepository) Config(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.configs[id]
	return string(data), ok
}

// SetPIDFile creates or replaces the raw pid file contents of id
func (r *MemoryRepository) SetPIDFile(id, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids[id] = []byte(content)
}

// PIDFile returns the raw pid file contents of id
func (r *MemoryRepository) PIDFile(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.pids[id]
	return string(data), ok
}

// List returns the union of configured ids and ids with a pid file
func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.configs)+len(r.pids))
	for id := range r.configs {
		seen[id] = struct{}{}
	}
	for id := range r.pids {
		seen[id] = struct{}{}
	}
	return sortedIDs(seen), nil
}

// ReadPID parses the stored pid file of id
func (r *MemoryRepository) ReadPID(id string) (int, error) {
	r.mu.Lock()
	data, ok := r.pids[id]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("pid file %q: %w", id, fs.ErrNotExist)
	}
	return parsePID(data)
}

// RemovePID deletes the stored pid file of id
func (r *MemoryRepository) RemovePID(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pids, id)
	return nil
}

// ReadEnabled derives the enabled flag from the stored configuration
func (r *MemoryRepository) ReadEnabled(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.configs[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return configEnabled(data), nil
}

// WriteEnabled updates the suppression marker in the stored configuration
func (r *MemoryRepository) WriteEnabled(id string, enabled bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.configs[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var changed bool
	if enabled {
		data, changed = markEnabled(data)
	} else {
		data, changed = markDisabled(data)
	}
	if changed {
		r.configs[id] = data
	}
	return changed, nil
}
