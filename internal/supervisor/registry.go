package supervisor

import "sync"

// Registry holds at most one RunningService per service id
type Registry struct {
	mu      sync.RWMutex
	entries map[string]RunningService
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]RunningService)}
}

// Get returns the entry for id, or nil
func (r *Registry) Get(id string) RunningService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

// Put registers rs, replacing any existing entry for its id
func (r *Registry) Put(rs RunningService) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[rs.ServiceID()] = rs
}

// PutIfAbsent registers rs only when its id has no entry
func (r *Registry) PutIfAbsent(rs RunningService) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[rs.ServiceID()]; exists {
		return false
	}
	r.entries[rs.ServiceID()] = rs
	return true
}

// RemoveIf deletes the entry for id only if it is still rs. Removing an
// entry that is already gone or was replaced is a no-op, which makes a late
// exit callback harmless after an explicit stop and restart.
func (r *Registry) RemoveIf(id string, rs RunningService) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.entries[id]; ok && current == rs {
		delete(r.entries, id)
		return true
	}
	return false
}

// Snapshot returns a copy of every entry
func (r *Registry) Snapshot() map[string]RunningService {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]RunningService, len(r.entries))
	for id, rs := range r.entries {
		out[id] = rs
	}
	return out
}

// Len returns the number of entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
