package events

import (
	"sync"

	"github.com/google/uuid"
)

// Entry is one (identity, connection) pair held by the Registry.
type Entry struct {
	Identity uuid.UUID
	ConnID   string
}

// Registry maps a user identity to at most one live connection id.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	conns map[uuid.UUID]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]string)}
}

// Register maps identity to connID, replacing any previous connection for
// that identity.
func (r *Registry) Register(identity uuid.UUID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[identity] = connID
}

// Unregister removes identity. Removing an absent identity is a no-op.
func (r *Registry) Unregister(identity uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, identity)
}

// UnregisterIf removes identity only while it still maps to connID, and
// reports whether it did. Disconnect handling must use this so that a late
// disconnect of a replaced connection cannot erase the newer registration.
func (r *Registry) UnregisterIf(identity uuid.UUID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.conns[identity]; ok && current == connID {
		delete(r.conns, identity)
		return true
	}
	return false
}

// Lookup returns the connection registered for identity.
func (r *Registry) Lookup(identity uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID, ok := r.conns[identity]
	return connID, ok
}

// Connections returns a copy of every current entry, in no particular order.
func (r *Registry) Connections() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.conns))
	for identity, connID := range r.conns {
		out = append(out, Entry{Identity: identity, ConnID: connID})
	}
	return out
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}
