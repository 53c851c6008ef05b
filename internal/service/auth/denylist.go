package auth

import (
	"context"
	"sync"
	"time"
)

// Denylist records revoked token IDs until the tokens would have expired anyway.
type Denylist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist is an in-process Denylist used when no Redis is configured.
// Revocations are lost on restart and are not shared between processes.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist creates an empty MemoryDenylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add implements Denylist. Non-positive TTLs are ignored since the token has
// already expired.
func (d *MemoryDenylist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.entries[jti] = now.Add(ttl)

	// Sweep expired entries on write so the map stays bounded.
	for id, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, id)
		}
	}
	return nil
}

// Contains implements Denylist.
func (d *MemoryDenylist) Contains(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	until, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}
