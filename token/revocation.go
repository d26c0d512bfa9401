package token

import (
	"sync"
	"time"
)

// Denylist remembers revoked access tokens by jti. An entry only matters
// until the token's own exp; after that the parser rejects it anyway.
type Denylist interface {
	Deny(jti string, until time.Time)
	Denied(jti string, now time.Time) bool
	// Prune drops entries whose token has expired and reports how many went.
	Prune(now time.Time) int
}

type memoryDenylist struct {
	entries map[string]time.Time
	mu      sync.RWMutex
}

func NewMemoryDenylist() Denylist {
	return &memoryDenylist{entries: make(map[string]time.Time)}
}

func (d *memoryDenylist) Deny(jti string, until time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[jti] = until
}

func (d *memoryDenylist) Denied(jti string, now time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	until, ok := d.entries[jti]
	return ok && !now.After(until)
}

func (d *memoryDenylist) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for jti, until := range d.entries {
		if now.After(until) {
			delete(d.entries, jti)
			n++
		}
	}
	return n
}
