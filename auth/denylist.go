package auth

import (
	"sync"
	"time"
)

// AccessDenylist holds the IDs of access tokens revoked before their expiry. An entry stops
// mattering once the token expires, because the signature check rejects it from then on.
type AccessDenylist interface {
	Revoke(tokenID string, expires time.Time)
	IsRevoked(tokenID string, now time.Time) bool
	Prune(now time.Time) int
}

type memoryDenylist struct {
	mu      sync.RWMutex
	expires map[string]time.Time
}

// NewMemoryDenylist returns a process-local AccessDenylist
func NewMemoryDenylist() AccessDenylist {
	return &memoryDenylist{expires: make(map[string]time.Time)}
}

func (d *memoryDenylist) Revoke(tokenID string, expires time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if current, ok := d.expires[tokenID]; ok && current.After(expires) {
		return
	}
	d.expires[tokenID] = expires
}

func (d *memoryDenylist) IsRevoked(tokenID string, now time.Time) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	exp, ok := d.expires[tokenID]
	return ok && now.Before(exp)
}

// Prune drops entries whose token has expired and reports how many went
func (d *memoryDenylist) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for id, exp := range d.expires {
		if !now.Before(exp) {
			delete(d.expires, id)
			n++
		}
	}
	return n
}
