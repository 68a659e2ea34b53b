package token

import (
	"sync"
	"time"

	"github.com/jrsteele09/fintrack-client/internal/errors"
)

// Denylist holds the jti of access tokens withdrawn before they expire: the
// token that deleted its own account, and tokens revoked through the fake
// API's test hook to force a refresh. An entry only matters until the token
// would have expired on its own.
type Denylist interface {
	Revoke(jti string, expiresAt time.Time) error
	IsRevoked(jti string) bool
}

// MemoryDenylist keeps entries in a map and drops the expired ones whenever
// a token is revoked
type MemoryDenylist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDenylist uses now to decide expiry, or the wall clock when now is nil
func NewMemoryDenylist(now func() time.Time) *MemoryDenylist {
	if now == nil {
		now = time.Now
	}
	return &MemoryDenylist{
		entries: make(map[string]time.Time),
		now:     now,
	}
}

func (d *MemoryDenylist) Revoke(jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.Wrapf(errors.ErrInvalidToken, "revoke: token has no jti")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked()
	d.entries[jti] = expiresAt
	return nil
}

func (d *MemoryDenylist) IsRevoked(jti string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.entries[jti]
	return ok
}

// Prune drops the entries of tokens that have expired
func (d *MemoryDenylist) Prune() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pruneLocked()
}

func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

func (d *MemoryDenylist) pruneLocked() {
	now := d.now()
	for jti, exp := range d.entries {
		if now.After(exp) {
			delete(d.entries, jti)
		}
	}
}
