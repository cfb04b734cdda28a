package sharedline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Checker answers whether a user is a shared-line user.
type Checker interface {
	IsSharedLineUser(ctx context.Context, user string) (bool, error)
}

type lookupEntry struct {
	shared bool
	built  time.Time
}

// Lookup caches Checker answers for a TTL. Concurrent misses for the same
// user share one store query.
type Lookup struct {
	checker Checker
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]lookupEntry
	sf      singleflight.Group
}

// NewLookup creates a cached lookup over checker. A zero ttl disables caching.
func NewLookup(checker Checker, ttl time.Duration) *Lookup {
	return &Lookup{
		checker: checker,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]lookupEntry),
	}
}

func (l *Lookup) fresh(user string) (bool, bool) {
	l.mu.RLock()
	e, ok := l.entries[user]
	l.mu.RUnlock()
	if !ok || l.ttl <= 0 || l.now().Sub(e.built) > l.ttl {
		return false, false
	}
	return e.shared, true
}

// IsSharedLineUser returns the cached answer or queries the checker.
func (l *Lookup) IsSharedLineUser(ctx context.Context, user string) (bool, error) {
	if shared, ok := l.fresh(user); ok {
		return shared, nil
	}

	v, err, _ := l.sf.Do(user, func() (any, error) {
		// Another caller may have filled the entry meanwhile
		if shared, ok := l.fresh(user); ok {
			return shared, nil
		}

		shared, err := l.checker.IsSharedLineUser(ctx, user)
		if err != nil {
			return false, err
		}

		l.mu.Lock()
		l.entries[user] = lookupEntry{shared: shared, built: l.now()}
		l.mu.Unlock()
		return shared, nil
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

// Invalidate drops every cached answer.
func (l *Lookup) Invalidate() {
	l.mu.Lock()
	l.entries = make(map[string]lookupEntry)
	l.mu.Unlock()
}
