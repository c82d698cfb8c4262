package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/battlesync/battlesync-server/internal/engine"
)

// LeaderCache is a read-through TTL cache in front of a leader source.
// The engine asks for leaders on every aura reconciliation, so the cache
// sits between it and any source with per-lookup cost. It is injected
// into the engine as a dependency, never reached through a global.
type LeaderCache struct {
	source engine.LeaderSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]leaderEntry
}

type leaderEntry struct {
	leader  *engine.LeaderTemplate
	fetched time.Time
}

// NewLeaderCache wraps a leader source with a TTL cache. A zero TTL
// caches forever.
func NewLeaderCache(source engine.LeaderSource, ttl time.Duration) *LeaderCache {
	return &LeaderCache{
		source:  source,
		ttl:     ttl,
		entries: make(map[string]leaderEntry),
	}
}

// Leader returns the cached leader, fetching through on miss or expiry.
// Negative results (unknown leader) are cached too.
func (c *LeaderCache) Leader(ctx context.Context, id string) (*engine.LeaderTemplate, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if ok && (c.ttl == 0 || time.Since(entry.fetched) < c.ttl) {
		return entry.leader, nil
	}

	leader, err := c.source.Leader(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = leaderEntry{leader: leader, fetched: time.Now()}
	c.mu.Unlock()
	return leader, nil
}

// Invalidate drops one cached leader.
func (c *LeaderCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
