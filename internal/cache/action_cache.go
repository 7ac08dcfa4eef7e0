package cache

import (
	"sync"
	"time"

	"github.com/datwatch/verifier/internal/models"
)

// ActionCache is an in-memory TTL cache of per-entity corporate action
// lists. Splits change rarely, and a reconciliation run touches the same
// entity once per metric, so a short TTL removes five identical queries per
// pass without risking stale action windows.
type ActionCache struct {
	entries map[string]actionEntry
	mu      sync.RWMutex
	ttl     time.Duration
}

type actionEntry struct {
	actions   []models.CorporateAction
	fetchedAt time.Time
}

// NewActionCache creates a new in-memory cache
func NewActionCache(ttl time.Duration) *ActionCache {
	return &ActionCache{
		entries: make(map[string]actionEntry),
		ttl:     ttl,
	}
}

// Get retrieves cached actions if fresh
func (c *ActionCache) Get(entityID string) ([]models.CorporateAction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[entityID]
	if !exists {
		return nil, false
	}
	if time.Since(entry.fetchedAt) > c.ttl {
		return nil, false
	}
	return entry.actions, true
}

// Set caches an entity's action list
func (c *ActionCache) Set(entityID string, actions []models.CorporateAction) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entityID] = actionEntry{
		actions:   actions,
		fetchedAt: time.Now(),
	}
}

// Invalidate removes an entity from the cache
func (c *ActionCache) Invalidate(entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, entityID)
}

// Clear removes all cached data
func (c *ActionCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]actionEntry)
	c.mu.Unlock()
}
