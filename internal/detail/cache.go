// Package detail ranks records by distance from the view center and keeps an
// ID-indexed cache of the closest ones for instant lookup on hover and click.
package detail

import (
	"sync"

	"github.com/sells-group/mapview/internal/model"
)

// Cache is an id-keyed secondary index over location records. Writes are
// last-write-wins and entries are never evicted within a session. It is a
// fast-path read-through only — a miss must fall back to the live record the
// caller already holds, never be treated as an error.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]model.Location
}

// NewCache creates an empty detail cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]model.Location)}
}

// Get returns the cached record for id, if present.
func (c *Cache) Get(id string) (model.Location, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[id]
	return r, ok
}

// Put stores a record under its ID, overwriting any existing entry.
func (c *Cache) Put(record model.Location) {
	c.mu.Lock()
	c.entries[record.ID] = record
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
