package viewport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sells-group/mapview/internal/model"
)

// DefaultExpiration is how long a fetch result stays usable.
const DefaultExpiration = 5 * time.Minute

// DefaultPadFraction widens the cached rectangle by 20% of its own extent
// when deciding whether a request is already covered. Padding only relaxes
// the fetch decision; returned records are always filtered to the unpadded
// request.
const DefaultPadFraction = 0.2

// Cache holds the single most recent bounds fetch. It is replaced wholesale
// on every successful fetch and never merged or patched.
type Cache struct {
	mu          sync.RWMutex
	entry       *entry
	expiration  time.Duration
	padFraction float64
	hits        atomic.Int64
	misses      atomic.Int64

	now func() time.Time // test hook
}

type entry struct {
	fetchedAt time.Time
	bounds    Bounds
	data      []model.Location
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Populated  bool    `json:"populated"`
	Records    int     `json:"records"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	AgeSeconds float64 `json:"age_seconds"`
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithExpiration overrides the entry lifetime.
func WithExpiration(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.expiration = d
		}
	}
}

// WithPadFraction overrides the containment padding fraction.
func WithPadFraction(f float64) CacheOption {
	return func(c *Cache) {
		if f >= 0 {
			c.padFraction = f
		}
	}
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates an empty bounds cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		expiration:  DefaultExpiration,
		padFraction: DefaultPadFraction,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query reports whether the requested bounds can be served from the cached
// entry and, if so, returns the cached records that fall inside the unpadded
// request. A usable entry must be fresh, non-empty, and fully cover the
// request once padded by a fraction of the cached rectangle's own size.
// A covered request that filters down to zero records is reported as a miss
// so the caller re-fetches.
func (c *Cache) Query(requested Bounds) ([]model.Location, bool) {
	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()

	if e == nil {
		c.misses.Add(1)
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.expiration {
		c.misses.Add(1)
		return nil, false
	}
	if len(e.data) == 0 {
		c.misses.Add(1)
		return nil, false
	}
	if !e.bounds.Pad(c.padFraction).Covers(requested) {
		c.misses.Add(1)
		return nil, false
	}

	var matched []model.Location
	for _, r := range e.data {
		if !r.Mappable() {
			continue
		}
		lat, lon := r.Coords()
		if requested.Contains(lat, lon) {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return matched, true
}

// Replace installs a new entry for the given bounds, discarding the previous
// one. Callers must only invoke this after a successful fetch; a failed fetch
// leaves the cache untouched by never reaching here.
func (c *Cache) Replace(bounds Bounds, records []model.Location) {
	data := make([]model.Location, len(records))
	copy(data, records)

	c.mu.Lock()
	c.entry = &entry{
		fetchedAt: c.now(),
		bounds:    bounds,
		data:      data,
	}
	c.mu.Unlock()
}

// Snapshot returns the cached records regardless of the requested viewport.
// Used as the last-good fallback when a fetch fails.
func (c *Cache) Snapshot() []model.Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return nil
	}
	out := make([]model.Location, len(c.entry.data))
	copy(out, c.entry.data)
	return out
}

// Bounds returns the bounds of the cached entry, if any.
func (c *Cache) Bounds() (Bounds, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return Bounds{}, false
	}
	return c.entry.bounds, true
}

// Stats returns cache performance statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	stats := CacheStats{Hits: hits, Misses: misses, HitRate: hitRate}
	if e != nil {
		stats.Populated = true
		stats.Records = len(e.data)
		stats.AgeSeconds = c.now().Sub(e.fetchedAt).Seconds()
	}
	return stats
}
