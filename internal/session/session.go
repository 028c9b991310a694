// Package session ties the map surface together: one Session owns the
// viewport cache, the detail preloader, the zone overlays, and the selection
// resolver for a single connected client.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/detail"
	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/provider"
	"github.com/sells-group/mapview/internal/selection"
	"github.com/sells-group/mapview/internal/viewport"
	"github.com/sells-group/mapview/internal/zone"
)

const (
	// DefaultDebounce is the quiet period after the last viewport change
	// before a fetch is considered.
	DefaultDebounce = 200 * time.Millisecond

	// DefaultFetchTimeout bounds a single backend fetch.
	DefaultFetchTimeout = 30 * time.Second
)

// StatusDegraded is reported while the backend is failing and the map keeps
// showing the last good records.
const StatusDegraded = "showing cached records; backend unavailable"

// Session is the per-client orchestrator. All methods are safe for
// concurrent use.
type Session struct {
	id        string
	provider  provider.Provider
	cache     *viewport.Cache
	details   *detail.Cache
	preloader *detail.Preloader
	resolver  *selection.Resolver
	zones     *zone.Set

	mu         sync.Mutex
	visible    map[zone.Kind]bool
	desired    viewport.Bounds
	hasDesired bool
	gen        uint64
	status     string

	debounce     *debouncer
	fetchTimeout time.Duration
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the viewport debounce period. Zero disables
// debouncing and refreshes synchronously.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = newDebouncer(d) }
}

// WithFetchTimeout overrides the per-fetch timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Session) { s.fetchTimeout = d }
}

// WithCache supplies a preconfigured viewport cache.
func WithCache(c *viewport.Cache) Option {
	return func(s *Session) { s.cache = c }
}

// WithPreloadLimit caps how many nearby records are warmed per viewport.
func WithPreloadLimit(n int) Option {
	return func(s *Session) { s.preloader = detail.NewPreloader(s.details, detail.WithLimit(n)) }
}

// WithClickThreshold overrides the ambiguous-click distance in degrees.
func WithClickThreshold(deg float64) Option {
	return func(s *Session) { s.resolver = selection.NewResolver(s.details, selection.WithClickThreshold(deg)) }
}

// WithZones supplies preloaded zone overlays.
func WithZones(zones *zone.Set) Option {
	return func(s *Session) { s.zones = zones }
}

// New creates a Session backed by the given record provider. Zone overlays
// start visible.
func New(p provider.Provider, opts ...Option) *Session {
	details := detail.NewCache()
	s := &Session{
		id:        uuid.New().String(),
		provider:  p,
		cache:     viewport.NewCache(),
		details:   details,
		preloader: detail.NewPreloader(details),
		resolver:  selection.NewResolver(details),
		zones:     zone.NewSet(),
		visible: map[zone.Kind]bool{
			zone.KindFlood:       true,
			zone.KindOpportunity: true,
		},
		debounce:     newDebouncer(DefaultDebounce),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetViewport records the client's new viewport and schedules a refresh
// after the debounce period. Rapid successive calls coalesce into one fetch
// for the final bounds; responses for superseded bounds are discarded.
func (s *Session) SetViewport(bounds viewport.Bounds) error {
	if err := bounds.Validate(); err != nil {
		return eris.Wrap(err, "session: set viewport")
	}

	s.mu.Lock()
	s.desired = bounds
	s.hasDesired = true
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	s.debounce.Trigger(func() { s.refresh(gen, bounds) })
	return nil
}

// current reports whether gen still matches the latest viewport change.
func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

func (s *Session) refresh(gen uint64, bounds viewport.Bounds) {
	if !s.current(gen) {
		return
	}

	if records, ok := s.cache.Query(bounds); ok {
		s.applyRecords(bounds, records)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	records, err := s.provider.FetchBounds(ctx, bounds)
	if !s.current(gen) {
		// The viewport moved while the fetch was in flight.
		return
	}
	if err != nil {
		s.setStatus(StatusDegraded)
		zap.L().Warn("viewport fetch failed, keeping cached records",
			zap.String("session", s.id),
			zap.Error(err),
		)
		return
	}

	s.cache.Replace(bounds, records)
	visible, _ := s.cache.Query(bounds)
	s.applyRecords(bounds, visible)
}

func (s *Session) applyRecords(bounds viewport.Bounds, records []model.Location) {
	s.setStatus("")
	lat, lon := bounds.Center()
	s.preloader.Rank(records, lat, lon)
}

func (s *Session) setStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
}

// Status returns the current degradation message, empty when healthy.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Records returns the markers for the current viewport. On a cache miss it
// falls back to the last fetched records that still fall inside the
// viewport, so a failing backend leaves the map populated.
func (s *Session) Records() []model.Location {
	s.mu.Lock()
	desired, ok := s.desired, s.hasDesired
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if records, hit := s.cache.Query(desired); hit {
		return records
	}

	var stale []model.Location
	for _, r := range s.cache.Snapshot() {
		if !r.Mappable() {
			continue
		}
		lat, lon := r.Coords()
		if desired.Contains(lat, lon) {
			stale = append(stale, r)
		}
	}
	return stale
}

// Click resolves a map click into a selection using the current records,
// zone overlays, and visibility toggles.
func (s *Session) Click(lat, lon float64) selection.State {
	s.mu.Lock()
	floodVisible := s.visible[zone.KindFlood]
	oppVisible := s.visible[zone.KindOpportunity]
	s.mu.Unlock()

	click := selection.Click{
		Lat:                lat,
		Lon:                lon,
		FloodVisible:       floodVisible,
		OpportunityVisible: oppVisible,
		Records:            s.Records(),
	}
	if f := zone.FirstHit(s.zones.Features(zone.KindFlood), lat, lon); f != nil {
		click.FloodHit = true
		click.Flood = f
	}
	if f := zone.FirstHit(s.zones.Features(zone.KindOpportunity), lat, lon); f != nil {
		click.OpportunityHit = true
		click.Opportunity = f
	}
	return s.resolver.Resolve(click)
}

// Selection returns the current selection state.
func (s *Session) Selection() selection.State {
	return s.resolver.State()
}

// ClosePanel dismisses the detail panel and clears the selection.
func (s *Session) ClosePanel() {
	s.resolver.Close()
}

// SetZoneVisible toggles a zone overlay. Hiding an overlay removes it from
// click resolution without unloading its features.
func (s *Session) SetZoneVisible(kind zone.Kind, visible bool) {
	s.mu.Lock()
	s.visible[kind] = visible
	s.mu.Unlock()
}

// ZoneVisible reports whether the overlay is shown.
func (s *Session) ZoneVisible(kind zone.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[kind]
}

// Zones returns the loaded overlay features.
func (s *Session) Zones() *zone.Set { return s.zones }

// Stats summarizes the session for the stats endpoint.
type Stats struct {
	ID               string              `json:"id"`
	Provider         string              `json:"provider"`
	Viewport         viewport.CacheStats `json:"viewport"`
	DetailCount      int                 `json:"detail_count"`
	FloodZones       int                 `json:"flood_zones"`
	OpportunityZones int                 `json:"opportunity_zones"`
	Status           string              `json:"status,omitempty"`
}

// Stats returns a snapshot of session counters.
func (s *Session) Stats() Stats {
	return Stats{
		ID:               s.id,
		Provider:         s.provider.Name(),
		Viewport:         s.cache.Stats(),
		DetailCount:      s.details.Len(),
		FloodZones:       len(s.zones.Features(zone.KindFlood)),
		OpportunityZones: len(s.zones.Features(zone.KindOpportunity)),
		Status:           s.Status(),
	}
}

// Close stops pending work.
func (s *Session) Close() {
	s.debounce.Stop()
	s.resolver.Close()
}
