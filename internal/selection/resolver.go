package selection

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/mapview/internal/detail"
	"github.com/sells-group/mapview/internal/geo"
	"github.com/sells-group/mapview/internal/model"
)

// DefaultClickThresholdDeg is the planar degree-space radius within which a
// record qualifies as the click's point candidate, on the order of 1-2 km
// depending on latitude.
const DefaultClickThresholdDeg = 0.02

// cycleRing is the fixed order clicks advance through when overlapping
// candidates are present. It is the single source of truth for cycling;
// unavailable types are skipped.
var cycleRing = []FocusType{FocusLocation, FocusFlood, FocusOpportunity}

// Resolver is the selection state machine. It owns the current State and
// advances it on every click; construct one per view session.
type Resolver struct {
	mu        sync.Mutex
	state     State
	threshold float64
	details   *detail.Cache
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithClickThreshold overrides the nearest-point qualification radius, in degrees.
func WithClickThreshold(deg float64) ResolverOption {
	return func(r *Resolver) {
		if deg > 0 {
			r.threshold = deg
		}
	}
}

// NewResolver creates a Resolver reading enriched records through the given
// detail cache.
func NewResolver(details *detail.Cache, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		state:     emptyState(),
		threshold: DefaultClickThresholdDeg,
		details:   details,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current selection.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close hides the panel and clears the selection. This is the only way a
// selection is cleared; clicks that resolve nothing leave state untouched.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.state = emptyState()
	r.mu.Unlock()
}

// Resolve applies one click to the state machine and returns the new state.
//
// With no prior selection, or with fewer than two candidate types under the
// cursor, priority order decides: location beats flood beats opportunity.
// With a prior selection and an ambiguous click, the selection advances along
// the fixed location → flood → opportunity ring, skipping candidate types not
// present. A click with no candidates at all is a no-op.
func (r *Resolver) Resolve(click Click) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	nearest := r.nearestRecord(click)

	available := map[FocusType]bool{
		FocusLocation:    nearest != nil,
		FocusFlood:       click.FloodHit && click.FloodVisible,
		FocusOpportunity: click.OpportunityHit && click.OpportunityVisible,
	}
	candidates := 0
	for _, ok := range available {
		if ok {
			candidates++
		}
	}

	if candidates == 0 {
		return r.state
	}

	if r.state.Focus != FocusNone && candidates >= 2 {
		next := nextInRing(r.state.Focus, available)
		if r.apply(next, nearest, click) {
			return r.state
		}
		// The computed type had no feature data behind its flag; fall back
		// to priority order over what does.
		zap.L().Debug("selection: cycled candidate had no data, using priority order",
			zap.String("wanted", string(next)),
		)
	}

	for _, focus := range cycleRing {
		if available[focus] && r.apply(focus, nearest, click) {
			return r.state
		}
	}
	return r.state
}

// nextInRing returns the first available focus type after current in ring
// order, wrapping around. When nothing else is available it returns current.
func nextInRing(current FocusType, available map[FocusType]bool) FocusType {
	start := 0
	for i, f := range cycleRing {
		if f == current {
			start = i
			break
		}
	}
	for step := 1; step <= len(cycleRing); step++ {
		next := cycleRing[(start+step)%len(cycleRing)]
		if available[next] {
			return next
		}
	}
	return current
}

// apply installs the selection for the given focus type. It reports false
// when the click carries no feature data for that type, leaving state
// untouched so the caller can fall back.
func (r *Resolver) apply(focus FocusType, nearest *model.Location, click Click) bool {
	switch focus {
	case FocusLocation:
		if nearest == nil {
			return false
		}
		record := *nearest
		// Prefer the enriched copy the preloader staged; fall back to the
		// live record in hand.
		if cached, ok := r.details.Get(record.ID); ok {
			record = cached
		}
		r.state = locationState(record)
	case FocusFlood:
		if click.Flood == nil {
			return false
		}
		r.state = floodState(*click.Flood)
	case FocusOpportunity:
		if click.Opportunity == nil {
			return false
		}
		r.state = opportunityState(*click.Opportunity)
	default:
		return false
	}
	return true
}

// nearestRecord returns the single closest mappable record within the click
// threshold, or nil. Only the nearest qualifies no matter how many records
// are in range.
func (r *Resolver) nearestRecord(click Click) *model.Location {
	var best *model.Location
	bestDist := r.threshold

	for i := range click.Records {
		rec := &click.Records[i]
		if !rec.Mappable() {
			continue
		}
		lat, lon := rec.Coords()
		d := geo.PlanarDistance(click.Lat, click.Lon, lat, lon)
		if d < bestDist {
			bestDist = d
			best = rec
		}
	}
	return best
}
