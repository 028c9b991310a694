// Package selection resolves map clicks into a single focused feature and
// cycles through overlapping candidates on repeated clicks at the same spot.
package selection

import (
	"github.com/sells-group/mapview/internal/model"
	"github.com/sells-group/mapview/internal/zone"
)

// FocusType names what kind of feature currently holds the selection.
type FocusType string

const (
	FocusNone        FocusType = "none"
	FocusLocation    FocusType = "location"
	FocusFlood       FocusType = "flood"
	FocusOpportunity FocusType = "opportunity"
)

// State is the current selection. At most one of the selected slots is
// populated; Focus == FocusNone implies the panel is hidden and every slot
// is nil.
type State struct {
	Focus        FocusType       `json:"focus"`
	Location     *model.Location `json:"location,omitempty"`
	Flood        *zone.Feature   `json:"flood,omitempty"`
	Opportunity  *zone.Feature   `json:"opportunity,omitempty"`
	PanelVisible bool            `json:"panel_visible"`
}

func emptyState() State {
	return State{Focus: FocusNone}
}

func locationState(record model.Location) State {
	return State{Focus: FocusLocation, Location: &record, PanelVisible: true}
}

func floodState(feature zone.Feature) State {
	return State{Focus: FocusFlood, Flood: &feature, PanelVisible: true}
}

func opportunityState(feature zone.Feature) State {
	return State{Focus: FocusOpportunity, Opportunity: &feature, PanelVisible: true}
}

// Click is one map click plus everything the resolver consults: the click
// point, the hit-test outcome for each overlay (flag and, when the renderer
// produced one, the feature), the overlay visibility toggles, and the live
// record set. A hidden overlay is treated as not hit even when the flag is
// set.
type Click struct {
	Lat float64
	Lon float64

	FloodHit       bool
	Flood          *zone.Feature
	OpportunityHit bool
	Opportunity    *zone.Feature

	FloodVisible       bool
	OpportunityVisible bool

	Records []model.Location
}
