// Package zone models the two polygon overlay categories drawn over location
// markers: flood zones and opportunity zones. Features carry a category tag
// and a typed attribute set; geometry is opaque go-geom and never part of
// feature identity.
package zone

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Kind tags a feature with its source layer category.
type Kind string

const (
	// KindFlood is the flood-zone overlay category.
	KindFlood Kind = "flood"
	// KindOpportunity is the opportunity-zone overlay category.
	KindOpportunity Kind = "opportunity"
)

// Kinds lists the known overlay categories.
var Kinds = []Kind{KindFlood, KindOpportunity}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFlood:
		return KindFlood, nil
	case KindOpportunity:
		return KindOpportunity, nil
	default:
		return "", eris.Errorf("zone: unknown kind %q", s)
	}
}

// FloodAttrs is the attribute schema for flood-zone features.
type FloodAttrs struct {
	ZoneCode  string `json:"zone_code"`
	FloodType string `json:"flood_type,omitempty"`
	Source    string `json:"source,omitempty"`
	SourceID  string `json:"source_id,omitempty"`
}

// OpportunityAttrs is the attribute schema for opportunity-zone features.
type OpportunityAttrs struct {
	GEOID       string `json:"geoid"`
	TractName   string `json:"tract_name,omitempty"`
	StateFIPS   string `json:"state_fips,omitempty"`
	Designation string `json:"designation,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Feature is one polygon feature from either overlay. Exactly the attribute
// slot matching Kind is populated.
type Feature struct {
	Kind        Kind               `json:"kind"`
	Flood       *FloodAttrs        `json:"flood,omitempty"`
	Opportunity *OpportunityAttrs  `json:"opportunity,omitempty"`
	Geometry    *geom.MultiPolygon `json:"-"`
}

// NewFloodFeature builds a flood-zone feature.
func NewFloodFeature(attrs FloodAttrs, geometry *geom.MultiPolygon) Feature {
	return Feature{Kind: KindFlood, Flood: &attrs, Geometry: geometry}
}

// NewOpportunityFeature builds an opportunity-zone feature.
func NewOpportunityFeature(attrs OpportunityAttrs, geometry *geom.MultiPolygon) Feature {
	return Feature{Kind: KindOpportunity, Opportunity: &attrs, Geometry: geometry}
}

// Label returns a short human-readable identifier for the feature.
func (f Feature) Label() string {
	switch f.Kind {
	case KindFlood:
		if f.Flood != nil {
			return f.Flood.ZoneCode
		}
	case KindOpportunity:
		if f.Opportunity != nil {
			return f.Opportunity.GEOID
		}
	}
	return string(f.Kind)
}

// Set holds the loaded features for both overlay categories. A category that
// failed to load is simply absent.
type Set struct {
	features map[Kind][]Feature
}

// NewSet creates an empty feature set.
func NewSet() *Set {
	return &Set{features: make(map[Kind][]Feature)}
}

// Put replaces the features for one category.
func (s *Set) Put(kind Kind, features []Feature) {
	s.features[kind] = features
}

// Features returns the features loaded for a category.
func (s *Set) Features(kind Kind) []Feature {
	return s.features[kind]
}

// Loaded reports whether a category has any features.
func (s *Set) Loaded(kind Kind) bool {
	return len(s.features[kind]) > 0
}
