// Package model defines the domain records rendered on the map.
package model

import (
	"encoding/json"
	"time"
)

// LocationStatus describes the lifecycle state of a location record.
type LocationStatus string

const (
	StatusActive     LocationStatus = "active"
	StatusPending    LocationStatus = "pending"
	StatusArchived   LocationStatus = "archived"
	StatusDemolished LocationStatus = "demolished"
)

// Location represents a point-of-interest record shown as a map marker.
// Latitude and Longitude are pointers because source data frequently arrives
// without coordinates; such records stay in raw lists but are excluded from
// every spatial operation.
type Location struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Address    string          `json:"address,omitempty"`
	Category   string          `json:"category,omitempty"`
	Status     LocationStatus  `json:"status"`
	Latitude   *float64        `json:"latitude,omitempty"`
	Longitude  *float64        `json:"longitude,omitempty"`
	Source     string          `json:"source,omitempty"`
	SourceID   string          `json:"source_id,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty"`
}

// Mappable reports whether the record carries both coordinates and may take
// part in spatial operations.
func (l *Location) Mappable() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Coords returns the record's coordinates. Only valid when Mappable.
func (l *Location) Coords() (lat, lon float64) {
	return *l.Latitude, *l.Longitude
}

// FilterMappable returns the subset of records with both coordinates present,
// preserving input order.
func FilterMappable(records []Location) []Location {
	out := make([]Location, 0, len(records))
	for _, r := range records {
		if r.Mappable() {
			out = append(out, r)
		}
	}
	return out
}
