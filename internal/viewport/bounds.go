// Package viewport implements the bounds-padded cache that decides whether a
// map viewport change can be served from the most recent fetch.
package viewport

import "github.com/rotisserie/eris"

// Bounds is an axis-aligned lat/lon rectangle in degrees. North must exceed
// South; antimeridian-crossing rectangles are not supported.
type Bounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Validate checks that the rectangle is well-formed.
func (b Bounds) Validate() error {
	if b.North <= b.South {
		return eris.Errorf("viewport: north %f must exceed south %f", b.North, b.South)
	}
	if b.East <= b.West {
		return eris.Errorf("viewport: east %f must exceed west %f", b.East, b.West)
	}
	return nil
}

// Contains reports whether the point lies inside the rectangle, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Pad returns the rectangle widened by the given fraction of its own height
// and width on every side.
func (b Bounds) Pad(fraction float64) Bounds {
	latPad := (b.North - b.South) * fraction
	lngPad := (b.East - b.West) * fraction
	return Bounds{
		North: b.North + latPad,
		South: b.South - latPad,
		East:  b.East + lngPad,
		West:  b.West - lngPad,
	}
}

// Covers reports whether b fully contains other. The test is one-directional:
// a rectangle never covers one larger than itself on any edge.
func (b Bounds) Covers(other Bounds) bool {
	return other.South >= b.South &&
		other.North <= b.North &&
		other.West >= b.West &&
		other.East <= b.East
}

// Center returns the rectangle's midpoint.
func (b Bounds) Center() (lat, lon float64) {
	return (b.North + b.South) / 2, (b.East + b.West) / 2
}
