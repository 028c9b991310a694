package zone

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// HitTest returns the features whose geometry contains the given point.
// Containment is even-odd per polygon: inside the outer ring and outside
// every hole ring. A cheap bounding-box rejection runs first.
func HitTest(features []Feature, lat, lon float64) []Feature {
	point := geom.Coord{lon, lat}

	var hits []Feature
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		if !f.Geometry.Bounds().OverlapsPoint(geom.XY, point) {
			continue
		}
		if multiPolygonContains(f.Geometry, point) {
			hits = append(hits, f)
		}
	}
	return hits
}

// FirstHit returns the first feature containing the point, or nil.
func FirstHit(features []Feature, lat, lon float64) *Feature {
	hits := HitTest(features, lat, lon)
	if len(hits) == 0 {
		return nil
	}
	return &hits[0]
}

func multiPolygonContains(mp *geom.MultiPolygon, point geom.Coord) bool {
	for i := range mp.NumPolygons() {
		if polygonContains(mp.Polygon(i), point) {
			return true
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, point geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), point, p.LinearRing(0).FlatCoords()) {
		return false
	}
	// Any hole containing the point excludes it.
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), point, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
