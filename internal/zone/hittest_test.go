package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// square builds a single-polygon multipolygon covering [minLon,maxLon] x [minLat,maxLat].
func square(minLon, minLat, maxLon, maxLat float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	poly := geom.NewPolygon(geom.XY)
	ring := geom.NewLinearRingFlat(geom.XY, []float64{
		minLon, minLat,
		maxLon, minLat,
		maxLon, maxLat,
		minLon, maxLat,
		minLon, minLat,
	})
	if err := poly.Push(ring); err != nil {
		panic(err)
	}
	if err := mp.Push(poly); err != nil {
		panic(err)
	}
	return mp
}

// squareWithHole carves an inner square hole out of the outer square.
func squareWithHole(minLon, minLat, maxLon, maxLat, hMinLon, hMinLat, hMaxLon, hMaxLat float64) *geom.MultiPolygon {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	poly := geom.NewPolygon(geom.XY)
	outer := geom.NewLinearRingFlat(geom.XY, []float64{
		minLon, minLat, maxLon, minLat, maxLon, maxLat, minLon, maxLat, minLon, minLat,
	})
	hole := geom.NewLinearRingFlat(geom.XY, []float64{
		hMinLon, hMinLat, hMaxLon, hMinLat, hMaxLon, hMaxLat, hMinLon, hMaxLat, hMinLon, hMinLat,
	})
	if err := poly.Push(outer); err != nil {
		panic(err)
	}
	if err := poly.Push(hole); err != nil {
		panic(err)
	}
	if err := mp.Push(poly); err != nil {
		panic(err)
	}
	return mp
}

func TestHitTest_PointInside(t *testing.T) {
	features := []Feature{
		NewFloodFeature(FloodAttrs{ZoneCode: "AE"}, square(-105.2, 39.5, -104.6, 40.0)),
	}

	hits := HitTest(features, 39.7, -104.9)
	require.Len(t, hits, 1)
	assert.Equal(t, KindFlood, hits[0].Kind)
	assert.Equal(t, "AE", hits[0].Flood.ZoneCode)
}

func TestHitTest_PointOutside(t *testing.T) {
	features := []Feature{
		NewFloodFeature(FloodAttrs{ZoneCode: "AE"}, square(-105.2, 39.5, -104.6, 40.0)),
	}

	assert.Empty(t, HitTest(features, 41.0, -104.9))
	assert.Empty(t, HitTest(features, 39.7, -103.0))
}

func TestHitTest_HoleExcludes(t *testing.T) {
	features := []Feature{
		NewOpportunityFeature(OpportunityAttrs{GEOID: "08031000100"},
			squareWithHole(-105.2, 39.5, -104.6, 40.0, -105.0, 39.6, -104.8, 39.8)),
	}

	// Inside the hole: no hit.
	assert.Empty(t, HitTest(features, 39.7, -104.9))
	// Inside the outer ring, outside the hole: hit.
	assert.Len(t, HitTest(features, 39.9, -104.7), 1)
}

func TestHitTest_OverlappingFeaturesBothReturned(t *testing.T) {
	features := []Feature{
		NewFloodFeature(FloodAttrs{ZoneCode: "AE"}, square(-105.2, 39.5, -104.6, 40.0)),
		NewFloodFeature(FloodAttrs{ZoneCode: "X"}, square(-105.0, 39.6, -104.7, 39.9)),
	}

	hits := HitTest(features, 39.7, -104.9)
	assert.Len(t, hits, 2)
}

func TestHitTest_NilGeometrySkipped(t *testing.T) {
	features := []Feature{
		{Kind: KindFlood, Flood: &FloodAttrs{ZoneCode: "AE"}},
	}
	assert.Empty(t, HitTest(features, 39.7, -104.9))
}

func TestFirstHit(t *testing.T) {
	features := []Feature{
		NewFloodFeature(FloodAttrs{ZoneCode: "first"}, square(-105.2, 39.5, -104.6, 40.0)),
		NewFloodFeature(FloodAttrs{ZoneCode: "second"}, square(-105.2, 39.5, -104.6, 40.0)),
	}

	hit := FirstHit(features, 39.7, -104.9)
	require.NotNil(t, hit)
	assert.Equal(t, "first", hit.Flood.ZoneCode)

	assert.Nil(t, FirstHit(features, 0, 0))
}

func TestFeature_Label(t *testing.T) {
	f := NewFloodFeature(FloodAttrs{ZoneCode: "AE"}, nil)
	assert.Equal(t, "AE", f.Label())

	o := NewOpportunityFeature(OpportunityAttrs{GEOID: "08031000100"}, nil)
	assert.Equal(t, "08031000100", o.Label())

	empty := Feature{Kind: KindFlood}
	assert.Equal(t, "flood", empty.Label())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("flood")
	require.NoError(t, err)
	assert.Equal(t, KindFlood, k)

	k, err = ParseKind("opportunity")
	require.NoError(t, err)
	assert.Equal(t, KindOpportunity, k)

	_, err = ParseKind("lava")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Loaded(KindFlood))
	assert.Empty(t, s.Features(KindFlood))

	s.Put(KindFlood, []Feature{NewFloodFeature(FloodAttrs{ZoneCode: "AE"}, nil)})
	assert.True(t, s.Loaded(KindFlood))
	assert.Len(t, s.Features(KindFlood), 1)
	assert.False(t, s.Loaded(KindOpportunity))
}
