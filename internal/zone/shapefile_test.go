package zone

import (
	"encoding/json"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonToMultiPolygon_SinglePart(t *testing.T) {
	p := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points: []shp.Point{
			{X: -105.2, Y: 39.5},
			{X: -104.6, Y: 39.5},
			{X: -104.6, Y: 40.0},
			{X: -105.2, Y: 40.0},
			{X: -105.2, Y: 39.5},
		},
	}

	mp := polygonToMultiPolygon(p)
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 4326, mp.SRID())
}

func TestPolygonToMultiPolygon_MultiPart(t *testing.T) {
	p := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
			{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}, {X: 5, Y: 5},
		},
	}

	mp := polygonToMultiPolygon(p)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
}

func TestLoadShapefile_MissingFile(t *testing.T) {
	_, err := LoadShapefile("/nonexistent/zones.shp", KindFlood, ShapefileOptions{})
	assert.Error(t, err)
}

func TestToGeoJSON(t *testing.T) {
	features := []Feature{
		NewFloodFeature(FloodAttrs{ZoneCode: "AE", FloodType: "1PCT", Source: "FEMA"},
			square(-105.2, 39.5, -104.6, 40.0)),
		NewOpportunityFeature(OpportunityAttrs{GEOID: "08031000100", StateFIPS: "08"},
			square(-105.0, 39.6, -104.8, 39.8)),
	}

	data, err := ToGeoJSON(features)
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
			Geometry   map[string]any `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "flood", fc.Features[0].Properties["kind"])
	assert.Equal(t, "AE", fc.Features[0].Properties["zone_code"])
	assert.Equal(t, "opportunity", fc.Features[1].Properties["kind"])
	assert.Equal(t, "08031000100", fc.Features[1].Properties["geoid"])
	assert.Equal(t, "MultiPolygon", fc.Features[0].Geometry["type"])
}

func TestToGeoJSON_Empty(t *testing.T) {
	data, err := ToGeoJSON(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "FeatureCollection")
}
