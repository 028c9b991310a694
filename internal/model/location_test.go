package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestLocation_Mappable(t *testing.T) {
	full := Location{ID: "a", Latitude: ptr(40.0), Longitude: ptr(-105.0)}
	assert.True(t, full.Mappable())

	noLat := Location{ID: "b", Longitude: ptr(-105.0)}
	assert.False(t, noLat.Mappable())

	noLon := Location{ID: "c", Latitude: ptr(40.0)}
	assert.False(t, noLon.Mappable())

	neither := Location{ID: "d"}
	assert.False(t, neither.Mappable())
}

func TestLocation_Coords(t *testing.T) {
	l := Location{ID: "a", Latitude: ptr(39.7), Longitude: ptr(-104.9)}
	lat, lon := l.Coords()
	assert.Equal(t, 39.7, lat)
	assert.Equal(t, -104.9, lon)
}

func TestFilterMappable(t *testing.T) {
	records := []Location{
		{ID: "1", Latitude: ptr(1), Longitude: ptr(1)},
		{ID: "2"},
		{ID: "3", Latitude: ptr(3), Longitude: ptr(3)},
		{ID: "4", Latitude: ptr(4)},
	}

	got := FilterMappable(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestFilterMappable_Empty(t *testing.T) {
	assert.Empty(t, FilterMappable(nil))
	assert.Empty(t, FilterMappable([]Location{{ID: "x"}}))
}
