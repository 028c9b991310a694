package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm_IdenticalPoints(t *testing.T) {
	assert.Zero(t, DistanceKm(40.0, -105.0, 40.0, -105.0))
	assert.Zero(t, DistanceKm(0, 0, 0, 0))
	assert.Zero(t, DistanceKm(-33.87, 151.21, -33.87, 151.21))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(34.05, -118.24, 40.71, -74.01)
	b := DistanceKm(40.71, -74.01, 34.05, -118.24)
	assert.Equal(t, a, b)
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	// LA to NYC is roughly 3936 km great-circle.
	d := DistanceKm(34.0522, -118.2437, 40.7128, -74.0060)
	require.InDelta(t, 3936, d, 20)
}

func TestDistanceKm_OneDegreeLatitude(t *testing.T) {
	// One degree of latitude is ~111 km everywhere.
	d := DistanceKm(40.0, -105.0, 41.0, -105.0)
	require.InDelta(t, 111.2, d, 1)
}

func TestDistanceKm_MonotonicWithSeparation(t *testing.T) {
	near := DistanceKm(40.0, -105.0, 40.1, -105.0)
	mid := DistanceKm(40.0, -105.0, 40.5, -105.0)
	far := DistanceKm(40.0, -105.0, 41.0, -105.0)
	assert.Less(t, near, mid)
	assert.Less(t, mid, far)
}

func TestDistanceKm_NaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(DistanceKm(math.NaN(), 0, 0, 0)))
	assert.True(t, math.IsNaN(DistanceKm(0, 0, math.NaN(), 0)))
}

func TestPlanarDistance(t *testing.T) {
	assert.Zero(t, PlanarDistance(10, 10, 10, 10))
	assert.InDelta(t, 5.0, PlanarDistance(0, 0, 3, 4), 1e-12)
	// Symmetric as well.
	assert.Equal(t, PlanarDistance(1, 2, 3, 4), PlanarDistance(3, 4, 1, 2))
}
