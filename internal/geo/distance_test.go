package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkazlou/flint/internal/geo"
)

func TestDistanceKm(t *testing.T) {
	// same point
	assert.Zero(t, geo.DistanceKm(27.56, 53.90, 27.56, 53.90))

	// one degree of latitude is ~111.2 km
	d := geo.DistanceKm(27.56, 53.00, 27.56, 54.00)
	assert.InDelta(t, 111.2, d, 0.5)

	// Minsk center to Minsk airport is ~31 km
	d = geo.DistanceKm(27.561, 53.902, 28.031, 53.888)
	assert.InDelta(t, 31, d, 1.0)
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := geo.DistanceKm(27.44, 53.85, 27.64, 53.94)
	b := geo.DistanceKm(27.64, 53.94, 27.44, 53.85)
	assert.Equal(t, a, b)
}

func TestDistanceKmMonotonic(t *testing.T) {
	// moving the far point farther away never shrinks the distance
	near := geo.DistanceKm(27.56, 53.90, 27.56, 53.92)
	mid := geo.DistanceKm(27.56, 53.90, 27.56, 53.96)
	far := geo.DistanceKm(27.56, 53.90, 27.56, 54.10)
	assert.Less(t, near, mid)
	assert.Less(t, mid, far)
}
