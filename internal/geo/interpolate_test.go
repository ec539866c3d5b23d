package geo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/draymaster/eld-planner/internal/domain"
	"github.com/draymaster/eld-planner/internal/geo"
)

func TestInterpolate_Midpoint(t *testing.T) {
	a := domain.NamedAt(40.0, -74.0)
	b := domain.NamedAt(41.0, -72.0)

	mid := geo.Interpolate(a, b, 0.5)

	assert.InDelta(t, 40.5, mid.Lat, 0.0001)
	assert.InDelta(t, -73.0, mid.Lon, 0.0001)
}

func TestInterpolate_Endpoints(t *testing.T) {
	a := domain.NamedAt(10.0, 20.0)
	b := domain.NamedAt(30.0, 40.0)

	assert.Equal(t, a.Lat, geo.Interpolate(a, b, 0).Lat)
	assert.Equal(t, a.Lon, geo.Interpolate(a, b, 0).Lon)
	assert.Equal(t, b.Lat, geo.Interpolate(a, b, 1).Lat)
	assert.Equal(t, b.Lon, geo.Interpolate(a, b, 1).Lon)
}
