package routeclient

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/draymaster/eld-planner/internal/domain"
)

func TestCacheKey_IsStableForSameCoordinates(t *testing.T) {
	a := domain.NamedAt(40.0001, -74.0002)
	b := domain.NamedAt(41.5, -73.0)

	assert.Equal(t, cacheKey(a, b), cacheKey(a, b))
}

func TestCacheKey_DiffersForDifferentDestinations(t *testing.T) {
	a := domain.NamedAt(40.0, -74.0)
	b := domain.NamedAt(41.0, -73.0)
	c := domain.NamedAt(42.0, -72.0)

	assert.NotEqual(t, cacheKey(a, b), cacheKey(a, c))
}

func TestCacheKey_RoundsToFourDecimals(t *testing.T) {
	a := domain.NamedAt(40.00001, -74.00001)
	b := domain.NamedAt(40.00002, -74.00002)

	assert.Equal(t, cacheKey(a, domain.NamedAt(41, -73)), cacheKey(b, domain.NamedAt(41, -73)))
}
