// Package geo implements the pure geographic helpers the simulator leans on
// to place inserted events at the correct point along a route.
package geo

import "github.com/draymaster/eld-planner/internal/domain"

// Interpolate returns the point a fraction p of the way from a to b.
// p is expected in [0,1]; the caller is always the simulator passing the
// current truck location, never a possibly-absent one.
func Interpolate(a, b domain.Location, p float64) domain.Location {
	lat := a.Lat + p*(b.Lat-a.Lat)
	lon := a.Lon + p*(b.Lon-a.Lon)
	return domain.NamedAt(lat, lon)
}
