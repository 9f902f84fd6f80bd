package domain

import (
	"fmt"
	"math"
)

// Immutable geographic location of a venue or of the traveller's start.
type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (p Point) CoordsToList() []float64 { return []float64{p.Lon, p.Lat} }

// Key returns a stable cache key for the point's coordinates.
// Two points at the same location share a key regardless of ID.
func (p Point) Key() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Validate reports out-of-range or non-finite coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return &InvalidInputError{Field: "lat", Reason: fmt.Sprintf("point %q: latitude %v out of range [-90, 90]", p.ID, p.Lat)}
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return &InvalidInputError{Field: "lon", Reason: fmt.Sprintf("point %q: longitude %v out of range [-180, 180]", p.ID, p.Lon)}
	}
	return nil
}
