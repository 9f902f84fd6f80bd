package distance

import (
	"fmt"
	"math"
	"tapas-route-service/internal/domain"
	"time"
)

const earthRadiusMeters = 6_371_000.0

// HaversineModel estimates travel time as great-circle distance divided by
// a constant average speed. Suitable when no routing engine is available.
type HaversineModel struct {
	speedMetersPerSecond float64
}

func NewHaversineModel(averageSpeedKmh float64) (*HaversineModel, error) {
	if averageSpeedKmh <= 0 || math.IsNaN(averageSpeedKmh) || math.IsInf(averageSpeedKmh, 0) {
		return nil, &domain.InvalidInputError{Field: "average_speed", Reason: fmt.Sprintf("%v km/h must be positive", averageSpeedKmh)}
	}
	return &HaversineModel{speedMetersPerSecond: averageSpeedKmh * 1000 / 3600}, nil
}

// Duration returns the travel time rounded to the second.
func (m *HaversineModel) Duration(a, b domain.Point) (time.Duration, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	if a.Lat == b.Lat && a.Lon == b.Lon {
		return 0, nil
	}

	seconds := math.Round(HaversineMeters(a, b) / m.speedMetersPerSecond)
	return time.Duration(seconds) * time.Second, nil
}

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(a, b domain.Point) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLon := degToRad(b.Lon - a.Lon)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(degToRad(a.Lat))*math.Cos(degToRad(b.Lat))*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
