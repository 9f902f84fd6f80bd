package ports

import (
	"context"
	"tapas-route-service/internal/domain"
	"time"
)

// Contract for estimating travel time between two points.
// Implementations must be deterministic, non-negative, and return zero
// for a point and itself.
type DistanceModel interface {
	Duration(a, b domain.Point) (time.Duration, error)
}

// Optional extension of DistanceModel for models backed by an external
// routing metric. Prepare resolves every pair for the given points once
// per request and returns a model that answers from memory.
type MatrixPreparer interface {
	DistanceModel
	Prepare(ctx context.Context, points []domain.Point) (DistanceModel, error)
}
