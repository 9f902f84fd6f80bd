package ports

import (
	"context"
	"time"
)

// Persistent cache of origin->destination travel times keyed by
// coordinate keys (see domain.Point.Key).
type DistanceCache interface {
	// Return cached durations for the destinations that are present.
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]time.Duration, error)
	// Store durations from one origin.
	PutMany(ctx context.Context, origin string, results map[string]time.Duration) error
}
