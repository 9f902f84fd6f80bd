package ports

import (
	"context"
	"tapas-route-service/internal/domain"
)

// Port: a boundary for retrieving Venue records from the catalog.
type VenueRepository interface {
	// Retrieve all venues in the catalog, ordered by ID.
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	// Retrieve the venues with the given IDs. Missing IDs are an error.
	GetVenues(ctx context.Context, ids []string) ([]domain.Venue, error)
}
