package repositories

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"tapas-route-service/internal/domain"
)

// In-memory VenueRepository over a fixed catalog, used when planning from
// a seed file without a database.
type MemoryVenueRepository struct {
	venues []domain.Venue
}

func NewMemoryVenueRepository(venues []domain.Venue) *MemoryVenueRepository {
	sorted := slices.Clone(venues)
	slices.SortFunc(sorted, func(a, b domain.Venue) int { return strings.Compare(a.ID, b.ID) })
	return &MemoryVenueRepository{venues: sorted}
}

func (r *MemoryVenueRepository) ListVenues(_ context.Context) ([]domain.Venue, error) {
	return slices.Clone(r.venues), nil
}

func (r *MemoryVenueRepository) GetVenues(_ context.Context, ids []string) ([]domain.Venue, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := make([]domain.Venue, 0, len(ids))
	for _, v := range r.venues {
		if _, ok := want[v.ID]; ok {
			out = append(out, v)
		}
	}
	if err := missingVenues(ids, out); err != nil {
		return nil, fmt.Errorf("get venues: %w", err)
	}
	return out, nil
}
