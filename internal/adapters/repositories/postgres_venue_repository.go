package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tapas-route-service/internal/domain"
	"tapas-route-service/internal/platform/obs"
	"time"
)

// Postgres-backed implementation of the VenueRepository port.
type PostgresVenueRepository struct{ DB *sql.DB }

func NewPostgresVenueRepository(db *sql.DB) *PostgresVenueRepository {
	return &PostgresVenueRepository{DB: db}
}

// Return all venues stored in the database.
func (r *PostgresVenueRepository) ListVenues(ctx context.Context) (venues []domain.Venue, err error) {
	defer obs.Time(ctx, "repositories.ListVenues")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres venue repository: DB is nil")
	}

	venues, err = r.queryVenues(ctx, `
	SELECT id, name, lat, lon, dwell_seconds
	FROM venues
	ORDER BY id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

// Return the venues with the given IDs, ordered by ID.
func (r *PostgresVenueRepository) GetVenues(ctx context.Context, ids []string) (venues []domain.Venue, err error) {
	defer obs.Time(ctx, "repositories.GetVenues")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres venue repository: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Venue{}, nil
	}

	venues, err = r.queryVenues(ctx, `
	SELECT id, name, lat, lon, dwell_seconds
	FROM venues
	WHERE id = ANY($1)
	ORDER BY id;
	`, uniqueKeys(ids))
	if err != nil {
		return nil, fmt.Errorf("get venues: %w", err)
	}

	if err := missingVenues(ids, venues); err != nil {
		return nil, fmt.Errorf("get venues: %w", err)
	}
	return venues, nil
}

func (r *PostgresVenueRepository) queryVenues(ctx context.Context, query string, args ...any) ([]domain.Venue, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query venues table: %w", err)
	}
	defer rows.Close()

	venues := make([]domain.Venue, 0, 64)
	index := make(map[string]int)
	for rows.Next() {
		var (
			v     domain.Venue
			dwell int64
		)
		if err := rows.Scan(&v.ID, &v.Name, &v.Lat, &v.Lon, &dwell); err != nil {
			return nil, fmt.Errorf("scan venue row: %w", err)
		}
		v.Dwell = time.Duration(dwell) * time.Second
		index[v.ID] = len(venues)
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("venue row iteration: %w", err)
	}
	if len(venues) == 0 {
		return venues, nil
	}

	ids := make([]string, 0, len(venues))
	for _, v := range venues {
		ids = append(ids, v.ID)
	}

	hours, err := r.DB.QueryContext(ctx, `
	SELECT venue_id, weekday, open_seconds, close_seconds
	FROM opening_hours
	WHERE venue_id = ANY($1)
	ORDER BY venue_id, weekday, open_seconds;
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query opening_hours table: %w", err)
	}
	defer hours.Close()

	for hours.Next() {
		var (
			id          string
			weekday     int
			open, close int64
		)
		if err := hours.Scan(&id, &weekday, &open, &close); err != nil {
			return nil, fmt.Errorf("scan opening_hours row: %w", err)
		}
		if weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("opening_hours for %q: weekday %d out of range", id, weekday)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		venues[i].Schedule.Add(time.Weekday(weekday), time.Duration(open)*time.Second, time.Duration(close)*time.Second)
	}
	if err := hours.Err(); err != nil {
		return nil, fmt.Errorf("opening_hours row iteration: %w", err)
	}

	return venues, nil
}

// missingVenues reports requested IDs absent from the catalog.
func missingVenues(ids []string, venues []domain.Venue) error {
	found := make(map[string]struct{}, len(venues))
	for _, v := range venues {
		found[v.ID] = struct{}{}
	}
	var missing []string
	for _, id := range uniqueKeys(ids) {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return &domain.InvalidInputError{Field: "venue_ids", Reason: fmt.Sprintf("unknown venues %v", missing)}
	}
	return nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
