package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tapas-route-service/internal/domain"
	"time"
)

// Initialize the Postgres database schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createVenuesQuery := `
	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		dwell_seconds INTEGER NOT NULL CHECK (dwell_seconds >= 0)
	);
	`

	createOpeningHoursQuery := `
	CREATE TABLE IF NOT EXISTS opening_hours (
		venue_id TEXT NOT NULL REFERENCES venues(id) ON DELETE CASCADE,
		weekday SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		open_seconds INTEGER NOT NULL,
		close_seconds INTEGER NOT NULL,
		PRIMARY KEY (venue_id, weekday, open_seconds)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_distance_cache_destination_origin
    ON distance_cache(destination, origin);
	`

	statements := []string{
		createVenuesQuery,
		createOpeningHoursQuery,
		createDistanceCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Replace the catalog with the given venues.
func SeedVenues(ctx context.Context, db *sql.DB, venues []domain.Venue) error {
	if db == nil {
		return errors.New("seed venues: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed venues: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM venues;`); err != nil {
		return fmt.Errorf("seed venues: clear venues: %w", err)
	}

	venueStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO venues (id, name, lat, lon, dwell_seconds)
	VALUES ($1, $2, $3, $4, $5);
	`)
	if err != nil {
		return fmt.Errorf("seed venues: prepare venue insert: %w", err)
	}
	defer venueStmt.Close()

	hoursStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO opening_hours (venue_id, weekday, open_seconds, close_seconds)
	VALUES ($1, $2, $3, $4);
	`)
	if err != nil {
		return fmt.Errorf("seed venues: prepare hours insert: %w", err)
	}
	defer hoursStmt.Close()

	for _, v := range venues {
		if _, err := venueStmt.ExecContext(ctx, v.ID, v.Name, v.Lat, v.Lon, int64(v.Dwell/time.Second)); err != nil {
			return fmt.Errorf("seed venues: insert venue id=%q: %w", v.ID, err)
		}
		for day, intervals := range v.Schedule.Days {
			for _, iv := range intervals {
				if _, err := hoursStmt.ExecContext(ctx, v.ID, day, int64(iv.Open/time.Second), int64(iv.Close/time.Second)); err != nil {
					return fmt.Errorf("seed venues: insert hours venue_id=%q weekday=%d: %w", v.ID, day, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed venues: commit tx: %w", err)
	}

	return nil
}
