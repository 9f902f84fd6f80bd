//go:build integration

package cache

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"tapas-route-service/internal/adapters/repositories"
	"tapas-route-service/internal/platform/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to the database named by DATABASE_URL and applies the
// schema. Tests are skipped when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, repositories.InitSchema(ctx, conn))
	return conn
}

func TestSQLDistanceCacheRoundTrip(t *testing.T) {
	conn := openTestDB(t)
	c := NewSQLDistanceCache(conn)
	ctx := context.Background()

	origin := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = conn.Exec(`DELETE FROM distance_cache WHERE origin = $1`, origin)
	})

	err := c.PutMany(ctx, origin, map[string]time.Duration{
		"38.8,-9.2": 12 * time.Minute,
		"38.9,-9.3": 90 * time.Second,
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, origin, []string{"38.8,-9.2", "38.9,-9.3", "38.8,-9.2", " ", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]time.Duration{
		"38.8,-9.2": 12 * time.Minute,
		"38.9,-9.3": 90 * time.Second,
	}, got)
}

func TestSQLDistanceCacheOverwrites(t *testing.T) {
	conn := openTestDB(t)
	c := NewSQLDistanceCache(conn)
	ctx := context.Background()

	origin := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = conn.Exec(`DELETE FROM distance_cache WHERE origin = $1`, origin)
	})

	require.NoError(t, c.PutMany(ctx, origin, map[string]time.Duration{"dest": time.Minute}))
	require.NoError(t, c.PutMany(ctx, origin, map[string]time.Duration{"dest": 4 * time.Minute}))

	got, err := c.GetMany(ctx, origin, []string{"dest"})
	require.NoError(t, err)
	assert.Equal(t, 4*time.Minute, got["dest"])
}

func TestSQLDistanceCacheRejectsBadKeys(t *testing.T) {
	conn := openTestDB(t)
	c := NewSQLDistanceCache(conn)
	ctx := context.Background()

	_, err := c.GetMany(ctx, "", []string{"dest"})
	require.Error(t, err)

	err = c.PutMany(ctx, "test-"+uuid.NewString(), map[string]time.Duration{" ": time.Minute})
	require.Error(t, err)

	got, err := c.GetMany(ctx, "test-"+uuid.NewString(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
