package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"route-sequencer-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func openTestSqliteCache(t *testing.T, ttl time.Duration) *SQLGeocodeCache {
	t.Helper()

	c, err := OpenSqliteGeocodeCache(context.Background(), filepath.Join(t.TempDir(), "geocode.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := openTestSqliteCache(t, 0)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"Rua A": {Lat: -25.43, Lon: -49.27},
	}))
	// Overwrite keeps a single row per address.
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"Rua A": {Lat: -25.5, Lon: -49.3},
	}))

	got, err := c.GetMany(ctx, []string{"Rua A", "Rua B", " Rua A"})
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Coordinates{"Rua A": {Lat: -25.5, Lon: -49.3}}, got)

	empty, err := c.GetMany(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSQLGeocodeCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	c := openTestSqliteCache(t, time.Hour)

	clock := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"Rua C": {Lat: 1, Lon: 2}}))

	clock = clock.Add(59 * time.Minute)
	got, err := c.GetMany(ctx, []string{"Rua C"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	clock = clock.Add(2 * time.Minute)
	got, err = c.GetMany(ctx, []string{"Rua C"})
	require.NoError(t, err)
	require.Empty(t, got, "entry older than the TTL is a miss")

	// A refresh restarts the clock.
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"Rua C": {Lat: 1, Lon: 2}}))
	got, err = c.GetMany(ctx, []string{"Rua C"})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSQLGeocodeCacheRejectsBadEntries(t *testing.T) {
	c := openTestSqliteCache(t, 0)

	require.ErrorContains(t, c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}}), "empty address key")
	require.ErrorContains(t, c.PutMany(context.Background(), map[string]domain.Coordinates{"x": {Lat: 120}}), "out of range")
}

func TestSQLDialectQueries(t *testing.T) {
	addrs := []string{"Rua A", "Rua B"}

	pg := postgresDialect.selectQuery(len(addrs))
	require.Contains(t, pg, "address = ANY($1::text[])")
	require.Contains(t, pg, "updated_at >= $2")
	require.Equal(t, []any{addrs, int64(42)}, postgresDialect.selectArgs(addrs, 42))
	require.Contains(t, postgresDialect.upsert, "ON CONFLICT (address) DO UPDATE")
	require.Contains(t, postgresDialect.upsert, "updated_at = EXCLUDED.updated_at")

	lite := sqliteDialect.selectQuery(len(addrs))
	require.Contains(t, lite, "address IN (?,?)")
	require.Equal(t, []any{"Rua A", "Rua B", int64(42)}, sqliteDialect.selectArgs(addrs, 42))
}

func TestSQLGeocodeCacheCutoff(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	c := &SQLGeocodeCache{now: func() time.Time { return now }}
	require.Zero(t, c.cutoff(), "zero TTL never expires")

	c.TTL = 24 * time.Hour
	require.Equal(t, now.Add(-24*time.Hour).Unix(), c.cutoff())
}
