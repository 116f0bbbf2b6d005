package cache

import (
	"context"
	"testing"
	"time"

	"route-sequencer-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) (*RedisGeocodeCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisGeocodeCache(client, time.Hour), mr
}

func TestRedisGeocodeCacheRoundTrip(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	err := c.PutMany(ctx, map[string]domain.Coordinates{
		"Rua A, 10, Curitiba": {Lat: -25.43, Lon: -49.27},
		"Rua B, 20, Curitiba": {Lat: -25.44, Lon: -49.28},
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, []string{"Rua A, 10, Curitiba", " Rua A, 10, Curitiba ", "Unknown", ""})
	require.NoError(t, err)
	require.Equal(t, map[string]domain.Coordinates{
		"Rua A, 10, Curitiba": {Lat: -25.43, Lon: -49.27},
	}, got)

	require.Equal(t, time.Hour, mr.TTL("geocode:Rua A, 10, Curitiba"))
}

func TestRedisGeocodeCacheExpiry(t *testing.T) {
	c, mr := newTestRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"Rua C": {Lat: 1, Lon: 2}}))
	mr.FastForward(2 * time.Hour)

	got, err := c.GetMany(ctx, []string{"Rua C"})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRedisGeocodeCacheRejectsEmptyKey(t *testing.T) {
	c, _ := newTestRedisCache(t)

	err := c.PutMany(context.Background(), map[string]domain.Coordinates{" ": {}})
	require.ErrorContains(t, err, "empty address key")
}

func TestUniqueKeys(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, uniqueKeys([]string{" a", "b", "a ", "", "b"}))
}
