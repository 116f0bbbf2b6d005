package cache

import (
	"context"
	"errors"
	"fmt"
	"route-sequencer-service/internal/domain"
	"route-sequencer-service/internal/platform/obs"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

// RedisGeocodeCache stores each address as a hash {lat, lon} with a TTL,
// for deployments where several service instances share one cache.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

// Fetch cached coordinates for the given addresses in a single pipeline.
func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueKeys(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	pipe := r.Client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(uniq))
	for i, a := range uniq {
		cmds[i] = pipe.HGetAll(ctx, geocodeKeyPrefix+a)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get geocode cache: redis pipeline: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: address=%q: %w", uniq[i], err)
		}
		if len(fields) == 0 {
			continue
		}

		lat, errLat := strconv.ParseFloat(fields["lat"], 64)
		lon, errLon := strconv.ParseFloat(fields["lon"], 64)
		if errLat != nil || errLon != nil {
			// Corrupt entries are treated as misses and overwritten on the next put.
			continue
		}
		out[uniq[i]] = domain.Coordinates{Lat: lat, Lon: lon}
	}

	return out, nil
}

// Store address -> coordinate mappings in the cache.
func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for addr, c := range results {
			if strings.TrimSpace(addr) == "" {
				return fmt.Errorf("insert geocode cache: empty address key")
			}

			key := geocodeKeyPrefix + addr
			pipe.HSet(ctx, key,
				"lat", strconv.FormatFloat(c.Lat, 'f', -1, 64),
				"lon", strconv.FormatFloat(c.Lon, 'f', -1, 64),
			)
			if r.TTL > 0 {
				pipe.Expire(ctx, key, r.TTL)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert geocode cache: redis tx: %w", err)
	}

	return nil
}
