package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"tapas-route-service/internal/platform/obs"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tapas:duration:"

// RedisDistanceCache keeps origin->destination travel times in Redis with
// an expiry, so street-network durations are refreshed periodically.
type RedisDistanceCache struct {
	Cache *cache.Cache[string]
}

func NewRedisDistanceCache(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &RedisDistanceCache{Cache: cache.New[string](redisStore)}
}

func cacheKey(origin, destination string) string {
	return keyPrefix + origin + "|" + destination
}

// Fetch cached durations for one origin and multiple destinations.
// Misses are simply absent from the result.
func (r *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]time.Duration, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	out := make(map[string]time.Duration, len(destinations))
	for _, dest := range uniqueKeys(destinations) {
		v, err := r.Cache.Get(ctx, cacheKey(origin, dest))
		if err != nil {
			if errors.Is(err, store.NotFound{}) || errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("get distance cache dest=%q: %w", dest, err)
		}

		seconds, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("get distance cache dest=%q: parse %q: %w", dest, v, err)
		}
		out[dest] = time.Duration(seconds) * time.Second
	}

	return out, nil
}

// Store many cached durations for a single origin.
func (r *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]time.Duration,
) error {
	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	for dest, d := range results {
		if dest == "" {
			return errors.New("insert distance cache: empty destination key")
		}
		if err := r.Cache.Set(ctx, cacheKey(origin, dest), strconv.FormatInt(int64(d/time.Second), 10)); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}

	return nil
}
