package cache

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// GetOrCompute returns the cached value under key, or runs fn and stores its result for ttl seconds.
// A ttl <= 0 bypasses the cache. Read failures other than a miss are logged and treated as a miss.
func GetOrCompute[T any](ctx context.Context, cache RedisCache, key string, ttl int, fn func(ctx context.Context) (T, error)) (T, error) {
	if ttl <= 0 || cache == nil {
		return fn(ctx)
	}

	var cached T

	err := cache.Get(ctx, key, &cached)
	if err == nil {
		log.Debug().Str("cacheKey", key).Msg("cache hit")

		return cached, nil
	}

	if !errors.Is(err, Nil) {
		log.Warn().Err(err).Str("cacheKey", key).Msg("cache read failed, computing")
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err //nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := cache.Save(c, key, value, ttl); err != nil {
			log.Error().Err(err).Str("cacheKey", key).Msg("failed to save computed value to cache")
		}
	}()

	return value, nil
}
