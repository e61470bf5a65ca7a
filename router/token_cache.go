package router

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache remembers tokens that have already been verified.
type TokenCache interface {
	Get(ctx context.Context, token string) (bool, error)
	Set(ctx context.Context, token string) error
}

// RedisTokenCache is a Redis implementation of TokenCache.
// Entries expire after Expiration so revoked tokens are re-verified.
type RedisTokenCache struct {
	Client     redis.Cmdable
	Expiration time.Duration
	Prefix     string
}

const DefaultExpiration = 30 * time.Second

const defaultTokenPrefix = "numspeak:token:"

// NewRedisTokenCache returns a cache on client. A zero expiration uses DefaultExpiration.
func NewRedisTokenCache(client redis.Cmdable, expiration time.Duration) *RedisTokenCache {
	if expiration == 0 {
		expiration = DefaultExpiration
	}

	return &RedisTokenCache{
		Client:     client,
		Expiration: expiration,
		Prefix:     defaultTokenPrefix,
	}
}

// Set sets a token in the cache.
func (r *RedisTokenCache) Set(ctx context.Context, token string) error {
	return r.Client.Set(ctx, r.Prefix+token, true, r.Expiration).Err()
}

// Get reports whether token is in the cache.
func (r *RedisTokenCache) Get(ctx context.Context, token string) (bool, error) {
	val, err := r.Client.Exists(ctx, r.Prefix+token).Result()
	if err != nil {
		return false, err
	}
	return val > 0, nil
}
