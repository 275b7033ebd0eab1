package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Compile-time interface check.
var _ Cache[struct{}] = (*RedisCache[struct{}])(nil)

// RedisCache implements Cache using Redis via go-redis.
// Suitable for multi-instance deployments where the revocation state must
// be shared.
type RedisCache[T any] struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache creates a new Redis cache instance.
func NewRedisCache[T any](
	ctx context.Context,
	addr, password string,
	db int,
	keyPrefix string,
) (*RedisCache[T], error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection with provided context
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", addr, err)
	}

	return &RedisCache[T]{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

// Get retrieves a value from Redis.
func (r *RedisCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	str, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrCacheMiss
		}
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var value T
	if err := json.Unmarshal([]byte(str), &value); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	return value, nil
}

// Set stores a value in Redis with TTL.
func (r *RedisCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	if err := r.client.Set(ctx, r.keyPrefix+key, encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return nil
}

// Take retrieves a value and removes its key in one round trip. GETDEL is
// atomic on the server, so concurrent takers on the same key cannot both
// observe the value.
func (r *RedisCache[T]) Take(ctx context.Context, key string) (T, error) {
	var zero T

	str, err := r.client.GetDel(ctx, r.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, ErrCacheMiss
		}
		return zero, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	var value T
	if err := json.Unmarshal([]byte(str), &value); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	return value, nil
}

// Delete removes a key from Redis.
func (r *RedisCache[T]) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisCache[T]) Close() error {
	return r.client.Close()
}

// Health checks the Redis connection.
func (r *RedisCache[T]) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return nil
}
