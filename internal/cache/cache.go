// Package cache wraps the Redis client behind the narrow key-value
// surface the application needs: captcha codes, the cached administrator
// address and the urge throttle markers.  Absence of a key is reported
// as an empty value rather than an error so callers can branch on it
// directly.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a thin wrapper over a Redis client.
type Store struct{ rdb *redis.Client }

// New returns a Store bound to the given Redis client.
func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Get returns the value stored at key, or "" when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Set stores value at key with the given TTL.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// SetForever stores value at key without an expiry.
func (s *Store) SetForever(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// Del removes the given keys.  Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.rdb.Del(ctx, keys...).Err()
}
