package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. Implementations can be swapped
// (Redis, in-memory) without touching the services that depend on it.
type Cache interface {
	// Get loads the value stored under key and unmarshals it into dest.
	// found=false means cache miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies the connection.
	Ping(ctx context.Context) error
}
