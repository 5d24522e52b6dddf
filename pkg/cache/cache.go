package cache

import (
	"context"
	"time"
)

// Cache is the contract of the cache layer, kept narrow so implementations
// can be swapped (Redis in production, in-memory in tests).
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found=false is a cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON-encoded) under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
