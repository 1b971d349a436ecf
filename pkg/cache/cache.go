// Package cache provides content-addressed caching for rendered diagrams.
package cache

import (
	"context"
	"time"
)

// Cache stores rendered artifacts keyed by content hashes.
type Cache interface {
	// Get retrieves a value; the second result reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
