// Package cache stores derived metric values (period extremes, latest
// readings, accumulations) so dashboards avoid re-aggregating the database.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store of numeric values.
type Cache interface {
	// Get returns the value and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, value float64, ttl time.Duration) error
	// Clear drops every key owned by this cache.
	Clear(ctx context.Context) error
	Close() error
}
