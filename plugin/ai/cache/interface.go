// Package cache provides a TTL-bounded LRU cache used to memoize slow
// external lookups (promotion and store-info tools) in front of the AI
// routing pipeline.
package cache

import (
	"context"
	"time"
)

// CacheService is the lookup cache used by the tool layer. Keys are
// namespaced with a colon, e.g. "tools:promotions".
type CacheService interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl; a non-positive ttl uses the
	// implementation default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate drops entries matching pattern. A trailing * matches
	// by prefix.
	Invalidate(ctx context.Context, pattern string) error
}
