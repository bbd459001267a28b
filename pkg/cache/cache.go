// Package cache stores rendered output between runs.
//
// A [Cache] is a byte store with per-entry expiry. Three backends are
// provided: [NullCache] disables caching, [FileCache] keeps entries on disk
// for the CLI, and [RedisCache] shares entries between server instances.
// Keys come from a [Keyer], which hashes everything that affects the
// rendered markup so that equal inputs always map to the same entry.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// TTLRender is how long rendered adapter output is kept.
	TTLRender = 24 * time.Hour

	// TTLFinalized is how long trusted-pass output is kept. It is shorter
	// since trusted generators may read external state such as asset URLs.
	TTLFinalized = 6 * time.Hour
)

// Cache is a key/value byte store.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures. A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
