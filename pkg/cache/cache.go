// Package cache provides pluggable caching for flatten results.
//
// Flattening is deterministic, so a table computed once for a given input can
// be served from cache on any later run. The cache key is derived from a
// content hash of the canonical input JSON, which makes hits independent of
// where the input file lives or how it is formatted.
//
// Three backends implement the [Cache] interface:
//   - [FileCache]: on-disk cache for CLI usage (XDG cache directory)
//   - [RedisCache]: shared cache for the serve mode
//   - [NullCache]: disables caching entirely
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the default lifetime of a cached flatten result.
// Inputs are content-addressed, so entries never go stale; the TTL only
// bounds disk/redis growth.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// Keyer generates cache keys for the cacheable artifacts of the flatten
// pipeline. Implementations must be deterministic.
type Keyer interface {
	// TableKey generates a key for a flattened network table, derived from
	// the content hash of the canonical input.
	TableKey(inputHash string) string

	// ResultKey generates a key for a stored-result lookup by ID.
	ResultKey(id string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// TableKey generates a key for a flattened network table.
func (k *DefaultKeyer) TableKey(inputHash string) string {
	return "table:" + inputHash
}

// ResultKey generates a key for a stored-result lookup.
func (k *DefaultKeyer) ResultKey(id string) string {
	return "result:" + id
}
