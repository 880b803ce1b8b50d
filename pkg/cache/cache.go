// Package cache stores fitting results between runs.
//
// Running a scenario is cheap, but the CLI and the HTTP service see the same
// scenarios over and over. Results are keyed by the scenario fingerprint
// (see [Keyer]) and stored in one of three backends:
//
//   - [NullCache]: stores nothing, used with --no-cache
//   - [FileCache]: JSON files under the user cache dir, used by the CLI
//   - [RedisCache]: shared by every instance of the service
//
// Every backend reports hits, misses and writes to [observability.Cache].
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// DefaultTTL bounds how long results are kept.
const DefaultTTL = 7 * 24 * time.Hour

// keyType returns the namespace of a key ("result" for "result:abc") for
// metrics labels.
func keyType(key string) string {
	if i := strings.LastIndexByte(key, ':'); i > 0 {
		key = key[:i]
	}
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return key
}
