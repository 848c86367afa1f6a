// Package cache provides a content-addressed result cache for computed
// weight tables. Correspondence runs over large zone systems are expensive;
// when neither the input files nor the run options changed, the previous
// table can be served instead of recomputing the overlay.
//
// Keys are derived from the input bytes and the run options, so any change
// to either invalidates the entry automatically. Backends:
//   - file: per-user cache directory for CLI usage
//   - redis: shared cache for the HTTP service
//   - null: caching disabled
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long cached weight tables are kept.
const DefaultTTL = 7 * 24 * time.Hour

// ErrCacheMiss is returned by helpers that require a cache hit.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// RunKey builds the cache key for a correspondence run from the raw input
// bytes and the serialized run options. The full SHA-256 is kept to make
// collisions a non-concern.
func RunKey(sourceData, targetData []byte, opts any) string {
	optJSON, _ := json.Marshal(opts)
	h := sha256.New()
	h.Write(sourceData)
	h.Write([]byte{0})
	h.Write(targetData)
	h.Write([]byte{0})
	h.Write(optJSON)
	return fmt.Sprintf("run:%s", hex.EncodeToString(h.Sum(nil)))
}

// Hash computes the SHA-256 hash of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
