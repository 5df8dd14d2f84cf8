package storage

import (
	"context"
	"time"
)

// CacheStore is a durable key-value store with per-entry expiry, used as the
// slower, longer-lived (L2) cache tier. Implementations must be safe for
// concurrent access; the pipeline's workers read and write it in parallel.
//
// Expiry is enforced at read time: Get never returns an entry past its TTL,
// regardless of whether a sweep has run.
type CacheStore interface {
	// Get retrieves the value for key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given time-to-live.
	// Returns ErrInvalidTTL if ttl is not positive.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Sweep reclaims space held by expired entries. Correctness never
	// depends on it running; it is a maintenance operation.
	Sweep(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
