// Package cache provides the byte cache shared by the catalog client, the
// submission pipeline and the CLI.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: entries as JSON files under the user cache directory (CLI)
//   - [RedisCache]: entries in Redis with native TTLs (server deployments)
//   - [NullCache]: never stores anything (tests, --no-cache)
//
// Keys are produced by a [Keyer] so that every component spells them the
// same way; a [ScopedKeyer] prefixes keys per shop so that two shops sharing
// a Redis instance never see each other's catalog.
package cache

import (
	"context"
	"time"
)

// TTLs for cached data.
const (
	// TTLCatalog applies to product lists and product details.
	TTLCatalog = 15 * time.Minute
	// TTLAvailability applies to color availability, which changes with stock.
	TTLAvailability = 5 * time.Minute
	// TTLPrintFile applies to rendered print files keyed by their inputs.
	TTLPrintFile = 24 * time.Hour
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the backend.
	Close() error
}
