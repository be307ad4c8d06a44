// Package cache stores computed diagram results keyed by content hash.
//
// Building the graph state and routing links are pure functions of their
// inputs, so the CLI and the HTTP API cache them under keys derived from a
// SHA-256 of the normalized workflow document, the options that change the
// result, and for routes the hash of the graph they were computed from.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: never stores anything
//
// # Keys
//
// A [Keyer] derives keys. [DefaultKeyer] hashes its options; [ScopedKeyer]
// prefixes another keyer's keys to separate tenants or environments.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with per-entry expiration.
type Cache interface {
	// Get returns the value and whether it was found. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	// Clear removes all entries and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Entry lifetimes per result kind.
const (
	// TTLGraph covers built graph state. Documents are hashed, so entries
	// only go stale when the builder changes.
	TTLGraph = 7 * 24 * time.Hour

	// TTLRoute covers routed paths.
	TTLRoute = 7 * 24 * time.Hour

	// TTLArtifact covers rendered SVG, DOT and JSON output.
	TTLArtifact = 24 * time.Hour
)
