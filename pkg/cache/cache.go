// Package cache stores probe results and rendered artifacts between runs.
//
// # Backends
//
// Three implementations of [Cache] are provided:
//
//   - [FileCache]: JSON entries on disk, the default for the CLI
//   - [RedisCache]: a shared Redis instance for the HTTP host
//   - [NewNullCache]: never stores anything, used with --no-cache
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend agrees on naming.
// A probe key covers the file path, size and modification time, so editing
// an image invalidates its cached aspect ratio. Layout and artifact keys
// hash every option that influences the output.
//
// # Retries
//
// The Redis backend retries connection failures with a short exponential
// [Backoff]. Only errors marked [Transient] are retried.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLProbe    = 30 * 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A zero ttl stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// nullCache never stores anything.
type nullCache struct{}

// NewNullCache returns a cache that always misses. The CLI uses it for
// --no-cache and libraries fall back to it when no cache is given.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error { return nil }
func (nullCache) Close() error { return nil }
