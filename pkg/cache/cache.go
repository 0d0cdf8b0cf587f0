// Package cache stores solved burrows so that repeated requests for the same
// puzzle skip the search.
//
// Three backends implement [Cache]:
//   - [FileCache] keeps one JSON file per entry under a directory (CLI default)
//   - [RedisCache] shares entries between server replicas
//   - [NullCache] disables caching
//
// Keys are produced by a [Keyer] so that the CLI and the HTTP API agree on
// them, and so a deployment can namespace keys with [NewScopedKeyer].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Default time-to-live for cached items. Solutions never change for a given
// key, so they live long; rendered artifacts are cheap to recreate.
const (
	TTLSolution = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// SolutionKey returns the key of a search result for a normalized layout.
	SolutionKey(layoutHash string, opts SolutionKeyOpts) string

	// ArtifactKey returns the key of a rendered solution.
	ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string
}

// SolutionKeyOpts holds every search option that can change the answer or
// the returned move list.
type SolutionKeyOpts struct {
	CatalogHash string `json:"catalog"`
	Bound       int    `json:"bound,omitempty"`
	Memoize     bool   `json:"memoize,omitempty"`
}

// ArtifactKeyOpts identifies one rendering of a solution.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SolutionKey implements Keyer.
func (DefaultKeyer) SolutionKey(layoutHash string, opts SolutionKeyOpts) string {
	return hashKey("solution", layoutHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", solutionHash, opts)
}
