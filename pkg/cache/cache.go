// Package cache stores fetched schedules and rendered sheets between runs.
//
// A [Cache] is a byte store with per-entry TTL. Three backends exist:
//   - [FileCache]: one JSON envelope per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance, selected with a redis:// URL
//   - [NullCache]: stores nothing, used with --no-cache
//
// Keys come from a [Keyer] so that every producer agrees on their shape.
// Artifact keys hash everything that can change a rendered sheet, so a hit
// is always safe to reuse.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind.
const (
	// TTLHTTP bounds how stale a fetched schedule may be.
	TTLHTTP = 10 * time.Minute
	// TTLArtifact applies to serialized sheets.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a key/value byte store with expiration.
//
// Get reports a miss with ok == false and a nil error. Expired entries are
// misses. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a fetched HTTP body.
	HTTPKey(namespace, key string) string
	// ArtifactKey keys one serialized sheet. groupHash covers the group's
	// sessions and the speakers they reference.
	ArtifactKey(groupHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs besides the group itself.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	StyleHash string `json:"style_hash"`
	Zone      string `json:"zone"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ArtifactKey returns "artifact:<sha256>" over the group hash and opts.
func (DefaultKeyer) ArtifactKey(groupHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", groupHash, opts)
}
