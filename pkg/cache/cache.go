// Package cache stores pipeline results keyed by content hash.
//
// # Overview
//
// Cleaning a large skeleton repeats the same passes over the same input, so
// the pipeline runner stores the flat export of every cleaned graph under a
// key derived from the input bytes and the cleanup options. A second run with
// the same input is answered from the cache byte for byte.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [NullCache]: stores nothing (--no-cache, tests)
//   - [RedisCache]: a shared Redis server (HTTP API deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [BadgerCache]: an embedded BadgerDB store, on disk or in memory
//
// [Open] builds the backend named in a [Config].
//
// # Keys
//
// A [Keyer] turns inputs into keys. [DefaultKeyer] hashes the key parts with
// SHA-256; [ScopedKeyer] prefixes another keyer for per-tenant isolation.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per result kind. Cleaned skeletons and statistics are
// pure functions of their key, so they may live long; rendered diagrams are
// cheaper to recompute and expire sooner.
const (
	TTLClean = 7 * 24 * time.Hour
	TTLStats = 7 * 24 * time.Hour
	TTLDOT   = 24 * time.Hour
)

// Cache is a byte store with optional expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero or less stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CleanKeyOpts are the cleanup options that change a cleaned result.
type CleanKeyOpts struct {
	MinLength    float64 `json:"min_length"`
	MinPoints    int     `json:"min_points"`
	PruneDegrees []int   `json:"prune_degrees,omitempty"`
	MaxRounds    int     `json:"max_rounds"`
	Scale        float64 `json:"scale"`
}

// DOTKeyOpts are the diagram options that change a rendered DOT or SVG.
type DOTKeyOpts struct {
	Format     string `json:"format"`
	Detailed   bool   `json:"detailed"`
	CyclesOnly bool   `json:"cycles_only"`
	RankDir    string `json:"rankdir,omitempty"`
}

// Keyer builds cache keys for pipeline results.
type Keyer interface {
	// CleanKey keys the cleaned export of the input with the given hash.
	CleanKey(inputHash string, opts CleanKeyOpts) string
	// StatsKey keys the statistics of the input with the given hash.
	StatsKey(inputHash string) string
	// DOTKey keys a diagram of the input with the given hash.
	DOTKey(inputHash string, opts DOTKeyOpts) string
}

// DefaultKeyer hashes key parts into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CleanKey returns "clean:<sha256>".
func (DefaultKeyer) CleanKey(inputHash string, opts CleanKeyOpts) string {
	return hashKey("clean", inputHash, opts)
}

// StatsKey returns "stats:<inputHash>".
func (DefaultKeyer) StatsKey(inputHash string) string {
	return "stats:" + inputHash
}

// DOTKey returns "dot:<sha256>".
func (DefaultKeyer) DOTKey(inputHash string, opts DOTKeyOpts) string {
	return hashKey("dot", inputHash, opts)
}

var _ Keyer = DefaultKeyer{}
