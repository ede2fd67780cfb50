// Package cache provides byte caches for computed layouts and rendered
// documents.
//
// Three backends implement [Cache]:
//   - [FileCache] for the CLI, one JSON file per entry under a directory
//   - [RedisCache] for servers sharing a cache across instances
//   - [NullCache] when caching is disabled
//
// [MemoryCache] is an in-process cache used by tests and single-instance
// servers.
//
// Keys are produced by a [Keyer] so that every entry point derives the
// same key from the same inputs:
//
//	k := cache.NewDefaultKeyer()
//	layoutKey := k.LayoutKey(cache.Hash(records), cache.LayoutKeyOpts{Width: 1400, Height: 900})
//	docKey := k.DocumentKey(layoutKey, cache.DocumentKeyOpts{Compressed: true})
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	DocumentTTL = 7 * 24 * time.Hour
)

// Cache stores opaque values by key.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// failed, not that the key is absent. A ttl of zero stores without
// expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts are the inputs besides the record set that change a
// computed layout.
type LayoutKeyOpts struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	MarginLeft  float64 `json:"margin_left"`
	MarginRight float64 `json:"margin_right"`
	Gap         float64 `json:"gap"`
}

// DocumentKeyOpts are the inputs besides the layout that change a
// rendered document.
type DocumentKeyOpts struct {
	Compressed bool   `json:"compressed"`
	DiagramID  string `json:"diagram_id,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of a record set, given the hash of
	// its canonical encoding.
	LayoutKey(recordsHash string, opts LayoutKeyOpts) string
	// DocumentKey identifies a rendered document, given its layout key.
	DocumentKey(layoutKey string, opts DocumentKeyOpts) string
}

// DefaultKeyer hashes every key input into a prefixed SHA-256 key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(recordsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", recordsHash, opts)
}

// DocumentKey returns "document:<sha256>".
func (DefaultKeyer) DocumentKey(layoutKey string, opts DocumentKeyOpts) string {
	return hashKey("document", layoutKey, opts)
}

var _ Keyer = DefaultKeyer{}
