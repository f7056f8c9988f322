// Package cache stores scan snapshots, layouts and rendered artifacts.
//
// Backends implement [Cache]: [FileCache] for the CLI, [RedisCache] and
// [MongoCache] for the HTTP service, and [NullCache] when caching is off.
// Keys are produced by a [Keyer] so that every stage hashes its inputs the
// same way; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per stage. Scans go stale as the filesystem
// changes; layouts and artifacts are pure functions of their inputs.
const (
	TTLTree     = 10 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key-value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for each pipeline stage.
type Keyer interface {
	TreeKey(root string, opts TreeKeyOpts) string
	LayoutKey(treeHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// TreeKeyOpts holds the scan inputs that change the resulting tree.
type TreeKeyOpts struct {
	Exclude  []string `json:"exclude,omitempty"`
	RootName string   `json:"root_name,omitempty"`
}

// LayoutKeyOpts holds the layout inputs that change cell positions or colors.
type LayoutKeyOpts struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Depth   int     `json:"depth"`
	MinArea float64 `json:"min_area,omitempty"`
	Palette string  `json:"palette,omitempty"`
	Focus   string  `json:"focus,omitempty"`
}

// ArtifactKeyOpts holds the render inputs that change the output bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Style  string  `json:"style,omitempty"`
	Labels bool    `json:"labels,omitempty"`
	Titles bool    `json:"titles,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "stage:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreeKey keys a scan of root.
func (DefaultKeyer) TreeKey(root string, opts TreeKeyOpts) string {
	return hashKey("tree", root, opts)
}

// LayoutKey keys a layout of the tree whose snapshot hashes to treeHash.
func (DefaultKeyer) LayoutKey(treeHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", treeHash, opts)
}

// ArtifactKey keys a rendering of the layout whose JSON hashes to layoutHash.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
