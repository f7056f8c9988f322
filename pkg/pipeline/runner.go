package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/io"
	"github.com/matzehuels/squaremap/pkg/observability"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner does not store pipeline results. Multiple goroutines can
// safely use the same Runner with different options; the squarify memo it
// shares between layouts is internally synchronized.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Memo   *treemap.Memo

	// TTL overrides the layout and artifact TTLs when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		Memo:   treemap.NewMemo(treemap.DefaultMemoSize),
	}
}

// Execute runs the complete scan → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Scan
	scanStart := time.Now()
	t, scanErrs, scanHit, err := r.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	result.Tree = t
	result.ScanErrors = scanErrs
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.NodeCount = t.Len()
	result.Stats.Dirs, result.Stats.Files = t.Counts()
	result.Stats.Bytes = t.Size(t.Root())
	result.CacheInfo.ScanHit = scanHit
	result.TreeHash = TreeHash(t)

	report, err := Verify(t)
	if err != nil {
		return nil, err
	}
	result.Report = report

	r.Logger.Info("scanned tree",
		"nodes", t.Len(),
		"files", result.Stats.Files,
		"bytes", result.Stats.Bytes,
		"duration", result.Stats.ScanTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.Cells = len(l.Cells)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"cells", len(l.Cells),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, t, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ScanWithCacheInfo produces the aggregated tree and reports whether it
// came from the cache. Snapshot imports are never cached; directory scans
// are cached unless opts.Refresh is set. Unreadable entries are only
// reported for fresh scans.
func (r *Runner) ScanWithCacheInfo(ctx context.Context, opts Options) (*hierarchy.Tree, []error, bool, error) {
	if err := opts.ValidateForScan(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	hooks := observability.Pipeline()
	label := opts.Root
	if opts.Input != "" {
		label = opts.Input
	}

	var cacheKey string
	if opts.Input == "" {
		cacheKey = r.Keyer.TreeKey(opts.absRoot(), opts.TreeKeyOpts())
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				if t, err := io.UnmarshalTree(data); err == nil && t.Aggregated() {
					observability.Cache().OnCacheHit(ctx, "tree")
					return t, nil, true, nil // Cache hit
				}
			}
			observability.Cache().OnCacheMiss(ctx, "tree")
		}
	}

	hooks.OnScanStart(ctx, label)
	start := time.Now()
	t, scanErrs, err := Scan(ctx, opts)
	nodes := 0
	if t != nil {
		nodes = t.Len()
	}
	hooks.OnScanComplete(ctx, label, nodes, time.Since(start), err)
	if err != nil {
		return nil, nil, false, err
	}

	if cacheKey != "" {
		if data, err := io.MarshalTree(t); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLTree); err == nil {
				observability.Cache().OnCacheSet(ctx, "tree", len(data))
			}
		}
	}

	return t, scanErrs, false, nil // Cache miss
}

// Scan is a convenience wrapper that calls ScanWithCacheInfo and discards the cache hit info.
func (r *Runner) Scan(ctx context.Context, opts Options) (*hierarchy.Tree, error) {
	t, _, _, err := r.ScanWithCacheInfo(ctx, opts)
	return t, err
}

// GenerateLayoutWithCacheInfo generates a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, t *hierarchy.Tree, opts Options) (treemap.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return treemap.Layout{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	cacheKey := r.Keyer.LayoutKey(TreeHash(t), opts.LayoutKeyOpts())

	// Try cache first
	var cached treemap.Layout
	switch err := cache.GetJSON(ctx, r.Cache, cacheKey, &cached); err {
	case nil:
		observability.Cache().OnCacheHit(ctx, "layout")
		return cached, true, nil // Cache hit
	default:
		// Misses and backend failures both fall through to recompute
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Focus, t.Len())
	start := time.Now()
	l, err := GenerateLayout(t, opts, r.Memo)
	hooks.OnLayoutComplete(ctx, opts.Focus, len(l.Cells), time.Since(start), err)
	if err != nil {
		return treemap.Layout{}, false, err
	}

	// Cache the result
	if err := cache.SetJSON(ctx, r.Cache, cacheKey, l, r.ttl(cache.TTLLayout)); err == nil {
		observability.Cache().OnCacheSet(ctx, "layout", len(l.Cells))
	}

	return l, false, nil // Cache miss
}

// GenerateLayout is a convenience wrapper that calls GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, t *hierarchy.Tree, opts Options) (treemap.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, t, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// The tree is only read for nodelink output and may be nil otherwise.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l treemap.Layout, t *hierarchy.Tree, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	cacheKeyHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := Render(ctx, l, t, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(cacheKeyHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l treemap.Layout, t *hierarchy.Tree, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, t, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// TreeHash returns the content hash of the tree's snapshot.
func TreeHash(t *hierarchy.Tree) string {
	data, err := io.MarshalTree(t)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
