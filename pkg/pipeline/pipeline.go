// Package pipeline runs the squaremap scan → layout → render pipeline.
//
// The CLI and the HTTP service both go through a [Runner], so cache keys,
// defaults and validation are the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scan: Walk a directory (or import a tree snapshot) and aggregate sizes
//  2. Layout: Squarify the focus directory into cells for the frame
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Root:    "/var/log",
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 600.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 400.0

	// DefaultDepth lays out only the children of the focus directory.
	DefaultDepth = 1

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0
)

// Visualization types.
const (
	VizTypeTreemap  = "treemap"
	VizTypeNodelink = "nodelink"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeTreemap

// DefaultStyle is the default visual style.
const DefaultStyle = styles.DefaultName

// DefaultPalette is the default color palette.
const DefaultPalette = treemap.DefaultPaletteName

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTreemap:  true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scan options
	Root     string   `json:"root,omitempty"`      // Directory to scan
	Input    string   `json:"input,omitempty"`     // Tree snapshot to import instead of scanning
	Exclude  []string `json:"exclude,omitempty"`   // Exclusion patterns
	RootName string   `json:"root_name,omitempty"` // Display name for the root node
	Refresh  bool     `json:"refresh,omitempty"`   // Bypass the scan cache

	// Layout options
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Depth   int     `json:"depth,omitempty"`
	MinArea float64 `json:"min_area,omitempty"`
	Palette string  `json:"palette,omitempty"`
	Focus   string  `json:"focus,omitempty"` // Path below the root to lay out

	// Render options
	VizType string   `json:"viz_type,omitempty"`
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Titles  bool     `json:"titles,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// depthSet records that Depth was set explicitly, so zero means "all".
	depthSet bool
	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the aggregated hierarchy.
	Tree *hierarchy.Tree

	// TreeHash is the content hash of the tree snapshot.
	TreeHash string

	// Report is the aggregation check for Tree.
	Report hierarchy.Report

	// Layout contains the positioned cells.
	Layout treemap.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// ScanErrors lists entries that could not be read during the scan.
	ScanErrors []error

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Files      int
	Dirs       int
	Bytes      float64
	Cells      int
	ScanTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScanHit   bool // Whether the tree came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is registered.
func ValidateStyle(style string) error {
	if style == "" {
		return errors.New(errors.ErrCodeInvalidStyle, "style is required")
	}
	if _, ok := styles.Lookup(style); !ok {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)",
			style, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ValidatePalette checks that a palette is registered.
func ValidatePalette(palette string) error {
	if palette == "" {
		return errors.New(errors.ErrCodeInvalidPalette, "palette is required")
	}
	_, err := treemap.LookupPalette(palette)
	return err
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid viz_type: %q (must be one of: treemap, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForScan(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForScan checks that exactly one input is given.
func (o *Options) ValidateForScan() error {
	switch {
	case o.Root == "" && o.Input == "":
		return errors.New(errors.ErrCodeInvalidInput, "a directory or tree snapshot is required")
	case o.Root != "" && o.Input != "":
		return errors.New(errors.ErrCodeInvalidInput, "give either a directory or a tree snapshot, not both")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetDepth sets the layout depth explicitly. Unlike assigning Depth, a
// zero value is kept and means "expand to the leaves".
func (o *Options) SetDepth(d int) {
	o.Depth = d
	o.depthSet = true
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Depth == 0 && !o.depthSet {
		o.Depth = DefaultDepth
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "depth cannot be negative: %d", o.Depth)
	}
	if o.MinArea < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "min_area cannot be negative: %g", o.MinArea)
	}
	if o.Focus != "" {
		if err := errors.ValidatePath(o.Focus); err != nil {
			return err
		}
	}
	return ValidatePalette(o.Palette)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "scale cannot be negative: %g", o.Scale)
	}
	return ValidateStyle(o.Style)
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// TreeKeyOpts returns cache key options for scanning.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		Exclude:  slices.Clone(o.Exclude),
		RootName: o.RootName,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:   o.Width,
		Height:  o.Height,
		Depth:   o.Depth,
		MinArea: o.MinArea,
		Palette: o.Palette,
		Focus:   o.Focus,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Style:  o.Style,
		Labels: o.Labels,
		Titles: o.Titles,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.IsNodelink() {
		k.Style = VizTypeNodelink
	}
	return k
}

// absRoot returns the absolute scan root, used for cache keys.
func (o *Options) absRoot() string {
	if abs, err := filepath.Abs(o.Root); err == nil {
		return abs
	}
	return o.Root
}
