package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// Flag values override the configuration only when given explicitly, so
// each group registers its flags and later applies the changed ones.

// scanFlags select and filter the tree to scan.
type scanFlags struct {
	input    string
	exclude  []string
	rootName string
	refresh  bool
	noCache  bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "read a tree snapshot instead of scanning a directory")
	cmd.Flags().StringSliceVarP(&f.exclude, "exclude", "x", nil, "exclude pattern (repeatable; replaces configured patterns)")
	cmd.Flags().StringVar(&f.rootName, "root-name", "", "display name of the root directory")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rescan even if a cached tree exists")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

func (f *scanFlags) apply(cmd *cobra.Command, opts *pipeline.Options, args []string) {
	inputOptions(opts, args, f.input)
	if cmd.Flags().Changed("exclude") {
		opts.Exclude = f.exclude
	}
	opts.RootName = f.rootName
	opts.Refresh = f.refresh
}

// layoutFlags shape the treemap layout.
type layoutFlags struct {
	width   float64
	height  float64
	depth   int
	minArea float64
	palette string
	focus   string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", pipeline.DefaultDepth, "directory levels to expand (0 = all)")
	cmd.Flags().Float64Var(&f.minArea, "min-area", 0, "drop cells smaller than this many square pixels")
	cmd.Flags().StringVar(&f.palette, "palette", pipeline.DefaultPalette,
		"color palette: "+strings.Join(treemap.PaletteNames(), ", "))
	cmd.Flags().StringVar(&f.focus, "focus", "", "lay out this directory (path below the root)")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("depth") {
		opts.SetDepth(f.depth)
	}
	if flags.Changed("min-area") {
		opts.MinArea = f.minArea
	}
	if flags.Changed("palette") {
		opts.Palette = f.palette
	}
	opts.Focus = f.focus
}

// renderFlags choose the output.
type renderFlags struct {
	output  string
	formats string
	vizType string
	style   string
	labels  bool
	titles  bool
	scale   float64
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringVarP(&f.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: treemap (default), nodelink")
	cmd.Flags().StringVar(&f.style, "style", pipeline.DefaultStyle, "cell style: "+strings.Join(styles.Names(), ", "))
	cmd.Flags().BoolVar(&f.labels, "labels", false, "write names into cells large enough to hold them")
	cmd.Flags().BoolVar(&f.titles, "titles", true, "add hover titles with path and size")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	opts.Formats = parseFormats(f.formats)
	opts.VizType = f.vizType
	if cmd.Flags().Changed("style") {
		opts.Style = f.style
	}
	opts.Labels = f.labels
	opts.Titles = f.titles
	opts.Scale = f.scale
}
