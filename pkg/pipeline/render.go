package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/io"
	"github.com/matzehuels/squaremap/pkg/render/nodelink"
	"github.com/matzehuels/squaremap/pkg/render/sink"
	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l treemap.Layout, t *hierarchy.Tree, opts Options) (map[string][]byte, error) {
	if opts.IsNodelink() {
		return renderNodelink(ctx, t, opts)
	}
	return renderTreemap(l, opts)
}

// renderTreemap generates treemap outputs.
func renderTreemap(l treemap.Layout, opts Options) (map[string][]byte, error) {
	svgOpts, err := buildSVGOptions(opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(l,
				sink.WithJSONStyle(opts.Style),
				sink.WithJSONPalette(opts.Palette),
				sink.WithJSONStats(),
			)
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderNodelink draws the hierarchy as a node-link diagram down to the
// layout depth.
func renderNodelink(ctx context.Context, t *hierarchy.Tree, opts Options) (map[string][]byte, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nodelink rendering requires the tree")
	}
	maxDepth := opts.Depth
	if maxDepth == 0 {
		maxDepth = -1
	}
	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: opts.Labels, MaxDepth: maxDepth})

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			data, err = io.MarshalTree(t)
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// buildSVGOptions creates SVG rendering options.
func buildSVGOptions(opts Options) ([]sink.SVGOption, error) {
	style, ok := styles.Lookup(opts.Style)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q", opts.Style)
	}
	svgOpts := []sink.SVGOption{sink.WithStyle(style)}
	if opts.Titles {
		svgOpts = append(svgOpts, sink.WithTitles())
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts, nil
}
