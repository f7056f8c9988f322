package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/render"
)

// DefaultMaxDepth limits diagrams of large trees to a readable size.
const DefaultMaxDepth = 3

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the aggregated size and child count to node labels.
	// When false, only the name is shown.
	Detailed bool
	// MaxDepth limits how many levels below the root are drawn.
	// Zero uses DefaultMaxDepth; a negative value draws the whole tree.
	MaxDepth int
	// FilesOnly hides directories holding no bytes. Requires an aggregated tree.
	FilesOnly bool
}

// ToDOT converts a tree to Graphviz DOT format with one node per entry and an
// edge from every directory to each of its children. Leaves are drawn as
// plain boxes and directories as folders. The resulting DOT string can be
// rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(t *hierarchy.Tree, opts Options) string {
	maxDepth := opts.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	var edges []string
	_ = t.Walk(t.Root(), func(id hierarchy.NodeID, depth int) error {
		n, _ := t.Node(id)
		if opts.FilesOnly && !n.Leaf && n.Size == 0 && id != t.Root() {
			return hierarchy.SkipChildren
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(id), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
		if n.Parent != hierarchy.NoParent {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", nodeID(n.Parent), nodeID(id)))
		}
		if maxDepth > 0 && depth >= maxDepth {
			return hierarchy.SkipChildren
		}
		return nil
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id hierarchy.NodeID) string {
	return "n" + strconv.Itoa(int(id))
}

func fmtLabel(n hierarchy.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	parts := []string{humanize.Bytes(uint64(n.Size))}
	if !n.Leaf {
		parts = append(parts, fmt.Sprintf("%d entries", len(n.Children)))
	}
	return n.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n hierarchy.Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if !n.Leaf {
		attrs = append(attrs, "shape=folder", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
