package sink

import (
	"bytes"
	"fmt"
	"html"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/squaremap/pkg/render/styles"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

const cellInteractionCSS = `
    .cell { stroke: #ffffff; stroke-width: 1; transition: opacity 0.15s ease; }
    .cell:hover { opacity: 0.8; }
    .cell-label { font-family: sans-serif; font-size: 11px; fill: #ffffff; pointer-events: none; }`

// Labels are only drawn in cells at least this large.
const (
	minLabelWidth  = 48
	minLabelHeight = 16
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style  styles.Style
	titles bool
	labels bool
	empty  bool
}

// WithStyle sets the cell style. The default is [styles.Flat].
func WithStyle(s styles.Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithTitles adds a hover tooltip with path and size to every cell.
func WithTitles() SVGOption { return func(r *svgRenderer) { r.titles = true } }

// WithLabels draws the entry name inside cells large enough to hold it.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithEmptyCells keeps zero-area cells in the output.
func WithEmptyCells() SVGOption { return func(r *svgRenderer) { r.empty = true } }

// RenderSVG draws the layout as a standalone SVG document whose viewBox
// matches the layout bounds. Cells are written in layout order.
func RenderSVG(l treemap.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{style: styles.Flat{}}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cellInteractionCSS)

	r.style.RenderDefs(&buf)
	for _, c := range l.Cells {
		if c.Rect.Empty() && !r.empty {
			continue
		}
		r.style.RenderCell(&buf, r.styleCell(c))
	}
	if r.labels {
		renderLabels(&buf, l)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r svgRenderer) styleCell(c treemap.Cell) styles.Cell {
	sc := styles.Cell{
		ID:    cellID(c),
		X:     c.Rect.X,
		Y:     c.Rect.Y,
		W:     c.Rect.W,
		H:     c.Rect.H,
		Fill:  c.Color,
		Leaf:  c.Leaf,
		Depth: c.Depth,
	}
	if r.titles {
		sc.Title = cellTitle(c)
	}
	return sc
}

func cellID(c treemap.Cell) string {
	return "cell-" + strconv.Itoa(int(c.Node))
}

func cellTitle(c treemap.Cell) string {
	size := humanize.Bytes(uint64(c.Size))
	if !c.Leaf {
		return c.Path + "/ (" + size + ")"
	}
	return c.Path + " (" + size + ")"
}

func renderLabels(buf *bytes.Buffer, l treemap.Layout) {
	for _, c := range l.Cells {
		if c.Rect.W < minLabelWidth || c.Rect.H < minLabelHeight {
			continue
		}
		fmt.Fprintf(buf, `  <text class="cell-label" x="%.2f" y="%.2f">%s</text>`+"\n",
			c.Rect.X+4, c.Rect.Y+13, html.EscapeString(c.Name))
	}
}
