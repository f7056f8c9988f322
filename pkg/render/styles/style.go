// Package styles defines how treemap cells are drawn in SVG.
//
// A [Style] writes shared <defs> once and then one shape per cell. The
// built-in styles are [Flat], which fills each cell with its palette color,
// and [Cushion], which overlays a radial gradient so that neighbouring cells
// of the same color stay distinguishable.
package styles

import (
	"bytes"
	"fmt"
	"html"
	"sort"
)

// Style defines the visual appearance of treemap cells.
type Style interface {
	// Name returns the identifier used in options and JSON output.
	Name() string
	// RenderDefs writes SVG <defs> content (filters, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderCell writes the SVG for a single cell.
	RenderCell(buf *bytes.Buffer, c Cell)
}

// Cell contains the data needed to draw one treemap cell.
type Cell struct {
	ID         string  // Stable element identifier
	Title      string  // Tooltip text
	X, Y, W, H float64 // Position and dimensions
	Fill       string  // CSS color
	Leaf       bool
	Depth      int
}

// Flat fills cells with their color and no decoration.
type Flat struct{}

// Name implements Style.
func (Flat) Name() string { return "flat" }

// RenderDefs implements Style.
func (Flat) RenderDefs(*bytes.Buffer) {}

// RenderCell implements Style.
func (Flat) RenderCell(buf *bytes.Buffer, c Cell) {
	writeRect(buf, c, c.Fill)
}

// Cushion shades each cell with a radial highlight.
type Cushion struct{}

const cushionGradientID = "cushion"

// Name implements Style.
func (Cushion) Name() string { return "cushion" }

// RenderDefs implements Style.
func (Cushion) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")
	fmt.Fprintf(buf, `    <radialGradient id="%s" cx="35%%" cy="35%%" r="75%%">`+"\n", cushionGradientID)
	buf.WriteString(`      <stop offset="0%" stop-color="#ffffff" stop-opacity="0.45"/>` + "\n")
	buf.WriteString(`      <stop offset="100%" stop-color="#000000" stop-opacity="0.35"/>` + "\n")
	buf.WriteString("    </radialGradient>\n")
	buf.WriteString("  </defs>\n")
}

// RenderCell implements Style.
func (Cushion) RenderCell(buf *bytes.Buffer, c Cell) {
	buf.WriteString("  <g>\n  ")
	writeRect(buf, c, c.Fill)
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="url(#%s)" pointer-events="none"/>`+"\n",
		c.X, c.Y, c.W, c.H, cushionGradientID)
	buf.WriteString("  </g>\n")
}

func writeRect(buf *bytes.Buffer, c Cell, fill string) {
	fmt.Fprintf(buf, `  <rect id="%s" class="cell" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s">`,
		html.EscapeString(c.ID), c.X, c.Y, c.W, c.H, html.EscapeString(fill))
	if c.Title != "" {
		fmt.Fprintf(buf, "<title>%s</title>", html.EscapeString(c.Title))
	}
	buf.WriteString("</rect>\n")
}

// DefaultName names the style used when none is configured.
const DefaultName = "flat"

var registry = map[string]Style{
	"flat":    Flat{},
	"cushion": Cushion{},
}

// Lookup returns the style registered under name.
func Lookup(name string) (Style, bool) {
	if name == "" {
		name = DefaultName
	}
	s, ok := registry[name]
	return s, ok
}

// Names lists the registered style names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
