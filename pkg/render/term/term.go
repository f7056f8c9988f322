// Package term rasterizes treemap cells onto a character grid for display
// in a terminal. Each character takes the background color of the cell
// covering it; cell names are written into cells wide enough to hold them.
package term

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/render"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// Canvas describes the character grid a layout is drawn onto.
type Canvas struct {
	Cols, Rows int
	// ScaleX and ScaleY convert layout units to columns and rows.
	ScaleX, ScaleY float64
	// Selected is highlighted with a bold reversed style. NoParent selects
	// nothing.
	Selected hierarchy.NodeID
	// Labels writes cell names into the grid.
	Labels bool
}

// Rasterize draws cells onto a cols x rows grid with labels and no
// selection.
func Rasterize(cells []treemap.Cell, cols, rows int, scaleX, scaleY float64) string {
	c := Canvas{Cols: cols, Rows: rows, ScaleX: scaleX, ScaleY: scaleY, Selected: hierarchy.NoParent, Labels: true}
	return c.Render(cells)
}

// Render draws cells and returns Rows lines of Cols characters joined by
// newlines. Cells are painted in order, so later cells win where rounding
// makes neighbours overlap.
func (c Canvas) Render(cells []treemap.Cell) string {
	if c.Cols <= 0 || c.Rows <= 0 {
		return ""
	}
	owner := make([][]int, c.Rows)
	glyph := make([][]rune, c.Rows)
	for y := range owner {
		owner[y] = make([]int, c.Cols)
		glyph[y] = make([]rune, c.Cols)
		for x := range owner[y] {
			owner[y][x] = -1
			glyph[y][x] = ' '
		}
	}

	for i, cell := range cells {
		x0, y0, x1, y1 := c.span(cell)
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				owner[y][x] = i
			}
		}
		if c.Labels {
			c.label(glyph, render.Printable(cell.Name), x0, y0, x1, y1)
		}
	}

	styles := make([]lipgloss.Style, len(cells))
	for i, cell := range cells {
		styles[i] = cellStyle(cell.Color)
		if cell.Node == c.Selected {
			styles[i] = styles[i].Bold(true).Reverse(true)
		}
	}

	var b strings.Builder
	for y := 0; y < c.Rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		writeRow(&b, owner[y], glyph[y], styles)
	}
	return b.String()
}

// span converts a cell rectangle to grid coordinates, clamped to the canvas.
func (c Canvas) span(cell treemap.Cell) (x0, y0, x1, y1 int) {
	x0 = clamp(int(math.Round(cell.Rect.X*c.ScaleX)), c.Cols)
	x1 = clamp(int(math.Round(cell.Rect.MaxX()*c.ScaleX)), c.Cols)
	y0 = clamp(int(math.Round(cell.Rect.Y*c.ScaleY)), c.Rows)
	y1 = clamp(int(math.Round(cell.Rect.MaxY()*c.ScaleY)), c.Rows)
	return
}

func (c Canvas) label(glyph [][]rune, name string, x0, y0, x1, y1 int) {
	if y1 <= y0 || x1-x0 < 3 {
		return
	}
	room := x1 - x0 - 1
	text := []rune(name)
	if len(text) > room {
		text = append(text[:room-1], '…')
	}
	for i, r := range text {
		glyph[y0][x0+1+i] = r
	}
}

// writeRow renders runs of characters sharing an owner with one style call.
func writeRow(b *strings.Builder, owner []int, glyph []rune, styles []lipgloss.Style) {
	start := 0
	for x := 1; x <= len(owner); x++ {
		if x < len(owner) && owner[x] == owner[start] {
			continue
		}
		run := string(glyph[start:x])
		if o := owner[start]; o >= 0 {
			run = styles[o].Render(run)
		}
		b.WriteString(run)
		start = x
	}
}

func cellStyle(color string) lipgloss.Style {
	s := lipgloss.NewStyle().Background(lipgloss.Color(color))
	if light(color) {
		return s.Foreground(lipgloss.Color("#000000"))
	}
	return s.Foreground(lipgloss.Color("#ffffff"))
}

// light reports whether a #rrggbb color is bright enough to need dark text.
func light(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	v, err := strconv.ParseUint(color[1:], 16, 32)
	if err != nil {
		return false
	}
	r, g, b := float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)
	return 0.299*r+0.587*g+0.114*b > 150
}

func clamp(v, hi int) int {
	return max(0, min(v, hi))
}
