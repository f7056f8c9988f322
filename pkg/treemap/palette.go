package treemap

import (
	"sort"
	"strings"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// Palette assigns a fill color to a cell from its emission index and its
// depth below the laid-out directory.
type Palette interface {
	Color(index, depth int) string
}

// Cycle repeats a fixed list of colors by index.
type Cycle []string

// Color implements Palette.
func (c Cycle) Color(index, _ int) string {
	if len(c) == 0 {
		return "#808080"
	}
	return c[index%len(c)]
}

// Shades picks a color by depth, so nesting levels read as bands.
type Shades []string

// Color implements Palette.
func (s Shades) Color(_, depth int) string {
	if len(s) == 0 {
		return "#808080"
	}
	if depth < 0 {
		depth = 0
	}
	return s[depth%len(s)]
}

// Built-in palettes.
var (
	// RGB cycles red, green and blue.
	RGB = Cycle{"#e62937", "#00e430", "#0079f1"}

	// Muted is a softer qualitative cycle for larger trees.
	Muted = Cycle{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac"}

	// Depth shades blue from dark to light with nesting.
	Depth = Shades{"#08306b", "#08519c", "#2171b5", "#4292c6", "#6baed6", "#9ecae1", "#c6dbef"}
)

// DefaultPaletteName names the palette used when none is configured.
const DefaultPaletteName = "rgb"

var palettes = map[string]Palette{
	"rgb":   RGB,
	"muted": Muted,
	"depth": Depth,
}

// LookupPalette returns the built-in palette with the given name.
func LookupPalette(name string) (Palette, error) {
	if name == "" {
		name = DefaultPaletteName
	}
	p, ok := palettes[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (available: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// PaletteNames lists the built-in palette names in sorted order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
