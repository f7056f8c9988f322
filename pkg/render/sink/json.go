package sink

import (
	"encoding/json"

	"github.com/matzehuels/squaremap/pkg/treemap"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	style   string
	palette string
	stats   bool
}

// WithJSONStyle records the style name in the output so that a consumer can
// render the cells the same way.
func WithJSONStyle(s string) JSONOption { return func(r *jsonRenderer) { r.style = s } }

// WithJSONPalette records the palette name in the output.
func WithJSONPalette(p string) JSONOption { return func(r *jsonRenderer) { r.palette = p } }

// WithJSONStats includes aspect-ratio and coverage figures.
func WithJSONStats() JSONOption { return func(r *jsonRenderer) { r.stats = true } }

type jsonOutput struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Root    string     `json:"root"`
	Total   float64    `json:"total"`
	Depth   int        `json:"depth"`
	Style   string     `json:"style,omitempty"`
	Palette string     `json:"palette,omitempty"`
	Cells   []jsonCell `json:"cells"`
	Stats   *jsonStats `json:"stats,omitempty"`
}

type jsonCell struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Size   float64 `json:"size"`
	Leaf   bool    `json:"leaf,omitempty"`
	Depth  int     `json:"depth"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

type jsonStats struct {
	Cells          int     `json:"cells"`
	EmptyCells     int     `json:"empty_cells"`
	MaxAspectRatio float64 `json:"max_aspect_ratio"`
	AvgAspectRatio float64 `json:"avg_aspect_ratio"`
	CoveredArea    float64 `json:"covered_area"`
}

// RenderJSON exports the positioned cells as a pretty-printed JSON document.
// Unlike [RenderSVG] it keeps zero-area cells, so every laid-out entry is
// present. It does not modify l and is safe to call concurrently.
func RenderJSON(l treemap.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:   l.Width,
		Height:  l.Height,
		Root:    l.Root,
		Total:   l.Total,
		Depth:   l.Depth,
		Style:   r.style,
		Palette: r.palette,
		Cells:   make([]jsonCell, 0, len(l.Cells)),
	}
	for _, c := range l.Cells {
		out.Cells = append(out.Cells, jsonCell{
			ID:     cellID(c),
			Name:   c.Name,
			Path:   c.Path,
			Size:   c.Size,
			Leaf:   c.Leaf,
			Depth:  c.Depth,
			X:      c.Rect.X,
			Y:      c.Rect.Y,
			Width:  c.Rect.W,
			Height: c.Rect.H,
			Color:  c.Color,
		})
	}
	if r.stats {
		s := l.Stats()
		out.Stats = &jsonStats{
			Cells:          s.Cells,
			EmptyCells:     s.EmptyCells,
			MaxAspectRatio: s.MaxAspectRatio,
			AvgAspectRatio: s.AvgAspectRatio,
			CoveredArea:    s.CoveredArea,
		}
	}

	return json.MarshalIndent(out, "", "  ")
}
