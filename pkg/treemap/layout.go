package treemap

import (
	"math"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/squarify"
)

// Cell is one positioned rectangle of a treemap. Node refers back into the
// tree the layout was built from; the cell does not own it.
type Cell struct {
	Node  hierarchy.NodeID `json:"node" bson:"node"`
	Index int              `json:"index" bson:"index"` // position within its sibling weight sequence
	Name  string           `json:"name" bson:"name"`
	Path  string           `json:"path" bson:"path"`
	Size  float64          `json:"size" bson:"size"`
	Leaf  bool             `json:"leaf" bson:"leaf"`
	Depth int              `json:"depth" bson:"depth"` // 1 for children of the laid-out directory
	Rect  squarify.Rect    `json:"rect" bson:"rect"`
	Color string           `json:"color" bson:"color"`
}

// Layout is the result of one layout pass.
type Layout struct {
	Width  float64          `json:"width" bson:"width"`
	Height float64          `json:"height" bson:"height"`
	Depth  int              `json:"depth" bson:"depth"`
	Focus  hierarchy.NodeID `json:"focus" bson:"focus"`
	Root   string           `json:"root" bson:"root"`
	Total  float64          `json:"total" bson:"total"`
	Cells  []Cell           `json:"cells" bson:"cells"`
}

// Options configures [Build].
type Options struct {
	// Depth limits how many directory levels are expanded. 1 lays out only
	// the children of the focus directory; 0 expands down to the leaves.
	Depth int
	// MinArea drops cells whose pixel area is below the threshold.
	// Zero keeps every cell, including zero-area ones.
	MinArea float64
	// Palette assigns cell colors. Nil uses RGB.
	Palette Palette
	// Focus selects the directory to lay out. NoParent means the root.
	Focus hierarchy.NodeID
	// Memo, when set, caches squarify results across calls.
	Memo *Memo
}

// Option configures [Build].
type Option func(*Options)

// WithDepth sets Options.Depth.
func WithDepth(d int) Option { return func(o *Options) { o.Depth = d } }

// WithMinArea sets Options.MinArea.
func WithMinArea(px float64) Option { return func(o *Options) { o.MinArea = px } }

// WithPalette sets Options.Palette.
func WithPalette(p Palette) Option { return func(o *Options) { o.Palette = p } }

// WithFocus sets Options.Focus.
func WithFocus(id hierarchy.NodeID) Option { return func(o *Options) { o.Focus = id } }

// WithMemo sets Options.Memo.
func WithMemo(m *Memo) Option { return func(o *Options) { o.Memo = m } }

// Build lays out an aggregated tree inside bounds.
//
// The children of the focus directory are sorted largest first and handed to
// the squarify engine; each directory within the depth limit is then laid
// out inside its own rectangle the same way. Cells are emitted for leaves,
// for directories at the depth limit, and for directories with no area to
// subdivide. A leaf focus yields a single cell covering bounds.
func Build(t *hierarchy.Tree, bounds squarify.Rect, opts ...Option) (Layout, error) {
	o := Options{Depth: 1, Focus: hierarchy.NoParent}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Palette == nil {
		o.Palette = RGB
	}
	if o.Depth < 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidArgument, "depth cannot be negative: %d", o.Depth)
	}
	if t == nil || t.Root() == hierarchy.NoParent {
		return Layout{}, errors.New(errors.ErrCodeInvalidStructure, "tree is empty")
	}
	if !t.Aggregated() {
		return Layout{}, errors.New(errors.ErrCodeInvalidStructure, "tree must be aggregated before layout")
	}
	if err := errors.ValidateDimensions(bounds.W, bounds.H); err != nil {
		return Layout{}, err
	}

	focus := o.Focus
	if focus == hierarchy.NoParent {
		focus = t.Root()
	}
	if _, ok := t.Node(focus); !ok {
		return Layout{}, errors.New(errors.ErrCodeNotFound, "focus node %d does not exist", focus)
	}

	l := Layout{
		Width:  bounds.W,
		Height: bounds.H,
		Depth:  o.Depth,
		Focus:  focus,
		Root:   t.Path(focus),
		Total:  t.Size(focus),
	}

	b := builder{t: t, opts: o, layout: &l}
	if t.IsLeaf(focus) {
		b.emit(focus, 0, 0, bounds)
		return l, nil
	}
	if err := b.run(focus, bounds); err != nil {
		return Layout{}, err
	}
	return l, nil
}

type builder struct {
	t      *hierarchy.Tree
	opts   Options
	layout *Layout
}

func (b *builder) squarify(weights []float64, bounds squarify.Rect) ([]squarify.Rect, error) {
	if b.opts.Memo != nil {
		return b.opts.Memo.Squarify(weights, bounds)
	}
	return squarify.Squarify(weights, bounds)
}

func (b *builder) run(focus hierarchy.NodeID, bounds squarify.Rect) error {
	type job struct {
		dir   hierarchy.NodeID
		rect  squarify.Rect
		depth int // depth of dir's children
	}

	stack := []job{{dir: focus, rect: bounds, depth: 1}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := b.t.SortedChildren(j.dir)
		if len(children) == 0 {
			continue
		}
		weights := make([]float64, len(children))
		for i, c := range children {
			weights[i] = b.t.Size(c)
		}
		rects, err := b.squarify(weights, j.rect)
		if err != nil {
			return err
		}

		var nested []job
		for i, c := range children {
			expand := !b.t.IsLeaf(c) &&
				b.t.ChildCount(c) > 0 &&
				(b.opts.Depth == 0 || j.depth < b.opts.Depth) &&
				!rects[i].Empty()
			if expand {
				nested = append(nested, job{dir: c, rect: rects[i], depth: j.depth + 1})
				continue
			}
			b.emit(c, i, j.depth, rects[i])
		}
		// Push in reverse so siblings are expanded in layout order.
		for k := len(nested) - 1; k >= 0; k-- {
			stack = append(stack, nested[k])
		}
	}
	return nil
}

func (b *builder) emit(id hierarchy.NodeID, index, depth int, r squarify.Rect) {
	if b.opts.MinArea > 0 && r.Area() < b.opts.MinArea {
		return
	}
	b.layout.Cells = append(b.layout.Cells, Cell{
		Node:  id,
		Index: index,
		Name:  b.t.Name(id),
		Path:  b.t.Path(id),
		Size:  b.t.Size(id),
		Leaf:  b.t.IsLeaf(id),
		Depth: depth,
		Rect:  r,
		Color: b.opts.Palette.Color(len(b.layout.Cells), depth),
	})
}

// At returns the cell containing (x, y). Zero-area cells are never hit.
func (l Layout) At(x, y float64) (Cell, bool) {
	for _, c := range l.Cells {
		if c.Rect.ContainsPoint(x, y) {
			return c, true
		}
	}
	return Cell{}, false
}

// Stats summarizes a layout.
type Stats struct {
	Cells          int
	EmptyCells     int
	MaxAspectRatio float64
	AvgAspectRatio float64
	CoveredArea    float64
}

// Stats computes summary figures over the non-empty cells.
func (l Layout) Stats() Stats {
	var s Stats
	var sum float64
	for _, c := range l.Cells {
		s.Cells++
		if c.Rect.Empty() {
			s.EmptyCells++
			continue
		}
		ar := c.Rect.AspectRatio()
		s.MaxAspectRatio = math.Max(s.MaxAspectRatio, ar)
		sum += ar
		s.CoveredArea += c.Rect.Area()
	}
	if n := s.Cells - s.EmptyCells; n > 0 {
		s.AvgAspectRatio = sum / float64(n)
	}
	return s
}

// ZoomTarget returns the child of focus on the path from focus down to
// node, which is the directory a viewer should zoom into when node is
// selected. It returns NoParent when node is not strictly below focus or the
// child is a leaf.
func ZoomTarget(t *hierarchy.Tree, focus, node hierarchy.NodeID) hierarchy.NodeID {
	for n := node; n != hierarchy.NoParent; n = t.Parent(n) {
		if t.Parent(n) == focus {
			if t.IsLeaf(n) {
				return hierarchy.NoParent
			}
			return n
		}
	}
	return hierarchy.NoParent
}
