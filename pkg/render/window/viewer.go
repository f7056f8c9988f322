package window

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/squarify"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// Viewer tracks the zoom state of an aggregated tree.
type Viewer struct {
	tree   *hierarchy.Tree
	memo   *treemap.Memo
	opts   []treemap.Option
	logger *log.Logger

	focus         hierarchy.NodeID
	width, height int
	layout        treemap.Layout
	anim          *transition
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithLayoutOptions passes options to every layout pass. WithFocus and
// WithMemo are managed by the viewer and should not be given.
func WithLayoutOptions(opts ...treemap.Option) ViewerOption {
	return func(v *Viewer) { v.opts = append(v.opts, opts...) }
}

// WithLogger sets the logger used for zoom events.
func WithLogger(l *log.Logger) ViewerOption {
	return func(v *Viewer) { v.logger = l }
}

// NewViewer creates a viewer focused on the root of t, which must be
// aggregated.
func NewViewer(t *hierarchy.Tree, opts ...ViewerOption) (*Viewer, error) {
	if t == nil || t.Root() == hierarchy.NoParent {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "tree is empty")
	}
	if !t.Aggregated() {
		return nil, errors.New(errors.ErrCodeInvalidStructure, "tree must be aggregated before viewing")
	}
	v := &Viewer{
		tree:   t,
		memo:   treemap.NewMemo(treemap.DefaultMemoSize),
		focus:  t.Root(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Focus returns the directory currently filling the window.
func (v *Viewer) Focus() hierarchy.NodeID { return v.focus }

// Layout returns the most recent layout.
func (v *Viewer) Layout() treemap.Layout { return v.layout }

// Resize lays out the focus for a w x h window. Layout results for sizes
// already seen come from the memo, so calling Resize every frame is cheap.
// A changed size animates from the previous rectangles.
func (v *Viewer) Resize(w, h int) error {
	if w == v.width && h == v.height && v.layout.Cells != nil {
		return nil
	}
	v.width, v.height = w, h
	return v.relayout()
}

// ZoomIn focuses the directory under (x, y) that is a direct child of the
// current focus. It reports whether the focus changed.
func (v *Viewer) ZoomIn(x, y float64) bool {
	c, ok := v.layout.At(x, y)
	if !ok {
		return false
	}
	target := treemap.ZoomTarget(v.tree, v.focus, c.Node)
	if target == hierarchy.NoParent {
		return false
	}
	return v.setFocus(target)
}

// ZoomOut focuses the parent of the current focus. It reports whether the
// focus changed.
func (v *Viewer) ZoomOut() bool {
	p := v.tree.Parent(v.focus)
	if p == hierarchy.NoParent {
		return false
	}
	return v.setFocus(p)
}

// Home focuses the root.
func (v *Viewer) Home() bool {
	if v.focus == v.tree.Root() {
		return false
	}
	return v.setFocus(v.tree.Root())
}

// Hover returns the cell under (x, y).
func (v *Viewer) Hover(x, y float64) (treemap.Cell, bool) {
	return v.layout.At(x, y)
}

// Advance moves the running transition forward by dt seconds.
func (v *Viewer) Advance(dt float32) {
	if v.anim != nil && v.anim.advance(dt) {
		v.anim = nil
	}
}

// Animating reports whether a transition is in progress.
func (v *Viewer) Animating() bool { return v.anim != nil }

// Frame returns the rectangles to draw this frame, in layout cell order.
func (v *Viewer) Frame() []squarify.Rect {
	rects := make([]squarify.Rect, len(v.layout.Cells))
	for i, c := range v.layout.Cells {
		rects[i] = c.Rect
	}
	if v.anim != nil {
		v.anim.apply(rects)
	}
	return rects
}

func (v *Viewer) setFocus(id hierarchy.NodeID) bool {
	prev := v.focus
	v.focus = id
	if v.width > 0 && v.height > 0 {
		if err := v.relayout(); err != nil {
			v.logger.Error("layout failed", "focus", v.tree.Path(id), "err", err)
			v.focus = prev
			return false
		}
	}
	v.logger.Debug("zoom", "focus", v.tree.Path(id), "size", v.tree.Size(id))
	return true
}

func (v *Viewer) relayout() error {
	opts := append([]treemap.Option{}, v.opts...)
	opts = append(opts, treemap.WithFocus(v.focus), treemap.WithMemo(v.memo))
	next, err := treemap.Build(v.tree, squarify.Rect{W: float64(v.width), H: float64(v.height)}, opts...)
	if err != nil {
		return err
	}
	prev := v.layout
	v.layout = next
	if prev.Cells != nil {
		v.anim = newTransition(v.tree, prev, next)
	}
	return nil
}
