package window

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/squarify"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// TransitionDuration is the length of a zoom or resize animation in seconds.
const TransitionDuration float32 = 0.35

// transition interpolates every cell of a new layout from a starting
// rectangle derived from the previous layout.
type transition struct {
	tween    *gween.Tween
	progress float64
	from     []squarify.Rect
}

func newTransition(t *hierarchy.Tree, prev, next treemap.Layout) *transition {
	byNode := make(map[hierarchy.NodeID]squarify.Rect, len(prev.Cells))
	for _, c := range prev.Cells {
		byNode[c.Node] = c.Rect
	}
	from := make([]squarify.Rect, len(next.Cells))
	for i, c := range next.Cells {
		from[i] = startRect(t, byNode, c, next)
	}
	return &transition{
		tween: gween.New(0, 1, TransitionDuration, ease.OutCubic),
		from:  from,
	}
}

// startRect picks where a cell enters from: its own previous rectangle, the
// rectangle of its nearest drawn ancestor, or the point at the center of
// the frame when it was not visible before.
func startRect(t *hierarchy.Tree, prev map[hierarchy.NodeID]squarify.Rect, c treemap.Cell, next treemap.Layout) squarify.Rect {
	for n := c.Node; n != hierarchy.NoParent; n = t.Parent(n) {
		if r, ok := prev[n]; ok {
			return r
		}
	}
	return squarify.Rect{X: next.Width / 2, Y: next.Height / 2}
}

// advance steps the tween and reports whether it has finished.
func (tr *transition) advance(dt float32) bool {
	val, done := tr.tween.Update(dt)
	tr.progress = float64(val)
	return done
}

func (tr *transition) apply(rects []squarify.Rect) {
	for i := range rects {
		rects[i] = tr.from[i].Lerp(rects[i], tr.progress)
	}
}
