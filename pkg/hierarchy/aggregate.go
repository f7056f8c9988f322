package hierarchy

import (
	"fmt"
	"math"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// Aggregate fills in directory sizes and seals the tree. It returns the
// root's size, which equals the sum of all leaf sizes.
//
// The traversal is a single post-order pass driven by an explicit stack, so
// trees of any depth are handled without recursion. Each directory is reset
// to zero when first reached and then receives the sum of its children's
// finalized sizes, which makes a second call produce the same result as the
// first. Leaves are never written.
//
// Aggregate panics if the tree has no root.
func Aggregate(t *Tree) float64 {
	root := t.Root()
	if root == NoParent {
		panic("hierarchy: Aggregate called on a tree without a root")
	}

	type frame struct {
		id   NodeID
		next int // index of the next child to descend into
	}

	stack := []frame{{id: root}}
	if !t.nodes[root].Leaf {
		t.nodes[root].Size = 0
	}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := &t.nodes[top.id]
		if top.next < len(n.Children) {
			child := n.Children[top.next]
			top.next++
			if !t.nodes[child].Leaf {
				t.nodes[child].Size = 0
				stack = append(stack, frame{id: child})
			}
			continue
		}

		// All children finalized.
		if !n.Leaf {
			var sum float64
			for _, c := range n.Children {
				sum += t.nodes[c].Size
			}
			n.Size = sum
		}
		stack = stack[:len(stack)-1]
	}

	t.aggregated = true
	return t.nodes[root].Size
}

// Report summarizes a [Verify] pass.
type Report struct {
	RootSize    float64 // Aggregated size of the root
	LeafTotal   float64 // Independently accumulated sum of all leaf sizes
	Disparity   float64 // RootSize - LeafTotal
	Directories int
	Files       int
}

// String formats the report for logs.
func (r Report) String() string {
	return fmt.Sprintf("root=%g leaves=%g disparity=%g dirs=%d files=%d",
		r.RootSize, r.LeafTotal, r.Disparity, r.Directories, r.Files)
}

// tolerance bounds the relative floating point drift accepted by Verify.
const tolerance = 1e-9

// Verify checks an aggregated tree. It recomputes the leaf total without
// looking at directory sizes and compares every directory against the sum of
// its children. The returned report is filled in even when an error is
// returned; the error names the first inconsistent directory.
func Verify(t *Tree) (Report, error) {
	var r Report
	if t.Root() == NoParent {
		return r, errors.New(errors.ErrCodeInvalidStructure, "tree has no root")
	}
	if !t.aggregated {
		return r, errors.New(errors.ErrCodeInvalidStructure, "tree has not been aggregated")
	}

	var firstErr error
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.Leaf {
			r.Files++
			r.LeafTotal += n.Size
			continue
		}
		r.Directories++
		var sum float64
		for _, c := range n.Children {
			sum += t.nodes[c].Size
		}
		if firstErr == nil && !approxEqual(sum, n.Size) {
			firstErr = errors.New(errors.ErrCodeInvalidStructure,
				"directory %q holds %g but its children sum to %g", t.Path(NodeID(i)), n.Size, sum)
		}
	}

	r.RootSize = t.nodes[t.Root()].Size
	r.Disparity = r.RootSize - r.LeafTotal
	if firstErr == nil && !approxEqual(r.RootSize, r.LeafTotal) {
		firstErr = errors.New(errors.ErrCodeInvalidStructure,
			"root holds %g but leaves sum to %g", r.RootSize, r.LeafTotal)
	}
	return r, firstErr
}

func approxEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= tolerance*scale
}
