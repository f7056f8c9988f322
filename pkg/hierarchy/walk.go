package hierarchy

import (
	"cmp"
	"slices"
	"strings"
)

// SkipChildren may be returned by a [WalkFunc] to skip the children of the
// current node. The walk continues with the node's next sibling.
var SkipChildren = skipChildren{}

type skipChildren struct{}

func (skipChildren) Error() string { return "skip children" }

// WalkFunc is called for every visited node with its depth below the start
// node. Returning a non-nil error other than [SkipChildren] stops the walk.
type WalkFunc func(id NodeID, depth int) error

// Walk visits the subtree rooted at start in pre-order, children in
// insertion order. It returns the first error returned by fn, except
// [SkipChildren].
func (t *Tree) Walk(start NodeID, fn WalkFunc) error {
	if !t.valid(start) {
		return nil
	}
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{start, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := fn(f.id, f.depth); err != nil {
			if err == SkipChildren {
				continue
			}
			return err
		}
		children := t.nodes[f.id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], f.depth + 1})
		}
	}
	return nil
}

// SortedChildren returns the children of id ordered by size, largest first.
// Ties keep insertion order, and the result is deterministic for a given
// tree. This is the order treemap layout expects its weights in.
func (t *Tree) SortedChildren(id NodeID) []NodeID {
	children := t.Children(id)
	slices.SortStableFunc(children, func(a, b NodeID) int {
		return cmp.Compare(t.nodes[b].Size, t.nodes[a].Size)
	})
	return children
}

// Largest returns up to n leaves under start, largest first.
func (t *Tree) Largest(start NodeID, n int) []NodeID {
	var leaves []NodeID
	_ = t.Walk(start, func(id NodeID, _ int) error {
		if t.nodes[id].Leaf {
			leaves = append(leaves, id)
		}
		return nil
	})
	slices.SortStableFunc(leaves, func(a, b NodeID) int {
		if c := cmp.Compare(t.nodes[b].Size, t.nodes[a].Size); c != 0 {
			return c
		}
		return strings.Compare(t.nodes[a].Name, t.nodes[b].Name)
	})
	if n >= 0 && len(leaves) > n {
		leaves = leaves[:n]
	}
	return leaves
}
