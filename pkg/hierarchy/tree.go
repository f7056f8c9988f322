package hierarchy

import (
	"slices"
	"strings"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// NodeID is a stable handle to a node in a [Tree]. IDs are assigned in
// insertion order starting at zero, so the root is always 0 and a child's ID
// is always greater than its parent's.
type NodeID int

// NoParent is the parent ID of the root node.
const NoParent NodeID = -1

var (
	// ErrSecondRoot is returned by [Tree.AddNode] when a root already exists.
	ErrSecondRoot = errors.New(errors.ErrCodeInvalidStructure, "tree already has a root")

	// ErrUnknownParent is returned by [Tree.AddNode] when the parent ID does
	// not name an existing node.
	ErrUnknownParent = errors.New(errors.ErrCodeInvalidStructure, "parent node does not exist")

	// ErrLeafParent is returned by [Tree.AddNode] when the parent is a leaf.
	ErrLeafParent = errors.New(errors.ErrCodeInvalidStructure, "parent node is a leaf")

	// ErrSealed is returned by [Tree.AddNode] after [Aggregate] has run.
	ErrSealed = errors.New(errors.ErrCodeInvalidStructure, "tree is read-only after aggregation")
)

// Node is one filesystem entry.
type Node struct {
	Name     string   // Display identifier (basename, or the scanned path for the root)
	Size     float64  // Byte size for leaves, aggregated total for directories
	Leaf     bool     // Fixed at creation: files are leaves, directories are not
	Parent   NodeID   // NoParent for the root
	Children []NodeID // Ordered owned children
}

// Tree is an arena of nodes with a single root.
//
// The zero value is an empty tree ready for use.
type Tree struct {
	nodes      []Node
	aggregated bool
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// AddNode appends a node under parent and returns its ID.
//
// Passing [NoParent] creates the root; this fails with [ErrSecondRoot] when
// the tree already has one. For any other parent the node becomes the last
// child of parent, which must exist ([ErrUnknownParent]) and must not be a
// leaf ([ErrLeafParent]). Names must be non-empty and leaf sizes finite and
// non-negative (INVALID_ARGUMENT). The size of a directory starts at zero
// regardless of the size argument and is filled in by [Aggregate].
func (t *Tree) AddNode(parent NodeID, name string, leaf bool, size float64) (NodeID, error) {
	if t.aggregated {
		return NoParent, ErrSealed
	}
	if err := errors.ValidateNodeName(name); err != nil {
		return NoParent, err
	}
	if leaf {
		if err := errors.ValidateSize(size); err != nil {
			return NoParent, errors.Wrap(errors.ErrCodeInvalidArgument, err, "leaf %q", name)
		}
	} else {
		size = 0
	}

	if parent == NoParent {
		if len(t.nodes) > 0 {
			return NoParent, ErrSecondRoot
		}
	} else {
		if !t.valid(parent) {
			return NoParent, ErrUnknownParent
		}
		if t.nodes[parent].Leaf {
			return NoParent, ErrLeafParent
		}
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Name:   name,
		Size:   size,
		Leaf:   leaf,
		Parent: parent,
	})
	if parent != NoParent {
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	return id, nil
}

// AddRoot creates the root directory.
func (t *Tree) AddRoot(name string) (NodeID, error) {
	return t.AddNode(NoParent, name, false, 0)
}

// AddDir appends a directory under parent.
func (t *Tree) AddDir(parent NodeID, name string) (NodeID, error) {
	return t.AddNode(parent, name, false, 0)
}

// AddFile appends a file of the given byte size under parent.
func (t *Tree) AddFile(parent NodeID, name string, size float64) (NodeID, error) {
	return t.AddNode(parent, name, true, size)
}

// Root returns the root ID, or [NoParent] if the tree is empty.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return NoParent
	}
	return 0
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Aggregated reports whether [Aggregate] has run. Directory sizes are only
// meaningful once it returns true.
func (t *Tree) Aggregated() bool { return t.aggregated }

// Node returns a copy of the node with the given ID.
// The Children slice is shared with the tree and must not be modified.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Name returns the node's name, or "" for an unknown ID.
func (t *Tree) Name(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].Name
}

// Size returns the node's size, or 0 for an unknown ID.
func (t *Tree) Size(id NodeID) float64 {
	if !t.valid(id) {
		return 0
	}
	return t.nodes[id].Size
}

// IsLeaf reports whether id is a leaf.
func (t *Tree) IsLeaf(id NodeID) bool {
	return t.valid(id) && t.nodes[id].Leaf
}

// Parent returns the parent ID, or [NoParent] for the root or an unknown ID.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoParent
	}
	return t.nodes[id].Parent
}

// Children returns a copy of the ordered child IDs.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return slices.Clone(t.nodes[id].Children)
}

// ChildCount returns the number of children of id.
func (t *Tree) ChildCount(id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	return len(t.nodes[id].Children)
}

// Leaves returns the IDs of all leaves in insertion order.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	for i := range t.nodes {
		if t.nodes[i].Leaf {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Depth returns the number of edges between id and the root, or -1 for an
// unknown ID.
func (t *Tree) Depth(id NodeID) int {
	if !t.valid(id) {
		return -1
	}
	d := 0
	for p := t.nodes[id].Parent; p != NoParent; p = t.nodes[p].Parent {
		d++
	}
	return d
}

// Path returns the names from the root down to id joined by "/".
// The root's own name is included as the first element.
func (t *Tree) Path(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	var parts []string
	for n := id; n != NoParent; n = t.nodes[n].Parent {
		parts = append(parts, t.nodes[n].Name)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Lookup finds a node by its slash-separated path relative to the root.
// An empty path returns the root.
func (t *Tree) Lookup(rel string) (NodeID, bool) {
	cur := t.Root()
	if cur == NoParent {
		return NoParent, false
	}
	for _, part := range strings.Split(rel, "/") {
		if part == "" || part == "." {
			continue
		}
		next := NoParent
		for _, c := range t.nodes[cur].Children {
			if t.nodes[c].Name == part {
				next = c
				break
			}
		}
		if next == NoParent {
			return NoParent, false
		}
		cur = next
	}
	return cur, true
}

// Counts returns the number of directories and files.
func (t *Tree) Counts() (dirs, files int) {
	for i := range t.nodes {
		if t.nodes[i].Leaf {
			files++
		} else {
			dirs++
		}
	}
	return dirs, files
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}
