// Package hierarchy provides the size tree that backs every treemap.
//
// # Overview
//
// A [Tree] mirrors a filesystem subtree: directories are interior nodes and
// files are leaves carrying a byte size. Nodes live in an arena and are
// addressed by a stable [NodeID]; each node stores the ID of its single
// parent ([NoParent] for the root) and the ordered IDs of its children.
// Nodes are never removed, so IDs stay valid for the lifetime of the tree.
//
// # Building
//
// Create a tree with [New] and append nodes top-down with [Tree.AddNode] or
// the [Tree.AddRoot], [Tree.AddDir] and [Tree.AddFile] helpers. A parent must
// exist before its children, which makes the structure acyclic by
// construction:
//
//	t := hierarchy.New()
//	root, _ := t.AddRoot("/srv")
//	logs, _ := t.AddDir(root, "logs")
//	_, _ = t.AddFile(logs, "app.log", 4096)
//
// # Aggregation
//
// Directory sizes are zero until [Aggregate] runs. It visits the tree once in
// post-order and stores in every directory the sum of its children, so the
// root ends up holding the total of all leaves. Aggregation seals the tree:
// later calls to [Tree.AddNode] fail with an INVALID_STRUCTURE error, and
// the sizes stay fixed for every layout pass that follows.
//
// [Verify] recomputes the leaf total independently and reports any disparity
// between it and the aggregated root, together with the first directory whose
// size does not match its children.
//
// # Concurrency
//
// A Tree is not safe for concurrent mutation. Once aggregated it is
// read-only, and any number of goroutines may read it at the same time.
package hierarchy
