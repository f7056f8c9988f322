// Package io provides JSON import and export for size trees.
//
// # Overview
//
// A scan of a large directory can take a while. This package writes the
// resulting [hierarchy.Tree] to a snapshot file so that layouts and renders
// can be produced later, on another machine, or by external tools, without
// touching the filesystem again.
//
// # JSON Format
//
// The snapshot is a flat list of nodes in arena order. Every node names its
// parent by index, and parents always precede their children:
//
//	{
//	  "root": "/srv/data",
//	  "aggregated": true,
//	  "nodes": [
//	    {"name": "/srv/data", "parent": -1},
//	    {"name": "logs", "parent": 0},
//	    {"name": "app.log", "parent": 1, "leaf": true, "size": 4096}
//	  ]
//	}
//
// Directory sizes are written when the tree was aggregated, as a convenience
// for external readers. They are ignored on import: [ReadJSON] rebuilds the
// tree through [hierarchy.Tree.AddNode], so every structural rule is checked
// again, and re-aggregates it when the snapshot says it was aggregated.
//
// # Import
//
//	t, err := io.ImportJSON("tree.json")
//
// # Export
//
//	err := io.ExportJSON(t, "tree.json")
package io
