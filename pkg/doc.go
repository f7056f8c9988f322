// Package pkg provides the core libraries for squaremap disk-usage treemaps.
//
// # Overview
//
// Squaremap turns a directory tree into a squarified treemap: every file is
// a rectangle whose area is proportional to its size, nested inside the
// rectangles of its directories. The pkg directory is organized into:
//
//  1. [hierarchy] - The size tree (arena of nodes, aggregation, verification)
//  2. [squarify] - The squarified treemap algorithm over a weight sequence
//  3. [treemap] - Nested layouts, palettes and the squarify memo
//  4. [scan] and [io] - Building trees from disk and from JSON snapshots
//  5. [render] - SVG/PNG/PDF/JSON sinks, terminal and window front ends
//  6. [pipeline] - Orchestration (scan → layout → render) with caching
//  7. [cache], [config], [observability], [errors], [buildinfo] - Infrastructure
//
// # Architecture
//
//	Directory or snapshot
//	         ↓
//	    [scan] / [io] (build the tree)
//	         ↓
//	    [hierarchy] (aggregate sizes, verify)
//	         ↓
//	    [treemap] + [squarify] (lay out cells)
//	         ↓
//	    [render] (SVG/PDF/PNG/JSON, terminal, window)
//
// # Quick Start
//
//	res, err := scan.Dir(ctx, "/var/log", scan.Options{})
//	if err != nil {
//	    return err
//	}
//	hierarchy.Aggregate(res.Tree)
//
//	l, err := treemap.Build(res.Tree, squarify.Rect{W: 800, H: 600})
//	if err != nil {
//	    return err
//	}
//	svg := sink.RenderSVG(l, sink.WithTitles())
//
// Most applications should use [pipeline.Runner] instead, which adds
// validation, defaults and caching.
package pkg
