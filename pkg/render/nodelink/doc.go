// Package nodelink renders a size tree as a node-link diagram.
//
// # Overview
//
// Where a treemap shows how much space each entry takes, a node-link diagram
// shows how entries nest. Directories appear as folders connected to their
// children by arrows, laid out left to right by Graphviz.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(t, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// Large trees produce unreadable diagrams, so [ToDOT] stops at
// [DefaultMaxDepth] levels unless [Options.MaxDepth] says otherwise.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering (Graphviz compiled to WebAssembly), so no system Graphviz is
// needed. PDF and PNG conversion go through rsvg-convert.
package nodelink
