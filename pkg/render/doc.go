// Package render provides output rendering for treemaps and size trees.
//
// # Overview
//
// This package contains the frame renderers that turn a computed
// [treemap.Layout] into something a person can look at. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - File sinks for layouts (in [sink] subpackage)
//   - Cell styles and palettes (in [styles] subpackage)
//   - Node-link diagrams of the directory tree (in [nodelink] subpackage)
//   - A terminal rasterizer (in [term] subpackage)
//   - A native window frame loop (in [window] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). They are used by both the
// treemap sinks and the node-link renderer.
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [treemap.Layout]: github.com/matzehuels/squaremap/pkg/treemap.Layout
// [sink]: github.com/matzehuels/squaremap/pkg/render/sink
// [styles]: github.com/matzehuels/squaremap/pkg/render/styles
// [nodelink]: github.com/matzehuels/squaremap/pkg/render/nodelink
// [term]: github.com/matzehuels/squaremap/pkg/render/term
// [window]: github.com/matzehuels/squaremap/pkg/render/window
package render
