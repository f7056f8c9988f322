// Package sink turns a computed [treemap.Layout] into an output document.
//
//   - SVG: one rect per cell, styled by a [styles.Style]
//   - JSON: positioned cells for external tools
//   - PDF and PNG: converted from SVG (requires rsvg-convert)
//
// Basic usage:
//
//	svg := sink.RenderSVG(l,
//	    sink.WithStyle(styles.Cushion{}),
//	    sink.WithTitles(),
//	)
//
// [RenderPDF] and [RenderPNG] accept the same SVG options through
// [WithPDFSVGOptions] and [WithPNGSVGOptions]. The conversion helpers are
// shared with the node-link renderer.
//
// [treemap.Layout]: github.com/matzehuels/squaremap/pkg/treemap.Layout
// [styles.Style]: github.com/matzehuels/squaremap/pkg/render/styles.Style
package sink
