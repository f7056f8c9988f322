// Package squarify partitions a rectangle into sub-rectangles whose areas
// are proportional to a sequence of weights.
//
// # Algorithm
//
// [Squarify] implements the squarified treemap layout of Bruls, Huizing and
// van Wijk. Weights are first scaled to pixel areas so that they sum to the
// area of the bounds. Items are then packed greedily into rows laid along the
// short side of the remaining rectangle: an item joins the current row as
// long as doing so does not make the row's worst aspect ratio ([Worst])
// larger. When it would, the row is fixed in place, the remaining rectangle
// shrinks by the row's thickness, and the same item starts a new row.
//
// A row in a rectangle that is wider than tall becomes a column on its left
// edge; otherwise it becomes a strip along its top edge. Both orientations
// are handled identically. The last item of every row and the last row of
// the layout snap to the far edge, so the output tiles the bounds exactly.
//
// # Input Order
//
// The aspect ratio guarantee holds for weights sorted in descending order.
// Squarify does not reorder its input; callers sort first, for example with
// [Order], and map results back through the permutation.
//
// # Degenerate Input
//
// Zero weights produce zero-area rectangles positioned at the origin of the
// remaining rectangle and never take part in a row. An empty weight sequence
// yields no rectangles. If every weight is zero, every rectangle is a
// zero-area rectangle at the bounds origin. Negative or non-finite weights,
// and zero-area bounds for a nonzero total, are INVALID_ARGUMENT errors.
package squarify
