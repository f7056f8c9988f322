package squarify

import (
	"math"

	"github.com/matzehuels/squaremap/pkg/errors"
)

// Worst returns the worst aspect ratio of a row of areas laid along a side
// of the given length. For each area a in a row with sum s the ratio is
// max(side²·a/s², s²/(side²·a)); the result is the maximum over the row and
// is at least 1. Degenerate input (an empty row, a non-positive side, sum or
// area) yields +Inf.
func Worst(row []float64, side float64) float64 {
	if len(row) == 0 || side <= 0 {
		return math.Inf(1)
	}
	var s float64
	for _, a := range row {
		s += a
	}
	if s <= 0 {
		return math.Inf(1)
	}
	side2 := side * side
	s2 := s * s
	worst := 0.0
	for _, a := range row {
		if a <= 0 {
			return math.Inf(1)
		}
		worst = math.Max(worst, math.Max(side2*a/s2, s2/(side2*a)))
	}
	return worst
}

// Squarify returns one rectangle per weight, in input order, tiling bounds.
// Each rectangle's area is weight/total of the bounds area.
//
// Weights should be sorted in descending order; see the package
// documentation for the behavior on zero and invalid weights.
func Squarify(weights []float64, bounds Rect) ([]Rect, error) {
	if len(weights) == 0 {
		return nil, nil
	}

	var total float64
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "weight %d is not finite: %v", i, w)
		}
		if w < 0 {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "weight %d is negative: %g", i, w)
		}
		total += w
	}

	out := make([]Rect, len(weights))
	if total == 0 {
		for i := range out {
			out[i] = Rect{X: bounds.X, Y: bounds.Y}
		}
		return out, nil
	}
	if !(bounds.W > 0 && bounds.H > 0) || math.IsInf(bounds.W, 0) || math.IsInf(bounds.H, 0) {
		return nil, errors.New(errors.ErrCodeInvalidArgument,
			"bounds %v have no area for total weight %g", bounds, total)
	}

	pixelScale := bounds.Area() / total
	areas := make([]float64, len(weights))
	for i, w := range weights {
		areas[i] = w * pixelScale
	}

	pack(out, areas, bounds)
	return out, nil
}

// pack runs the greedy row loop. Row state lives in locals: the indices and
// areas of the row in progress and the rectangle not yet covered.
func pack(out []Rect, areas []float64, remaining Rect) {
	var (
		rowIdx   []int
		rowAreas []float64
		scratch  []float64
	)

	for i := 0; i < len(areas); {
		a := areas[i]
		if a == 0 {
			out[i] = Rect{X: remaining.X, Y: remaining.Y}
			i++
			continue
		}

		side := remaining.ShortSide()
		if len(rowIdx) > 0 {
			scratch = append(append(scratch[:0], rowAreas...), a)
			if Worst(scratch, side) > Worst(rowAreas, side) {
				remaining = layoutRow(out, rowIdx, rowAreas, remaining, false)
				rowIdx = rowIdx[:0]
				rowAreas = rowAreas[:0]
				continue // retry the same item against the new row
			}
		}
		rowIdx = append(rowIdx, i)
		rowAreas = append(rowAreas, a)
		i++
	}

	if len(rowIdx) > 0 {
		layoutRow(out, rowIdx, rowAreas, remaining, true)
	}
}

// layoutRow places a finished row along the short side of remaining and
// returns the rectangle left over. When last is set the row absorbs all of
// remaining so accumulated rounding never leaves a gap.
func layoutRow(out []Rect, idx []int, areas []float64, remaining Rect, last bool) Rect {
	var rowArea float64
	for _, a := range areas {
		rowArea += a
	}

	if remaining.Wide() {
		// Column at the left edge.
		thickness := rowArea / remaining.H
		if last || thickness > remaining.W {
			thickness = remaining.W
		}
		y := remaining.Y
		end := remaining.MaxY()
		for k, i := range idx {
			h := remaining.H * areas[k] / rowArea
			if k == len(idx)-1 {
				h = end - y
			}
			out[i] = Rect{X: remaining.X, Y: y, W: thickness, H: h}
			y += h
		}
		return Rect{X: remaining.X + thickness, Y: remaining.Y, W: remaining.W - thickness, H: remaining.H}
	}

	// Strip at the top edge.
	thickness := rowArea / remaining.W
	if last || thickness > remaining.H {
		thickness = remaining.H
	}
	x := remaining.X
	end := remaining.MaxX()
	for k, i := range idx {
		w := remaining.W * areas[k] / rowArea
		if k == len(idx)-1 {
			w = end - x
		}
		out[i] = Rect{X: x, Y: remaining.Y, W: w, H: thickness}
		x += w
	}
	return Rect{X: remaining.X, Y: remaining.Y + thickness, W: remaining.W, H: remaining.H - thickness}
}
