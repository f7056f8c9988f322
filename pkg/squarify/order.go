package squarify

import (
	"cmp"
	"slices"
)

// SortedDescending reports whether weights are in non-increasing order.
func SortedDescending(weights []float64) bool {
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[i-1] {
			return false
		}
	}
	return true
}

// Order returns the permutation that sorts weights in descending order.
// Equal weights keep their relative input order.
//
//	perm := squarify.Order(ws)
//	sorted := squarify.Permute(ws, perm)
//	rects, _ := squarify.Squarify(sorted, bounds)
//	// rects[k] belongs to ws[perm[k]]
func Order(weights []float64) []int {
	perm := make([]int, len(weights))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		return cmp.Compare(weights[b], weights[a])
	})
	return perm
}

// Permute returns weights reordered by perm.
func Permute(weights []float64, perm []int) []float64 {
	out := make([]float64, len(perm))
	for k, i := range perm {
		out[k] = weights[i]
	}
	return out
}

// SquarifySorted sorts weights, lays them out and returns the rectangles in
// the original input order.
func SquarifySorted(weights []float64, bounds Rect) ([]Rect, error) {
	perm := Order(weights)
	rects, err := Squarify(Permute(weights, perm), bounds)
	if err != nil || rects == nil {
		return rects, err
	}
	out := make([]Rect, len(weights))
	for k, i := range perm {
		out[i] = rects[k]
	}
	return out, nil
}
