package squarify

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/matzehuels/squaremap/pkg/errors"
)

const tol = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b))) }

func rectApprox(a, b Rect) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.W, b.W) && approx(a.H, b.H)
}

// checkTiling asserts the properties every layout must satisfy: areas
// proportional to weights, containment, no overlap and full coverage.
func checkTiling(t *testing.T, weights []float64, bounds Rect, rects []Rect) {
	t.Helper()
	if len(rects) != len(weights) {
		t.Fatalf("got %d rects for %d weights", len(rects), len(weights))
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	var covered float64
	for i, r := range rects {
		want := bounds.Area() * weights[i] / total
		if !approx(r.Area(), want) {
			t.Errorf("rect %d area = %g, want %g", i, r.Area(), want)
		}
		if !bounds.Contains(r) {
			t.Errorf("rect %d %v escapes bounds %v", i, r, bounds)
		}
		covered += r.Area()
	}
	if !approx(covered, bounds.Area()) {
		t.Errorf("covered area = %g, want %g", covered, bounds.Area())
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if ov := rects[i].Intersect(rects[j]).Area(); ov > tol {
				t.Errorf("rects %d %v and %d %v overlap by %g", i, rects[i], j, rects[j], ov)
			}
		}
	}
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name string
		row  []float64
		side float64
		want float64
	}{
		{"single square", []float64{16}, 4, 1},
		{"single wide", []float64{60000}, 400, 8.0 / 3.0},
		{"two items", []float64{60000, 60000}, 400, 1.5},
		{"empty row", nil, 4, math.Inf(1)},
		{"zero side", []float64{1}, 0, math.Inf(1)},
		{"zero item", []float64{1, 0}, 4, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Worst(tt.row, tt.side)
			if math.IsInf(tt.want, 1) {
				if !math.IsInf(got, 1) {
					t.Errorf("Worst() = %g, want +Inf", got)
				}
				return
			}
			if !approx(got, tt.want) {
				t.Errorf("Worst() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestWorstAtLeastOne(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		row := make([]float64, 1+rng.Intn(6))
		for j := range row {
			row[j] = 1 + rng.Float64()*100
		}
		if w := Worst(row, 1+rng.Float64()*50); w < 1-tol {
			t.Fatalf("Worst(%v) = %g < 1", row, w)
		}
	}
}

func TestSquarifyReferenceScenario(t *testing.T) {
	weights := []float64{6, 6, 4, 3, 2, 2, 1}
	bounds := Rect{W: 600, H: 400}

	rects, err := Squarify(weights, bounds)
	if err != nil {
		t.Fatalf("Squarify() error = %v", err)
	}
	checkTiling(t, weights, bounds, rects)

	wantAreas := []float64{60000, 60000, 40000, 30000, 20000, 20000, 10000}
	for i, r := range rects {
		if !approx(r.Area(), wantAreas[i]) {
			t.Errorf("rect %d area = %g, want %g", i, r.Area(), wantAreas[i])
		}
	}

	want := []Rect{
		{X: 0, Y: 0, W: 300, H: 200},
		{X: 0, Y: 200, W: 300, H: 200},
		{X: 300, Y: 0, W: 300 * 4.0 / 7.0, H: 70000.0 / 300.0},
		{X: 300 + 300*4.0/7.0, Y: 0, W: 300 * 3.0 / 7.0, H: 70000.0 / 300.0},
		{X: 300, Y: 70000.0 / 300.0, W: 120, H: 400 - 70000.0/300.0},
		{X: 420, Y: 70000.0 / 300.0, W: 120, H: 400 - 70000.0/300.0},
		{X: 540, Y: 70000.0 / 300.0, W: 60, H: 400 - 70000.0/300.0},
	}
	for i := range want {
		if !rectApprox(rects[i], want[i]) {
			t.Errorf("rect %d = %v, want %v", i, rects[i], want[i])
		}
	}
}

func TestSquarifyEqualWeightsSquare(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		bounds Rect
	}{
		{"nine in 3x3", 9, Rect{W: 3, H: 3}},
		{"four in 2x2", 4, Rect{W: 2, H: 2}},
		{"four offset", 4, Rect{X: 10, Y: 20, W: 100, H: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]float64, tt.n)
			for i := range weights {
				weights[i] = 1
			}
			rects, err := Squarify(weights, tt.bounds)
			if err != nil {
				t.Fatalf("Squarify() error = %v", err)
			}
			checkTiling(t, weights, tt.bounds, rects)
			for i, r := range rects {
				if ar := r.AspectRatio(); ar > 1+tol {
					t.Errorf("rect %d aspect ratio = %g, want 1", i, ar)
				}
			}
		})
	}
}

func TestSquarifySingleItem(t *testing.T) {
	bounds := Rect{X: 5, Y: 7, W: 600, H: 400}
	rects, err := Squarify([]float64{42}, bounds)
	if err != nil {
		t.Fatalf("Squarify() error = %v", err)
	}
	if len(rects) != 1 || rects[0] != bounds {
		t.Errorf("Squarify(single) = %v, want [%v]", rects, bounds)
	}
}

func TestSquarifyEmpty(t *testing.T) {
	rects, err := Squarify(nil, Rect{W: 10, H: 10})
	if err != nil || rects != nil {
		t.Errorf("Squarify(nil) = %v, %v, want nil, nil", rects, err)
	}
	// Empty input is valid even with degenerate bounds.
	rects, err = Squarify([]float64{}, Rect{})
	if err != nil || rects != nil {
		t.Errorf("Squarify(empty, zero bounds) = %v, %v", rects, err)
	}
}

func TestSquarifyZeroWeights(t *testing.T) {
	bounds := Rect{W: 100, H: 50}

	t.Run("mixed", func(t *testing.T) {
		weights := []float64{5, 3, 0, 0}
		rects, err := Squarify(weights, bounds)
		if err != nil {
			t.Fatalf("Squarify() error = %v", err)
		}
		checkTiling(t, weights, bounds, rects)
		for _, i := range []int{2, 3} {
			if rects[i].Area() != 0 {
				t.Errorf("rect %d area = %g, want 0", i, rects[i].Area())
			}
			if !bounds.Contains(rects[i]) {
				t.Errorf("zero rect %d %v outside bounds", i, rects[i])
			}
		}
	})

	t.Run("all zero", func(t *testing.T) {
		rects, err := Squarify([]float64{0, 0, 0}, Rect{X: 3, Y: 4, W: 100, H: 50})
		if err != nil {
			t.Fatalf("Squarify() error = %v", err)
		}
		for i, r := range rects {
			if r != (Rect{X: 3, Y: 4}) {
				t.Errorf("rect %d = %v, want zero rect at origin", i, r)
			}
		}
	})

	t.Run("all zero with zero bounds", func(t *testing.T) {
		if _, err := Squarify([]float64{0, 0}, Rect{}); err != nil {
			t.Errorf("Squarify() error = %v, want nil", err)
		}
	})
}

func TestSquarifyErrors(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		bounds  Rect
	}{
		{"negative weight", []float64{3, -1}, Rect{W: 10, H: 10}},
		{"nan weight", []float64{math.NaN()}, Rect{W: 10, H: 10}},
		{"inf weight", []float64{math.Inf(1), 1}, Rect{W: 10, H: 10}},
		{"zero width", []float64{1}, Rect{W: 0, H: 10}},
		{"zero height", []float64{1}, Rect{W: 10, H: 0}},
		{"negative bounds", []float64{1}, Rect{W: -10, H: 10}},
		{"nan bounds", []float64{1}, Rect{W: math.NaN(), H: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Squarify(tt.weights, tt.bounds)
			if !errors.Is(err, errors.ErrCodeInvalidArgument) {
				t.Errorf("Squarify() error = %v, want INVALID_ARGUMENT", err)
			}
		})
	}
}

func TestSquarifyRandomTiling(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		n := 1 + rng.Intn(40)
		weights := make([]float64, n)
		for i := range weights {
			weights[i] = 1 + rng.Float64()*1000
		}
		slices.SortFunc(weights, func(a, b float64) int {
			switch {
			case a > b:
				return -1
			case a < b:
				return 1
			}
			return 0
		})
		bounds := Rect{X: rng.Float64() * 10, Y: rng.Float64() * 10, W: 50 + rng.Float64()*900, H: 50 + rng.Float64()*900}

		rects, err := Squarify(weights, bounds)
		if err != nil {
			t.Fatalf("iter %d: Squarify() error = %v", iter, err)
		}
		checkTiling(t, weights, bounds, rects)
	}
}

func TestSquarifyDeterministic(t *testing.T) {
	weights := []float64{9, 7, 7, 5, 3, 2, 1, 1}
	bounds := Rect{W: 640, H: 480}
	a, _ := Squarify(weights, bounds)
	b, _ := Squarify(weights, bounds)
	if !slices.Equal(a, b) {
		t.Error("Squarify is not deterministic")
	}
}

func TestSquarifyUnsortedStillTiles(t *testing.T) {
	weights := []float64{1, 6, 2, 6, 3, 4, 2}
	bounds := Rect{W: 600, H: 400}
	rects, err := Squarify(weights, bounds)
	if err != nil {
		t.Fatalf("Squarify() error = %v", err)
	}
	checkTiling(t, weights, bounds, rects)
}

func TestSquarifyTallBounds(t *testing.T) {
	weights := []float64{6, 6, 4, 3, 2, 2, 1}
	bounds := Rect{W: 400, H: 600}
	rects, err := Squarify(weights, bounds)
	if err != nil {
		t.Fatalf("Squarify() error = %v", err)
	}
	checkTiling(t, weights, bounds, rects)
	// Transposing the bounds transposes the layout.
	wide, _ := Squarify(weights, Rect{W: 600, H: 400})
	for i := range rects {
		tr := Rect{X: wide[i].Y, Y: wide[i].X, W: wide[i].H, H: wide[i].W}
		if !rectApprox(rects[i], tr) {
			t.Errorf("rect %d = %v, want transpose %v", i, rects[i], tr)
		}
	}
}
