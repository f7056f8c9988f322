package treemap

import (
	"math"
	"testing"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/squarify"
)

// sampleTree builds
//
//	root
//	├── big (dir)
//	│   ├── x (6)
//	│   └── y (6)
//	├── f4 (4)
//	├── f3 (3)
//	├── mid (dir)
//	│   ├── p (2)
//	│   └── q (2)
//	├── f1 (1)
//	└── empty (dir)
func sampleTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tr := hierarchy.New()
	root, _ := tr.AddRoot("root")
	f1, _ := tr.AddFile(root, "f1", 1)
	_ = f1
	big, _ := tr.AddDir(root, "big")
	_, _ = tr.AddFile(big, "x", 6)
	_, _ = tr.AddFile(big, "y", 6)
	_, _ = tr.AddFile(root, "f4", 4)
	mid, _ := tr.AddDir(root, "mid")
	_, _ = tr.AddFile(mid, "p", 2)
	_, _ = tr.AddFile(mid, "q", 2)
	_, _ = tr.AddFile(root, "f3", 3)
	_, _ = tr.AddDir(root, "empty")
	hierarchy.Aggregate(tr)
	return tr
}

func cellByName(l Layout, name string) (Cell, bool) {
	for _, c := range l.Cells {
		if c.Name == name {
			return c, true
		}
	}
	return Cell{}, false
}

func TestBuildTopLevel(t *testing.T) {
	tr := sampleTree(t)
	bounds := squarify.Rect{W: 600, H: 400}

	l, err := Build(tr, bounds)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(l.Cells) != 6 {
		t.Fatalf("got %d cells, want 6", len(l.Cells))
	}
	if l.Total != 24 || l.Width != 600 || l.Height != 400 {
		t.Errorf("layout header = %+v", l)
	}

	// Cells come out in descending size order.
	wantOrder := []string{"big", "f4", "mid", "f3", "f1", "empty"}
	for i, name := range wantOrder {
		if l.Cells[i].Name != name {
			t.Errorf("cell %d = %s, want %s", i, l.Cells[i].Name, name)
		}
		if l.Cells[i].Index != i {
			t.Errorf("cell %d index = %d", i, l.Cells[i].Index)
		}
	}

	var area float64
	for _, c := range l.Cells {
		want := bounds.Area() * c.Size / l.Total
		if math.Abs(c.Rect.Area()-want) > 1e-6 {
			t.Errorf("%s area = %g, want %g", c.Name, c.Rect.Area(), want)
		}
		area += c.Rect.Area()
	}
	if math.Abs(area-bounds.Area()) > 1e-6 {
		t.Errorf("covered = %g, want %g", area, bounds.Area())
	}

	empty, _ := cellByName(l, "empty")
	if empty.Rect.Area() != 0 || empty.Leaf {
		t.Errorf("empty dir cell = %+v", empty)
	}
}

func TestBuildFullDepth(t *testing.T) {
	tr := sampleTree(t)
	bounds := squarify.Rect{W: 600, H: 400}

	l, err := Build(tr, bounds, WithDepth(0))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	leaves := 0
	var area float64
	for _, c := range l.Cells {
		if c.Leaf {
			leaves++
			area += c.Rect.Area()
		}
	}
	if leaves != 7 {
		t.Errorf("leaf cells = %d, want 7", leaves)
	}
	if math.Abs(area-bounds.Area()) > 1e-6 {
		t.Errorf("leaf area = %g, want %g", area, bounds.Area())
	}

	// Nested leaves sit inside their directory's share.
	x, _ := cellByName(l, "x")
	y, _ := cellByName(l, "y")
	if x.Depth != 2 || y.Depth != 2 {
		t.Errorf("nested depth = %d, %d, want 2", x.Depth, y.Depth)
	}
	top, _ := Build(tr, bounds)
	big, _ := cellByName(top, "big")
	if !big.Rect.Contains(x.Rect) || !big.Rect.Contains(y.Rect) {
		t.Errorf("children %v %v escape directory %v", x.Rect, y.Rect, big.Rect)
	}
}

func TestBuildMinArea(t *testing.T) {
	tr := sampleTree(t)
	l, err := Build(tr, squarify.Rect{W: 600, H: 400}, WithMinArea(20000))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	for _, c := range l.Cells {
		if c.Rect.Area() < 20000 {
			t.Errorf("cell %s area %g below minimum", c.Name, c.Rect.Area())
		}
	}
	if _, ok := cellByName(l, "f1"); ok {
		t.Error("f1 should be dropped")
	}
}

func TestBuildFocus(t *testing.T) {
	tr := sampleTree(t)
	big, _ := tr.Lookup("big")
	bounds := squarify.Rect{W: 100, H: 100}

	l, err := Build(tr, bounds, WithFocus(big))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if l.Focus != big || l.Total != 12 || l.Root != "root/big" {
		t.Errorf("layout header = %+v", l)
	}
	if len(l.Cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(l.Cells))
	}
	for _, c := range l.Cells {
		if math.Abs(c.Rect.Area()-5000) > 1e-6 {
			t.Errorf("%s area = %g, want 5000", c.Name, c.Rect.Area())
		}
	}

	leaf, _ := tr.Lookup("f4")
	l, err = Build(tr, bounds, WithFocus(leaf))
	if err != nil {
		t.Fatalf("Build(leaf focus) error = %v", err)
	}
	if len(l.Cells) != 1 || l.Cells[0].Rect != bounds {
		t.Errorf("leaf focus cells = %+v", l.Cells)
	}
}

func TestBuildErrors(t *testing.T) {
	unaggregated := hierarchy.New()
	root, _ := unaggregated.AddRoot("r")
	_, _ = unaggregated.AddFile(root, "f", 1)

	tests := []struct {
		name   string
		tree   *hierarchy.Tree
		bounds squarify.Rect
		opts   []Option
		code   errors.Code
	}{
		{"nil tree", nil, squarify.Rect{W: 10, H: 10}, nil, errors.ErrCodeInvalidStructure},
		{"empty tree", hierarchy.New(), squarify.Rect{W: 10, H: 10}, nil, errors.ErrCodeInvalidStructure},
		{"not aggregated", unaggregated, squarify.Rect{W: 10, H: 10}, nil, errors.ErrCodeInvalidStructure},
		{"zero bounds", sampleTree(t), squarify.Rect{}, nil, errors.ErrCodeInvalidArgument},
		{"negative depth", sampleTree(t), squarify.Rect{W: 10, H: 10}, []Option{WithDepth(-1)}, errors.ErrCodeInvalidArgument},
		{"unknown focus", sampleTree(t), squarify.Rect{W: 10, H: 10}, []Option{WithFocus(999)}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.tree, tt.bounds, tt.opts...)
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildDoesNotMutateTree(t *testing.T) {
	tr := sampleTree(t)
	before := make([]float64, tr.Len())
	for i := range before {
		before[i] = tr.Size(hierarchy.NodeID(i))
	}
	for i := 0; i < 3; i++ {
		if _, err := Build(tr, squarify.Rect{W: 300, H: 200}, WithDepth(0)); err != nil {
			t.Fatal(err)
		}
	}
	for i := range before {
		if tr.Size(hierarchy.NodeID(i)) != before[i] {
			t.Errorf("size of node %d changed", i)
		}
	}
}

func TestBuildPalette(t *testing.T) {
	tr := sampleTree(t)
	l, _ := Build(tr, squarify.Rect{W: 600, H: 400})
	for i, c := range l.Cells {
		if c.Color != RGB[i%3] {
			t.Errorf("cell %d color = %s, want %s", i, c.Color, RGB[i%3])
		}
	}

	l, _ = Build(tr, squarify.Rect{W: 600, H: 400}, WithDepth(0), WithPalette(Depth))
	x, _ := cellByName(l, "x")
	f4, _ := cellByName(l, "f4")
	if x.Color != Depth[2] || f4.Color != Depth[1] {
		t.Errorf("depth colors = %s, %s", x.Color, f4.Color)
	}
}

func TestLayoutAtAndStats(t *testing.T) {
	tr := sampleTree(t)
	l, _ := Build(tr, squarify.Rect{W: 600, H: 400})

	c, ok := l.At(1, 1)
	if !ok || c.Name != "big" {
		t.Errorf("At(1,1) = %+v, %v", c, ok)
	}
	if _, ok := l.At(-5, 1); ok {
		t.Error("At outside bounds should miss")
	}

	s := l.Stats()
	if s.Cells != 6 || s.EmptyCells != 1 {
		t.Errorf("Stats() = %+v", s)
	}
	if s.MaxAspectRatio < 1 || s.AvgAspectRatio < 1 || s.AvgAspectRatio > s.MaxAspectRatio {
		t.Errorf("aspect ratios = %+v", s)
	}
	if math.Abs(s.CoveredArea-240000) > 1e-6 {
		t.Errorf("CoveredArea = %g", s.CoveredArea)
	}
}

func TestZoomTarget(t *testing.T) {
	tr := sampleTree(t)
	root := tr.Root()
	big, _ := tr.Lookup("big")
	x, _ := tr.Lookup("big/x")
	f4, _ := tr.Lookup("f4")

	if got := ZoomTarget(tr, root, x); got != big {
		t.Errorf("ZoomTarget(root, x) = %d, want %d", got, big)
	}
	if got := ZoomTarget(tr, root, f4); got != hierarchy.NoParent {
		t.Errorf("ZoomTarget(root, leaf child) = %d, want NoParent", got)
	}
	if got := ZoomTarget(tr, big, f4); got != hierarchy.NoParent {
		t.Errorf("ZoomTarget(big, f4) = %d, want NoParent", got)
	}
}

func TestLookupPalette(t *testing.T) {
	for _, name := range PaletteNames() {
		if _, err := LookupPalette(name); err != nil {
			t.Errorf("LookupPalette(%q) error = %v", name, err)
		}
	}
	if p, err := LookupPalette(""); err != nil || p.Color(0, 0) != RGB[0] {
		t.Errorf("LookupPalette(\"\") = %v, %v", p, err)
	}
	if _, err := LookupPalette("nope"); err == nil {
		t.Error("LookupPalette(nope) should fail")
	}
}
