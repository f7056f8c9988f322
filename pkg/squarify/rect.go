package squarify

import (
	"fmt"
	"math"
)

// eps is the tolerance used when comparing coordinates.
const eps = 1e-9

// Rect is an axis-aligned rectangle. X grows to the right and Y grows
// downward, matching screen and SVG coordinates.
type Rect struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	W float64 `json:"w" bson:"w"`
	H float64 `json:"h" bson:"h"`
}

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Wide reports whether the rectangle is strictly wider than tall.
func (r Rect) Wide() bool { return r.W > r.H }

// ShortSide returns the length of the shorter side.
func (r Rect) ShortSide() float64 { return math.Min(r.W, r.H) }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= eps || r.H <= eps }

// AspectRatio returns long side / short side, which is at least 1, or +Inf
// for an empty rectangle.
func (r Rect) AspectRatio() float64 {
	if r.Empty() {
		return math.Inf(1)
	}
	return math.Max(r.W, r.H) / math.Min(r.W, r.H)
}

// Contains reports whether o lies inside r, within eps.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.MaxX() <= r.MaxX()+eps && o.MaxY() <= r.MaxY()+eps
}

// ContainsPoint reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive so adjacent rectangles never both claim a point.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x < r.MaxX() && y >= r.Y && y < r.MaxY()
}

// Intersect returns the overlap of r and o, or the zero Rect if they do not
// overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.MaxX(), o.MaxX())
	y1 := math.Min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inset shrinks the rectangle by d on every side, clamping at zero size.
func (r Rect) Inset(d float64) Rect {
	w := math.Max(0, r.W-2*d)
	h := math.Max(0, r.H-2*d)
	return Rect{X: r.X + (r.W-w)/2, Y: r.Y + (r.H-h)/2, W: w, H: h}
}

// Lerp interpolates between r and o; t=0 yields r and t=1 yields o.
func (r Rect) Lerp(o Rect, t float64) Rect {
	return Rect{
		X: r.X + (o.X-r.X)*t,
		Y: r.Y + (o.Y-r.Y)*t,
		W: r.W + (o.W-r.W)*t,
		H: r.H + (o.H-r.H)*t,
	}
}

// String formats the rectangle as WxH+X+Y.
func (r Rect) String() string {
	return fmt.Sprintf("%gx%g+%g+%g", r.W, r.H, r.X, r.Y)
}
