// Package geometry converts between the three coordinate spaces of the editor:
// screen space (viewport pixels), overlay space (unscaled annotation canvas units,
// origin at the page top-left) and PDF space (points, origin at the page bottom-left).
package geometry

import "math"

// Point is a location in any of the three coordinate spaces.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Rect is an axis-aligned rectangle described by its top-left corner and size.
// In PDF space Top holds the bottom edge, since the y-axis points up.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge in overlay space.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Union returns the smallest rectangle containing both r and o.
// A zero-sized rectangle with no position is treated as empty.
func (r Rect) Union(o Rect) Rect {
	if r == (Rect{}) {
		return o
	}
	if o == (Rect{}) {
		return r
	}
	left := math.Min(r.Left, o.Left)
	top := math.Min(r.Top, o.Top)
	right := math.Max(r.Right(), o.Right())
	bottom := math.Max(r.Bottom(), o.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Contains reports whether p lies inside r in overlay space.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right() && p.Y >= r.Top && p.Y <= r.Bottom()
}

// Scale returns r with every component multiplied by s.
func (r Rect) Scale(s float64) Rect {
	return Rect{Left: r.Left * s, Top: r.Top * s, Width: r.Width * s, Height: r.Height * s}
}

// ApproxEqual reports whether two rectangles match within tol on every component.
func (r Rect) ApproxEqual(o Rect, tol float64) bool {
	return math.Abs(r.Left-o.Left) <= tol &&
		math.Abs(r.Top-o.Top) <= tol &&
		math.Abs(r.Width-o.Width) <= tol &&
		math.Abs(r.Height-o.Height) <= tol
}

// Size is a width and height pair, used for page point dimensions and canvas pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
