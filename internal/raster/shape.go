package raster

import (
	"math"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// curveSteps is the number of line segments a Bézier curve is flattened into.
const curveSteps = 16

// polygon is a closed outline in local coordinates.
type polygon []geometry.Point

// polyline is an open or closed run of points produced by flattening a path.
type polyline struct {
	pts    []geometry.Point
	closed bool
}

func rectPolygon(w, h float64) polygon {
	return polygon{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// ellipsePolygon returns an ellipse traced clockwise in y-up terms, matching
// the winding of strokeOutline.
func ellipsePolygon(cx, cy, rx, ry float64) polygon {
	const n = 64
	out := make(polygon, n)
	for i := range n {
		t := -2 * math.Pi * float64(i) / n
		out[i] = geometry.Point{X: cx + rx*math.Cos(t), Y: cy + ry*math.Sin(t)}
	}
	return out
}

// flatten converts a parsed path into polylines.
func flatten(p geometry.Path) []polyline {
	var out []polyline
	var cur polyline
	var pen, start geometry.Point

	flush := func() {
		if len(cur.pts) > 1 {
			out = append(out, cur)
		}
		cur = polyline{}
	}

	for _, seg := range p {
		switch seg.Op {
		case 'M':
			flush()
			pen, start = seg.Pts[0], seg.Pts[0]
			cur.pts = append(cur.pts, pen)
		case 'L':
			if len(cur.pts) == 0 {
				cur.pts = append(cur.pts, pen)
			}
			pen = seg.Pts[0]
			cur.pts = append(cur.pts, pen)
		case 'Q':
			if len(cur.pts) == 0 {
				cur.pts = append(cur.pts, pen)
			}
			c, end := seg.Pts[0], seg.Pts[1]
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur.pts = append(cur.pts, geometry.Point{
					X: u*u*pen.X + 2*u*t*c.X + t*t*end.X,
					Y: u*u*pen.Y + 2*u*t*c.Y + t*t*end.Y,
				})
			}
			pen = end
		case 'C':
			if len(cur.pts) == 0 {
				cur.pts = append(cur.pts, pen)
			}
			c1, c2, end := seg.Pts[0], seg.Pts[1], seg.Pts[2]
			for i := 1; i <= curveSteps; i++ {
				t := float64(i) / curveSteps
				u := 1 - t
				cur.pts = append(cur.pts, geometry.Point{
					X: u*u*u*pen.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*pen.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			pen = end
		case 'Z':
			cur.closed = true
			pen = start
			flush()
		}
	}
	flush()
	return out
}

// strokeOutline returns polygons covering a stroke of the given width along
// pl, with round joins and caps. Every polygon shares one winding so that
// overlaps do not cancel under the rasterizer's accumulation.
func strokeOutline(pl polyline, width float64) []polygon {
	hw := width / 2
	if hw <= 0 || len(pl.pts) == 0 {
		return nil
	}

	pts := pl.pts
	if pl.closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
		pts = append(pts[:len(pts):len(pts)], pts[0])
	}

	var out []polygon
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		out = append(out, polygon{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		})
	}
	for _, p := range pts {
		out = append(out, ellipsePolygon(p.X, p.Y, hw, hw))
	}
	return out
}

// fillPolygons returns the closed polygons of every polyline.
func fillPolygons(lines []polyline) []polygon {
	out := make([]polygon, 0, len(lines))
	for _, l := range lines {
		if len(l.pts) > 2 {
			out = append(out, polygon(l.pts))
		}
	}
	return out
}
