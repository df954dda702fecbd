package geometry

import "math"

const (
	// MinZoom is the smallest zoom percentage the editor allows.
	MinZoom = 50.0

	// MaxZoom is the largest zoom percentage the editor allows.
	MaxZoom = 200.0

	// DefaultZoom is the zoom percentage of a freshly opened document.
	DefaultZoom = 100.0
)

// ClampZoom limits a zoom percentage to [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

// StepZoom applies a relative zoom change, as produced by a pinch gesture or a
// ctrl-scroll, and clamps the result.
func StepZoom(zoom, delta float64) float64 {
	return ClampZoom(zoom + delta)
}

// ScreenToOverlayOrigin returns the overlay-space point at the visible top-left
// corner of the scrollable viewport. Both rectangles are in screen space. When
// the page top-left is visible the origin is clamped to {0, 0}.
func ScreenToOverlayOrigin(viewport, page Rect, zoomPercent float64) Point {
	z := ClampZoom(zoomPercent) / 100
	return Point{
		X: math.Max(0, viewport.Left-page.Left) / z,
		Y: math.Max(0, viewport.Top-page.Top) / z,
	}
}

// ScreenToOverlay maps a pointer position in screen space to overlay space.
func ScreenToOverlay(p Point, page Rect, zoomPercent float64) Point {
	z := ClampZoom(zoomPercent) / 100
	return Point{
		X: (p.X - page.Left) / z,
		Y: (p.Y - page.Top) / z,
	}
}

// ScaleFactor is the ratio between the physical PDF page width and the pixel
// width the overlay was edited at. A non-positive overlay width yields 1.
func ScaleFactor(pdfPointWidth, overlayPixelWidth float64) float64 {
	if overlayPixelWidth <= 0 || pdfPointWidth <= 0 {
		return 1
	}
	return pdfPointWidth / overlayPixelWidth
}

// OverlayToPDF converts an overlay-space rectangle into PDF space. The returned
// Top is the PDF y coordinate of the rectangle's bottom edge:
//
//	pdfY = pdfPageHeight - (top + height) * scale
func OverlayToPDF(r Rect, scale, pdfPageHeight float64) Rect {
	return Rect{
		Left:   r.Left * scale,
		Top:    pdfPageHeight - (r.Top+r.Height)*scale,
		Width:  r.Width * scale,
		Height: r.Height * scale,
	}
}

// PDFToOverlay is the inverse of OverlayToPDF.
func PDFToOverlay(r Rect, scale, pdfPageHeight float64) Rect {
	if scale == 0 {
		scale = 1
	}
	h := r.Height / scale
	return Rect{
		Left:   r.Left / scale,
		Top:    (pdfPageHeight-r.Top)/scale - h,
		Width:  r.Width / scale,
		Height: h,
	}
}
