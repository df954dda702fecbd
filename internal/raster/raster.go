// Package raster renders annotation objects onto a transparent bitmap, the
// way the canvas engine draws them, for compositing into exported pages.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/vector"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// DefaultMultiplier is the supersampling factor applied to the target size.
const DefaultMultiplier = 2.0

// Renderer rasterizes objects to PNG.
type Renderer struct {
	multiplier float64
	fonts      *fontSet
}

// New creates a renderer that draws at multiplier times the requested size.
func New(multiplier float64) (*Renderer, error) {
	if multiplier <= 0 {
		multiplier = DefaultMultiplier
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Renderer{multiplier: multiplier, fonts: fonts}, nil
}

// Multiplier returns the supersampling factor.
func (r *Renderer) Multiplier() float64 {
	return r.multiplier
}

// Render draws objs onto a transparent bitmap of size scaled by the
// multiplier and encodes it as PNG. Hitboxes are skipped.
func (r *Renderer) Render(objs []*annotation.Object, size geometry.Size) ([]byte, error) {
	img, err := r.RenderImage(objs, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode overlay: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage draws objs onto a transparent bitmap without encoding it.
func (r *Renderer) RenderImage(objs []*annotation.Object, size geometry.Size) (*image.RGBA, error) {
	w := int(math.Ceil(size.Width * r.multiplier))
	h := int(math.Ceil(size.Height * r.multiplier))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrEmptyCanvas, size.Width, size.Height)
	}

	p := &painter{
		dst:   image.NewRGBA(image.Rect(0, 0, w, h)),
		z:     vector.NewRasterizer(w, h),
		fonts: r.fonts,
	}
	p.z.DrawOp = draw.Over

	base := geometry.ScaleXY(r.multiplier, r.multiplier)
	for _, o := range objs {
		if o == nil || o.IsHitbox() {
			continue
		}
		if err := p.object(o, base, 1); err != nil {
			return nil, fmt.Errorf("render %s %s: %w", o.Kind, o.ID, err)
		}
	}
	return p.dst, nil
}

// painter holds the destination and scratch rasterizer for one render.
type painter struct {
	dst   *image.RGBA
	z     *vector.Rasterizer
	fonts *fontSet
}

// objectMatrix maps an object's local coordinates, with its top-left at the
// origin, into its parent's space.
func objectMatrix(o *annotation.Object) geometry.Matrix {
	return geometry.ScaleXY(o.ScaleX, o.ScaleY).
		Mul(geometry.Rotate(o.Angle)).
		Mul(geometry.Translate(o.Left, o.Top))
}

func (p *painter) object(o *annotation.Object, parent geometry.Matrix, opacity float64) error {
	m := objectMatrix(o).Mul(parent)
	opacity *= o.Opacity

	switch o.Type {
	case annotation.PrimitiveRect:
		p.shape(o, []polygon{rectPolygon(o.Width, o.Height)}, []polyline{{pts: rectPolygon(o.Width, o.Height), closed: true}}, m, opacity)

	case annotation.PrimitiveCircle:
		rx, ry := o.Radius, o.Radius
		if rx == 0 {
			rx, ry = o.Width/2, o.Height/2
		}
		e := ellipsePolygon(rx, ry, rx, ry)
		p.shape(o, []polygon{e}, []polyline{{pts: e, closed: true}}, m, opacity)

	case annotation.PrimitiveLine, annotation.PrimitivePath:
		if o.Path == "" {
			return nil
		}
		path, err := geometry.ParsePath(o.Path)
		if err != nil {
			return err
		}
		lines := flatten(path)
		p.shape(o, fillPolygons(lines), lines, m, opacity)

	case annotation.PrimitiveTextbox:
		p.text(o, m, opacity)

	case annotation.PrimitiveImage:
		return p.image(o, m, opacity)

	case annotation.PrimitiveGroup:
		for _, c := range o.Children {
			if err := p.object(c, m, opacity); err != nil {
				return err
			}
		}
	}
	return nil
}

// shape fills and strokes outlines according to the object's style.
func (p *painter) shape(o *annotation.Object, fills []polygon, strokes []polyline, m geometry.Matrix, opacity float64) {
	if c, ok := ParseColor(o.Fill); ok && c.A > 0 && o.Type != annotation.PrimitiveLine {
		p.fill(fills, m, withOpacity(c, opacity))
	}

	if c, ok := ParseColor(o.Stroke); ok && c.A > 0 && o.StrokeWidth > 0 {
		var outline []polygon
		for _, l := range strokes {
			outline = append(outline, strokeOutline(l, o.StrokeWidth)...)
		}
		p.fill(outline, m, withOpacity(c, opacity))
	}
}

// fill rasterizes polygons transformed by m in a single pass.
func (p *painter) fill(polys []polygon, m geometry.Matrix, c color.NRGBA) {
	if len(polys) == 0 || c.A == 0 {
		return
	}

	b := p.dst.Bounds()
	p.z.Reset(b.Dx(), b.Dy())
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		first := m.Apply(poly[0])
		p.z.MoveTo(float32(first.X), float32(first.Y))
		for _, pt := range poly[1:] {
			q := m.Apply(pt)
			p.z.LineTo(float32(q.X), float32(q.Y))
		}
		p.z.ClosePath()
	}
	p.z.Draw(p.dst, b, image.NewUniform(c), image.Point{})
}
