package raster

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// fontSet holds the Go font faces used for every font family. CSS families
// are not resolved; weight and style select the face.
type fontSet struct {
	regular, bold, italic, boldItalic *sfnt.Font
}

func loadFonts() (*fontSet, error) {
	parse := func(name string, data []byte) (*sfnt.Font, error) {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", name, err)
		}
		return f, nil
	}

	var fs fontSet
	var err error
	if fs.regular, err = parse("regular", goregular.TTF); err != nil {
		return nil, err
	}
	if fs.bold, err = parse("bold", gobold.TTF); err != nil {
		return nil, err
	}
	if fs.italic, err = parse("italic", goitalic.TTF); err != nil {
		return nil, err
	}
	if fs.boldItalic, err = parse("bold italic", gobolditalic.TTF); err != nil {
		return nil, err
	}
	return &fs, nil
}

func (fs *fontSet) face(weight, style string) *sfnt.Font {
	bold := weight == "bold" || weight == "bolder"
	if n, err := strconv.Atoi(weight); err == nil {
		bold = n >= 600
	}
	italic := style == "italic" || style == "oblique"

	switch {
	case bold && italic:
		return fs.boldItalic
	case bold:
		return fs.bold
	case italic:
		return fs.italic
	default:
		return fs.regular
	}
}

// text draws a textbox: its background, then each line of text with the
// baseline placed one ascent below the top of the line box.
func (p *painter) text(o *annotation.Object, m geometry.Matrix, opacity float64) {
	size := o.FontSize
	if size <= 0 {
		size = annotation.DefaultFontSize
	}

	if bg, ok := ParseColor(o.Background); ok && bg.A > 0 {
		p.fill([]polygon{rectPolygon(o.Width, o.Height)}, m, withOpacity(bg, opacity))
	}

	c, ok := ParseColor(o.Fill)
	if !ok {
		c, _ = ParseColor(annotation.DefaultColor)
	}
	c = withOpacity(c, opacity)

	f := p.fonts.face(o.FontWeight, o.FontStyle)
	var buf sfnt.Buffer
	ppem := fixed.Int26_6(size * 64)

	ascent := size * 0.8
	if metrics, err := f.Metrics(&buf, ppem, font.HintingNone); err == nil {
		ascent = fromFixed(metrics.Ascent)
	}

	lineHeight := size * annotation.LineHeight
	for i, line := range o.Lines() {
		baseline := float64(i)*lineHeight + ascent
		polys, width := glyphPolygons(f, &buf, ppem, line, baseline)
		if o.Underline && strings.TrimSpace(line) != "" {
			thickness := max(size/15, 1)
			polys = append(polys, translate(rectPolygon(width, thickness), 0, baseline+size*0.1))
		}
		p.fill(polys, m, c)
	}
}

// glyphPolygons lays out s on a baseline starting at x = 0 and returns the
// flattened glyph outlines with the advance width of the line.
func glyphPolygons(f *sfnt.Font, buf *sfnt.Buffer, ppem fixed.Int26_6, s string, baseline float64) ([]polygon, float64) {
	var out []polygon
	var pen float64
	prev := sfnt.GlyphIndex(0)

	for _, r := range s {
		idx, err := f.GlyphIndex(buf, r)
		if err != nil || idx == 0 {
			idx, _ = f.GlyphIndex(buf, '?')
		}

		if prev != 0 {
			if k, err := f.Kern(buf, prev, idx, ppem, font.HintingNone); err == nil {
				pen += fromFixed(k)
			}
		}

		segs, err := f.LoadGlyph(buf, idx, ppem, nil)
		if err == nil {
			out = append(out, glyphOutline(segs, pen, baseline)...)
		}

		if adv, err := f.GlyphAdvance(buf, idx, ppem, font.HintingNone); err == nil {
			pen += fromFixed(adv)
		}
		prev = idx
	}
	return out, pen
}

// glyphOutline flattens glyph segments, which are y-down relative to the
// glyph origin, into polygons offset to (dx, baseline).
func glyphOutline(segs sfnt.Segments, dx, baseline float64) []polygon {
	var out []polygon
	var cur polygon
	var pen geometry.Point

	pt := func(p fixed.Point26_6) geometry.Point {
		return geometry.Point{X: fromFixed(p.X) + dx, Y: fromFixed(p.Y) + baseline}
	}

	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if len(cur) > 2 {
				out = append(out, cur)
			}
			pen = pt(s.Args[0])
			cur = polygon{pen}
		case sfnt.SegmentOpLineTo:
			pen = pt(s.Args[0])
			cur = append(cur, pen)
		case sfnt.SegmentOpQuadTo:
			c, end := pt(s.Args[0]), pt(s.Args[1])
			for i := 1; i <= curveSteps/2; i++ {
				t := float64(i) / (curveSteps / 2)
				u := 1 - t
				cur = append(cur, geometry.Point{
					X: u*u*pen.X + 2*u*t*c.X + t*t*end.X,
					Y: u*u*pen.Y + 2*u*t*c.Y + t*t*end.Y,
				})
			}
			pen = end
		case sfnt.SegmentOpCubeTo:
			c1, c2, end := pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for i := 1; i <= curveSteps/2; i++ {
				t := float64(i) / (curveSteps / 2)
				u := 1 - t
				cur = append(cur, geometry.Point{
					X: u*u*u*pen.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
					Y: u*u*u*pen.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
				})
			}
			pen = end
		}
	}
	if len(cur) > 2 {
		out = append(out, cur)
	}
	return out
}

func translate(poly polygon, dx, dy float64) polygon {
	out := make(polygon, len(poly))
	for i, p := range poly {
		out[i] = geometry.Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
