package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// DecodeDataURL decodes a data URL holding a PNG, JPEG or GIF image.
func DecodeDataURL(src string) (image.Image, error) {
	rest, ok := strings.CutPrefix(src, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: not a data url", ErrImageSource)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrImageSource)
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		d, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
		}
		data = d
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
		}
		data = []byte(s)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSource, err)
	}
	return img, nil
}

// image draws an image object scaled into its Width by Height box.
func (p *painter) image(o *annotation.Object, m geometry.Matrix, opacity float64) error {
	src, err := DecodeDataURL(o.Src)
	if err != nil {
		return err
	}

	b := src.Bounds()
	if b.Empty() {
		return nil
	}

	w, h := o.Width, o.Height
	if w == 0 || h == 0 {
		w, h = float64(b.Dx()), float64(b.Dy())
	}

	s2d := geometry.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
		Mul(geometry.ScaleXY(w/float64(b.Dx()), h/float64(b.Dy()))).
		Mul(m)

	var opts *xdraw.Options
	if opacity < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(clamp(opacity, 0, 1)*255 + 0.5)})}
	}

	xdraw.BiLinear.Transform(p.dst, aff3(s2d), src, b, xdraw.Over, opts)
	return nil
}

// aff3 converts a Matrix into the row-major form x/image/draw expects.
func aff3(m geometry.Matrix) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}
