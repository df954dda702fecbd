package raster_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/raster"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{R: 255, A: 255}, true},
		{"#0f0", color.NRGBA{G: 255, A: 255}, true},
		{"#0000ff80", color.NRGBA{B: 255, A: 128}, true},
		{"red", color.NRGBA{R: 255, A: 255}, true},
		{"White", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, true},
		{"transparent", color.NRGBA{}, true},
		{"rgb(10, 20, 30)", color.NRGBA{R: 10, G: 20, B: 30, A: 255}, true},
		{"rgba(59,130,246,0.2)", color.NRGBA{R: 59, G: 130, B: 246, A: 51}, true},
		{"", color.NRGBA{}, false},
		{"#12", color.NRGBA{}, false},
		{"notacolor", color.NRGBA{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := raster.ParseColor(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseColor(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func newRenderer(t *testing.T) *raster.Renderer {
	t.Helper()
	r, err := raster.New(raster.DefaultMultiplier)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return r
}

func rectObject(left, top, w, h float64, fill string) *annotation.Object {
	o, _ := annotation.NewShape(annotation.KindRedaction, geometry.Point{}, "")
	o.Left, o.Top, o.Width, o.Height = left, top, w, h
	o.Fill = fill
	return o
}

func TestRender_SizeAndMultiplier(t *testing.T) {
	r := newRenderer(t)

	data, err := r.Render(nil, geometry.Size{Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("bounds = %v, want 200x100", b)
	}
	if _, _, _, a := img.At(10, 10).RGBA(); a != 0 {
		t.Errorf("empty render alpha = %d, want 0", a)
	}
}

func TestRender_EmptyCanvas(t *testing.T) {
	r := newRenderer(t)
	if _, err := r.Render(nil, geometry.Size{}); !errors.Is(err, raster.ErrEmptyCanvas) {
		t.Errorf("Render() error = %v, want ErrEmptyCanvas", err)
	}
}

func TestRender_Rect(t *testing.T) {
	r := newRenderer(t)
	img, err := r.RenderImage([]*annotation.Object{rectObject(10, 10, 20, 20, "#ff0000")}, geometry.Size{Width: 50, Height: 50})
	if err != nil {
		t.Fatalf("RenderImage() failed: %v", err)
	}

	// Object space (20, 20) is device (40, 40) at the default multiplier.
	if got := img.RGBAAt(40, 40); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside pixel = %v, want opaque red", got)
	}
	if got := img.RGBAAt(90, 90); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
}

func TestRender_Opacity(t *testing.T) {
	r := newRenderer(t)
	o := rectObject(0, 0, 10, 10, "#000000")
	o.Opacity = 0.5

	img, err := r.RenderImage([]*annotation.Object{o}, geometry.Size{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("RenderImage() failed: %v", err)
	}
	if a := img.RGBAAt(10, 10).A; a < 120 || a > 135 {
		t.Errorf("alpha = %d, want about 128", a)
	}
}

func TestRender_SkipsHitboxes(t *testing.T) {
	r := newRenderer(t)
	hb := annotation.NewHitbox(annotation.TextRun{Text: "x", X: 0, Y: 10, Width: 10, Height: 10})
	hb.Fill = "#000000"
	hb.Opacity = 1

	img, err := r.RenderImage([]*annotation.Object{hb}, geometry.Size{Width: 10, Height: 10})
	if err != nil {
		t.Fatalf("RenderImage() failed: %v", err)
	}
	if a := img.RGBAAt(10, 10).A; a != 0 {
		t.Errorf("hitbox pixel alpha = %d, want 0", a)
	}
}

func opaquePixels(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestRender_TextAndStroke(t *testing.T) {
	r := newRenderer(t)

	text := annotation.NewText(geometry.Point{}, "Hello", "#000")
	text.Left, text.Top = 5, 5
	line, _ := annotation.NewShape(annotation.KindLine, geometry.Point{}, "#00f")
	line.Left, line.Top = 5, 40
	stamp := annotation.NewStamp(geometry.Point{}, "")

	for _, o := range []*annotation.Object{text, line, stamp} {
		t.Run(o.Kind.String(), func(t *testing.T) {
			img, err := r.RenderImage([]*annotation.Object{o}, geometry.Size{Width: 400, Height: 300})
			if err != nil {
				t.Fatalf("RenderImage() failed: %v", err)
			}
			if n := opaquePixels(img); n == 0 {
				t.Error("RenderImage() drew nothing")
			}
		})
	}
}

func dataURL(t *testing.T, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRender_Image(t *testing.T) {
	r := newRenderer(t)
	o := annotation.NewImage(geometry.Point{}, dataURL(t, color.NRGBA{G: 255, A: 255}), 4, 4, false)
	o.Left, o.Top = 0, 0
	o.ScaleX, o.ScaleY = 5, 5

	img, err := r.RenderImage([]*annotation.Object{o}, geometry.Size{Width: 40, Height: 40})
	if err != nil {
		t.Fatalf("RenderImage() failed: %v", err)
	}
	if got := img.RGBAAt(20, 20); got.G < 200 || got.A < 200 {
		t.Errorf("image pixel = %v, want green", got)
	}
	if got := img.RGBAAt(60, 60); got.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", got)
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, src := range []string{"https://example.com/a.png", "data:image/png;base64", "data:image/png;base64,!!!"} {
		if _, err := raster.DecodeDataURL(src); !errors.Is(err, raster.ErrImageSource) {
			t.Errorf("DecodeDataURL(%q) error = %v, want ErrImageSource", src, err)
		}
	}
}
