// Package annotation defines the annotation object model: a closed set of
// kinds, engine-independent geometry and style, and the metadata tag that
// survives every serialization round trip.
package annotation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/google/uuid"
)

// LineHeight is the ratio of a text line's height to its font size.
const LineHeight = 1.16

// Geometry positions an object in unscaled overlay space. Left and Top locate
// the object's top-left corner, which is also its rotation origin.
type Geometry struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ScaleX float64 `json:"scaleX"`
	ScaleY float64 `json:"scaleY"`
	Angle  float64 `json:"angle,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	// Path holds path data relative to the object's top-left for line, arrow
	// and drawing-path objects.
	Path string `json:"path,omitempty"`
}

// Style holds the kind-dependent presentation attributes.
type Style struct {
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Opacity     float64 `json:"opacity"`
	FontFamily  string  `json:"fontFamily,omitempty"`
	FontSize    float64 `json:"fontSize,omitempty"`
	FontWeight  string  `json:"fontWeight,omitempty"`
	FontStyle   string  `json:"fontStyle,omitempty"`
	Underline   bool    `json:"underline,omitempty"`
	Background  string  `json:"backgroundColor,omitempty"`
}

// Object is one placed item on a page.
type Object struct {
	ID   string    `json:"id,omitempty"`
	Kind Kind      `json:"-"`
	Type Primitive `json:"type"`

	Geometry
	Style

	Text     string    `json:"text,omitempty"`
	Src      string    `json:"src,omitempty"`
	Children []*Object `json:"objects,omitempty"`
	Meta     Meta      `json:"pdfMeta"`
}

// newObject returns an object of kind k with identity, primitive, tag and
// engine defaults populated.
func newObject(k Kind) *Object {
	return &Object{
		ID:       uuid.NewString(),
		Kind:     k,
		Type:     k.Primitive(),
		Geometry: Geometry{ScaleX: 1, ScaleY: 1},
		Style:    Style{Opacity: 1},
		Meta:     tagFor(k, Meta{}),
	}
}

// UnmarshalJSON decodes an object, applying engine defaults for absent scale
// and opacity, and resolves its kind from the metadata tag.
func (o *Object) UnmarshalJSON(data []byte) error {
	type plain Object
	p := plain{
		Geometry: Geometry{ScaleX: 1, ScaleY: 1},
		Style:    Style{Opacity: 1},
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Object(p)

	k, err := kindFor(o.Meta, o.Type)
	if err != nil {
		return err
	}
	o.Kind = k
	if o.Type == "" || o.Type == primitivePDFText {
		o.Type = k.Primitive()
	}
	return nil
}

// MarshalJSON encodes an object, writing the metadata tag for its kind.
func (o *Object) MarshalJSON() ([]byte, error) {
	if !o.Kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, o.Kind)
	}
	type plain Object
	p := plain(*o)
	p.Meta = tagFor(o.Kind, o.Meta)
	if p.Type == "" {
		p.Type = o.Kind.Primitive()
	}
	return json.Marshal(p)
}

// IsHitbox reports whether the object is a text-layer hit target.
func (o *Object) IsHitbox() bool {
	return o.Kind == KindHitbox
}

// ScaledWidth returns the width after applying ScaleX.
func (o *Object) ScaledWidth() float64 {
	return o.Width * o.ScaleX
}

// ScaledHeight returns the height after applying ScaleY.
func (o *Object) ScaledHeight() float64 {
	return o.Height * o.ScaleY
}

// Bounds returns the unrotated bounding rectangle in overlay space.
func (o *Object) Bounds() geometry.Rect {
	return geometry.Rect{
		Left:   o.Left,
		Top:    o.Top,
		Width:  o.ScaledWidth(),
		Height: o.ScaledHeight(),
	}
}

// Lines returns the text split into display lines.
func (o *Object) Lines() []string {
	if o.Text == "" {
		return nil
	}
	return strings.Split(o.Text, "\n")
}

// Fit recomputes derived dimensions after content or style changes: text
// height from its line count and path bounds from its path data.
func (o *Object) Fit() error {
	switch o.Type {
	case PrimitiveTextbox:
		size := o.FontSize
		if size == 0 {
			size = DefaultFontSize
		}
		lines := max(len(o.Lines()), 1)
		o.Height = float64(lines) * size * LineHeight
		if o.Width == 0 {
			longest := 0
			for _, l := range o.Lines() {
				longest = max(longest, len([]rune(l)))
			}
			o.Width = float64(longest) * size * 0.5
		}
	case PrimitiveCircle:
		o.Width, o.Height = 2*o.Radius, 2*o.Radius
	case PrimitiveLine, PrimitivePath:
		if o.Path == "" {
			return nil
		}
		p, err := geometry.ParsePath(o.Path)
		if err != nil {
			return err
		}
		b := p.Bounds()
		o.Width, o.Height = b.Width, b.Height
	case PrimitiveGroup:
		var b geometry.Rect
		for _, c := range o.Children {
			b = b.Union(c.Bounds())
		}
		o.Width, o.Height = b.Right(), b.Bottom()
	}
	return nil
}
