package annotation

import (
	"fmt"
	"math"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
)

// Construction defaults.
const (
	DefaultStrokeWidth      = 2.0
	DefaultFontFamily       = "Arial"
	DefaultFontSize         = 12.0
	DefaultHighlightOpacity = 0.4
	DefaultColor            = "#000000"
	DefaultText             = "Enter text here"
	DefaultStampLabel       = "CONFIDENTIAL"
	DefaultImageMax         = 200.0

	// PlacementOffset is how far from the visible origin new objects land.
	PlacementOffset = 100.0

	// MaskPadding is the padding around a text run covered by a text mask.
	MaskPadding = 2.0
)

// NewText returns a text object at origin + PlacementOffset.
func NewText(origin geometry.Point, text, color string) *Object {
	if text == "" {
		text = DefaultText
	}
	o := newObject(KindText)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset
	o.Text = text
	o.Fill = colorOr(color)
	o.FontFamily = DefaultFontFamily
	o.FontSize = DefaultFontSize
	o.FontWeight = "normal"
	o.FontStyle = "normal"
	o.Fit()
	return o
}

// NewShape returns a shape of kind k placed relative to the visible origin.
// k must be a rect, circle, line, arrow, redaction or whiteout.
func NewShape(k Kind, origin geometry.Point, color string) (*Object, error) {
	o := newObject(k)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset

	switch k {
	case KindRect:
		o.Width, o.Height = 100, 100
		o.Fill = "transparent"
		o.Stroke = colorOr(color)
		o.StrokeWidth = DefaultStrokeWidth
	case KindCircle:
		o.Left, o.Top = origin.X+150, origin.Y+150
		o.Radius = 50
		o.Fill = "transparent"
		o.Stroke = colorOr(color)
		o.StrokeWidth = DefaultStrokeWidth
	case KindLine:
		o.Left, o.Top = origin.X+50, origin.Y+100
		o.Path = "M 0 0 L 150 0"
		o.Stroke = colorOr(color)
		o.StrokeWidth = 4
	case KindArrow:
		o.Path = "M 0 0 L 200 0 L 190 10 M 200 0 L 190 -10"
		o.Fill = "transparent"
		o.Stroke = colorOr(color)
		o.StrokeWidth = DefaultStrokeWidth
	case KindRedaction:
		o.Width, o.Height = 150, 50
		o.Fill = "black"
	case KindWhiteout:
		o.Width, o.Height = 150, 50
		o.Fill = "white"
	default:
		return nil, fmt.Errorf("%w: %s is not a shape", ErrUnknownKind, k)
	}

	if err := o.Fit(); err != nil {
		return nil, err
	}
	return o, nil
}

// NewStamp returns a rotated stamp: a bordered bold label grouped as one object.
func NewStamp(origin geometry.Point, label string) *Object {
	if label == "" {
		label = DefaultStampLabel
	}

	text := newObject(KindText)
	text.Text = label
	text.Fill = "red"
	text.FontFamily = DefaultFontFamily
	text.FontSize = 24
	text.FontWeight = "bold"
	text.Fit()
	text.Left, text.Top = 10, 10

	border := newObject(KindRect)
	border.Width = text.Width + 20
	border.Height = text.Height + 20
	border.Fill = "transparent"
	border.Stroke = "red"
	border.StrokeWidth = 3

	o := newObject(KindStamp)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset
	o.Angle = -15
	o.Opacity = 0.8
	o.Children = []*Object{border, text}
	o.Fit()
	return o
}

// NewStickyNote returns a yellow note with editable text.
func NewStickyNote(origin geometry.Point, text string) *Object {
	if text == "" {
		text = "Sticky Note"
	}
	o := newObject(KindStickyNote)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset
	o.Width = 150
	o.Text = text
	o.Fill = "#000"
	o.FontFamily = DefaultFontFamily
	o.FontSize = 14
	o.Background = "#fef08a"
	o.Fit()
	return o
}

// NewField returns a form field of kind k named after its type and the
// creation time.
func NewField(k Kind, origin geometry.Point, now time.Time) (*Object, error) {
	o := newObject(k)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset
	ts := now.UnixMilli()

	switch k {
	case KindTextField:
		o.Width = 150
		o.Text = "Text Field"
		o.Fill = "#000"
		o.FontSize = 14
		o.FontFamily = DefaultFontFamily
		o.Background = "#eef2ff"
		o.Meta.Name = fmt.Sprintf("field_%d", ts)
	case KindCheckbox:
		o.Width, o.Height = 20, 20
		o.Fill = "#fff"
		o.Stroke = "#000"
		o.StrokeWidth = DefaultStrokeWidth
		o.Meta.Name = fmt.Sprintf("check_%d", ts)
	case KindRadio:
		o.Radius = 10
		o.Fill = "#fff"
		o.Stroke = "#000"
		o.StrokeWidth = DefaultStrokeWidth
		o.Meta.Name = fmt.Sprintf("radio_%d", ts)
	default:
		return nil, fmt.Errorf("%w: %s is not a form field", ErrUnknownKind, k)
	}

	o.Fit()
	return o, nil
}

// NewHighlight returns a manual highlight covering r.
func NewHighlight(r geometry.Rect) *Object {
	o := newObject(KindHighlight)
	o.Left, o.Top, o.Width, o.Height = r.Left, r.Top, r.Width, r.Height
	o.Fill = "yellow"
	o.Opacity = DefaultHighlightOpacity
	o.Meta.Source = SourceManual
	return o
}

// NewRunHighlight returns a highlight covering a text run.
func NewRunHighlight(run TextRun) *Object {
	o := NewHighlight(runRect(run))
	o.Meta.Source = SourceText
	o.Meta.Run = &run
	return o
}

// NewLink returns a link region pointing at url.
func NewLink(r geometry.Rect, url string) *Object {
	o := newObject(KindLink)
	o.Left, o.Top, o.Width, o.Height = r.Left, r.Top, r.Width, r.Height
	o.Fill = "rgba(59,130,246,0.2)"
	o.Stroke = "#3b82f6"
	o.StrokeWidth = 1
	o.Meta.URL = url
	return o
}

// NewImage returns an image fitted within DefaultImageMax on its longest side.
func NewImage(origin geometry.Point, src string, width, height int, signature bool) *Object {
	o := newObject(KindImage)
	o.Left = origin.X + PlacementOffset
	o.Top = origin.Y + PlacementOffset
	o.Src = src
	o.Width, o.Height = float64(width), float64(height)
	if longest := math.Max(o.Width, o.Height); longest > DefaultImageMax {
		s := DefaultImageMax / longest
		o.ScaleX, o.ScaleY = s, s
	}
	o.Meta.Signature = signature
	return o
}

// NewDrawingPath returns a free-hand stroke. The path is given in overlay
// coordinates and is rebased onto the object's top-left.
func NewDrawingPath(data, color string, width float64) (*Object, error) {
	p, err := geometry.ParsePath(data)
	if err != nil {
		return nil, err
	}
	b := p.Bounds()

	o := newObject(KindDrawingPath)
	o.Left, o.Top = b.Left, b.Top
	o.Path = p.Transform(geometry.Translate(-b.Left, -b.Top)).String()
	o.Fill = ""
	o.Stroke = colorOr(color)
	o.StrokeWidth = width
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = DefaultStrokeWidth
	}
	o.Width, o.Height = b.Width, b.Height
	return o, nil
}

// GroupDrawing encloses drawing paths in a single drawing group whose bounds
// are the union of theirs. The paths are cloned and rebased onto the group.
func GroupDrawing(paths []*Object) *Object {
	var b geometry.Rect
	for _, p := range paths {
		b = b.Union(p.Bounds())
	}

	o := newObject(KindDrawingGroup)
	o.Left, o.Top = b.Left, b.Top
	for _, p := range paths {
		c := Clone(p)
		c.Left -= b.Left
		c.Top -= b.Top
		o.Children = append(o.Children, c)
	}
	o.Width, o.Height = b.Width, b.Height
	return o
}

// NewTextMask returns a white mask covering a run with MaskPadding on each side.
func NewTextMask(run TextRun) *Object {
	r := runRect(run)
	o := newObject(KindTextMask)
	o.Left = r.Left - MaskPadding
	o.Top = r.Top - MaskPadding
	o.Width = r.Width + 2*MaskPadding
	o.Height = r.Height + 2*MaskPadding
	o.Fill = "white"
	o.Meta.Run = &run
	return o
}

// NewTextReplacement returns editable text placed over a run's original position.
func NewTextReplacement(run TextRun, text string) *Object {
	if text == "" {
		text = run.Text
	}
	family := run.FontName
	if family == "" {
		family = DefaultFontFamily
	}
	o := newObject(KindTextReplacement)
	o.Left = run.X
	o.Top = run.Y - run.Height
	o.Width = run.Width * 1.1
	o.Text = text
	o.Fill = "black"
	o.FontFamily = family
	o.FontSize = run.FontSize
	o.Fit()
	o.Meta.Run = &run
	return o
}

func runRect(run TextRun) geometry.Rect {
	return geometry.Rect{Left: run.X, Top: run.Y - run.Height, Width: run.Width, Height: run.Height}
}

func colorOr(color string) string {
	if color == "" {
		return DefaultColor
	}
	return color
}
