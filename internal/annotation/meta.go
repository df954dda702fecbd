package annotation

import "fmt"

// Metadata tag types written to the pdfMeta field.
const (
	TagTextbox         = "textbox"
	TagHighlight       = "highlight"
	TagShape           = "shape"
	TagRedaction       = "redact-preview"
	TagWhiteout        = "whiteout-preview"
	TagStamp           = "stamp"
	TagStickyNote      = "sticky-note"
	TagFormField       = "form-field"
	TagLink            = "link"
	TagImage           = "image"
	TagDrawing         = "drawing"
	TagDrawingGroup    = "drawing-group"
	TagTextMask        = "text-mask"
	TagTextReplacement = "text-replacement"
	TagHitbox          = "hitbox"

	// tagTextLayer is the legacy tag of text-layer hitboxes.
	tagTextLayer = "text"
)

// Highlight sources.
const (
	SourceManual = "manual"
	SourceText   = "text"
)

// Form field types carried by form-field metadata.
const (
	FieldText     = "text"
	FieldCheckbox = "checkbox"
	FieldRadio    = "radio"
)

// TextRun is the geometry of one run of text on the rendered page, in overlay
// space. Y is the baseline; the run occupies [Y-Height, Y] vertically.
type TextRun struct {
	Text     string  `json:"str"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"fontSize"`
	FontName string  `json:"fontName,omitempty"`
}

// Meta is the metadata tag carried through every serialization round trip.
// It is the only channel by which export distinguishes annotation kinds from
// generic vector shapes.
type Meta struct {
	Type      string   `json:"type"`
	Shape     string   `json:"shape,omitempty"`
	Source    string   `json:"source,omitempty"`
	FieldType string   `json:"fieldType,omitempty"`
	Name      string   `json:"name,omitempty"`
	URL       string   `json:"url,omitempty"`
	Signature bool     `json:"signature,omitempty"`
	Run       *TextRun `json:"run,omitempty"`
}

func (m Meta) clone() Meta {
	if m.Run != nil {
		run := *m.Run
		m.Run = &run
	}
	return m
}

// tagFor returns the metadata tag identifying kind k, preserving any extra
// fields already present on meta.
func tagFor(k Kind, meta Meta) Meta {
	meta.Shape = ""
	meta.FieldType = ""

	switch k {
	case KindText:
		meta.Type = TagTextbox
	case KindHighlight:
		meta.Type = TagHighlight
		if meta.Source == "" {
			meta.Source = SourceManual
		}
	case KindRect:
		meta.Type, meta.Shape = TagShape, "rect"
	case KindCircle:
		meta.Type, meta.Shape = TagShape, "circle"
	case KindLine:
		meta.Type, meta.Shape = TagShape, "line"
	case KindArrow:
		meta.Type, meta.Shape = TagShape, "arrow"
	case KindRedaction:
		meta.Type = TagRedaction
	case KindWhiteout:
		meta.Type = TagWhiteout
	case KindStamp:
		meta.Type = TagStamp
	case KindStickyNote:
		meta.Type = TagStickyNote
	case KindTextField:
		meta.Type, meta.FieldType = TagFormField, FieldText
	case KindCheckbox:
		meta.Type, meta.FieldType = TagFormField, FieldCheckbox
	case KindRadio:
		meta.Type, meta.FieldType = TagFormField, FieldRadio
	case KindLink:
		meta.Type = TagLink
	case KindImage:
		meta.Type = TagImage
	case KindDrawingPath:
		meta.Type = TagDrawing
	case KindDrawingGroup:
		meta.Type = TagDrawingGroup
	case KindTextMask:
		meta.Type = TagTextMask
	case KindTextReplacement:
		meta.Type = TagTextReplacement
	case KindHitbox:
		meta.Type = TagHitbox
	}
	return meta
}

// kindFor resolves the kind of a decoded object from its tag, falling back to
// the canvas primitive for untagged objects.
func kindFor(meta Meta, prim Primitive) (Kind, error) {
	switch meta.Type {
	case TagTextbox:
		return KindText, nil
	case TagHighlight:
		return KindHighlight, nil
	case TagShape:
		switch meta.Shape {
		case "rect":
			return KindRect, nil
		case "circle":
			return KindCircle, nil
		case "line":
			return KindLine, nil
		case "arrow":
			return KindArrow, nil
		}
		return kindInvalid, fmt.Errorf("%w: shape %q", ErrUnknownKind, meta.Shape)
	case TagRedaction:
		return KindRedaction, nil
	case TagWhiteout:
		return KindWhiteout, nil
	case TagStamp:
		return KindStamp, nil
	case TagStickyNote:
		return KindStickyNote, nil
	case TagFormField:
		switch meta.FieldType {
		case FieldText:
			return KindTextField, nil
		case FieldCheckbox:
			return KindCheckbox, nil
		case FieldRadio:
			return KindRadio, nil
		}
		return kindInvalid, fmt.Errorf("%w: field type %q", ErrUnknownKind, meta.FieldType)
	case TagLink:
		return KindLink, nil
	case TagImage:
		return KindImage, nil
	case TagDrawing:
		return KindDrawingPath, nil
	case TagDrawingGroup:
		return KindDrawingGroup, nil
	case TagTextMask:
		return KindTextMask, nil
	case TagTextReplacement:
		return KindTextReplacement, nil
	case TagHitbox, tagTextLayer:
		return KindHitbox, nil
	}

	switch prim {
	case PrimitiveTextbox:
		return KindText, nil
	case PrimitiveRect:
		return KindRect, nil
	case PrimitiveCircle:
		return KindCircle, nil
	case PrimitiveLine:
		return KindLine, nil
	case PrimitivePath:
		return KindDrawingPath, nil
	case PrimitiveImage:
		return KindImage, nil
	case PrimitiveGroup:
		return KindDrawingGroup, nil
	case primitivePDFText:
		return KindHitbox, nil
	}
	return kindInvalid, fmt.Errorf("%w: tag %q primitive %q", ErrUnknownKind, meta.Type, prim)
}
