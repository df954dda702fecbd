package annotation

import "fmt"

// Kind is the closed set of annotation variants. Adding a variant requires
// extending every exhaustive switch over Kind.
type Kind int

const (
	kindInvalid Kind = iota
	KindText
	KindHighlight
	KindRect
	KindCircle
	KindLine
	KindArrow
	KindRedaction
	KindWhiteout
	KindStamp
	KindStickyNote
	KindTextField
	KindCheckbox
	KindRadio
	KindLink
	KindImage
	KindDrawingPath
	KindDrawingGroup
	KindTextMask
	KindTextReplacement
	KindHitbox
)

var kindNames = map[Kind]string{
	KindText:            "text",
	KindHighlight:       "highlight",
	KindRect:            "rect",
	KindCircle:          "circle",
	KindLine:            "line",
	KindArrow:           "arrow",
	KindRedaction:       "redaction",
	KindWhiteout:        "whiteout",
	KindStamp:           "stamp",
	KindStickyNote:      "sticky-note",
	KindTextField:       "text-field",
	KindCheckbox:        "checkbox",
	KindRadio:           "radio",
	KindLink:            "link",
	KindImage:           "image",
	KindDrawingPath:     "drawing-path",
	KindDrawingGroup:    "drawing-group",
	KindTextMask:        "text-mask",
	KindTextReplacement: "text-replacement",
	KindHitbox:          "hitbox",
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := KindText; k <= KindHitbox; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind from its String form.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return kindInvalid, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsFormField reports whether the kind exports as a native form field.
func (k Kind) IsFormField() bool {
	return k == KindTextField || k == KindCheckbox || k == KindRadio
}

// IsStructured reports whether the kind exports as a native PDF construct
// instead of being rasterized.
func (k Kind) IsStructured() bool {
	return k.IsFormField() || k == KindLink
}

// IsComposite reports whether objects of this kind carry children.
func (k Kind) IsComposite() bool {
	return k == KindStamp || k == KindDrawingGroup
}

// Primitive is the drawable shape an object materializes as on the canvas.
type Primitive string

const (
	PrimitiveRect    Primitive = "rect"
	PrimitiveCircle  Primitive = "circle"
	PrimitiveLine    Primitive = "line"
	PrimitivePath    Primitive = "path"
	PrimitiveTextbox Primitive = "textbox"
	PrimitiveImage   Primitive = "image"
	PrimitiveGroup   Primitive = "group"

	// primitivePDFText is a text-layer primitive written by older sessions
	// without a metadata tag. It is always treated as a hitbox.
	primitivePDFText Primitive = "pdf-text"
)

// Primitive returns the canvas primitive used for objects of kind k.
func (k Kind) Primitive() Primitive {
	switch k {
	case KindText, KindStickyNote, KindTextField, KindTextReplacement:
		return PrimitiveTextbox
	case KindHighlight, KindRect, KindRedaction, KindWhiteout, KindCheckbox,
		KindLink, KindTextMask, KindHitbox:
		return PrimitiveRect
	case KindCircle, KindRadio:
		return PrimitiveCircle
	case KindLine:
		return PrimitiveLine
	case KindArrow, KindDrawingPath:
		return PrimitivePath
	case KindImage:
		return PrimitiveImage
	case KindStamp, KindDrawingGroup:
		return PrimitiveGroup
	default:
		return ""
	}
}
