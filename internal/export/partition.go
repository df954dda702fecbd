package export

import (
	"fmt"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
)

// Placement records where an object landed on an exported page. Rect is in
// PDF space with Top holding the bottom edge y.
type Placement struct {
	ObjectID string        `json:"object_id"`
	Kind     string        `json:"kind"`
	Rect     geometry.Rect `json:"rect"`
}

// Parts is a page's objects split by how they are exported.
type Parts struct {
	// Raster holds copies of the objects to burn into the overlay image,
	// rescaled from overlay space into PDF points.
	Raster []*annotation.Object

	Fields []pdf.Field
	Links  []pdf.Link

	Placements []Placement
}

// Partition splits objs for a page of the given point height whose overlay
// was edited at scale = pointWidth / overlayWidth. Hitboxes are dropped.
func Partition(objs []*annotation.Object, scale, pageHeight float64) (Parts, error) {
	var parts Parts

	for _, o := range objs {
		rect := geometry.OverlayToPDF(o.Bounds(), scale, pageHeight)

		switch o.Kind {
		case annotation.KindTextField:
			parts.Fields = append(parts.Fields, field(o, pdf.FieldText, rect, scale))
		case annotation.KindCheckbox:
			parts.Fields = append(parts.Fields, field(o, pdf.FieldCheckbox, rect, scale))
		case annotation.KindRadio:
			parts.Fields = append(parts.Fields, field(o, pdf.FieldRadio, rect, scale))

		case annotation.KindLink:
			parts.Links = append(parts.Links, pdf.Link{URL: o.Meta.URL, Rect: rect})

		case annotation.KindHitbox:
			continue

		case annotation.KindText, annotation.KindHighlight,
			annotation.KindRect, annotation.KindCircle, annotation.KindLine, annotation.KindArrow,
			annotation.KindRedaction, annotation.KindWhiteout,
			annotation.KindStamp, annotation.KindStickyNote,
			annotation.KindImage, annotation.KindDrawingPath, annotation.KindDrawingGroup,
			annotation.KindTextMask, annotation.KindTextReplacement:
			parts.Raster = append(parts.Raster, rescale(o, scale))

		default:
			return Parts{}, fmt.Errorf("%w: %s", annotation.ErrUnknownKind, o.Kind)
		}

		parts.Placements = append(parts.Placements, Placement{
			ObjectID: o.ID,
			Kind:     o.Kind.String(),
			Rect:     rect,
		})
	}
	return parts, nil
}

func field(o *annotation.Object, kind pdf.FieldKind, rect geometry.Rect, scale float64) pdf.Field {
	return pdf.Field{
		Kind:     kind,
		Name:     o.Meta.Name,
		Rect:     rect,
		FontSize: o.FontSize * scale,
	}
}

// rescale returns a copy of o moved and scaled from overlay space into PDF
// points. Children keep their coordinates relative to the group.
func rescale(o *annotation.Object, scale float64) *annotation.Object {
	c := annotation.Clone(o)
	c.ID = o.ID
	c.Left *= scale
	c.Top *= scale
	c.ScaleX *= scale
	c.ScaleY *= scale
	return c
}
