package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"maps"
	"strconv"
	"strings"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldKind is the type of an interactive form field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldCheckbox
	FieldRadio
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldCheckbox:
		return "checkbox"
	case FieldRadio:
		return "radio"
	}
	return "field(" + strconv.Itoa(int(k)) + ")"
}

// Field is an AcroForm field placed on a page. Rect is in PDF space with Top
// holding the y coordinate of the bottom edge, as returned by
// geometry.OverlayToPDF.
type Field struct {
	Kind     FieldKind
	Name     string
	Value    string
	Rect     geometry.Rect
	FontSize float64
}

// Link is a URI link annotation. Rect follows the Field convention.
type Link struct {
	URL  string
	Rect geometry.Rect
}

// Field defaults applied to exported widgets.
const (
	TextFieldValue = "Enter text"
	RadioOption    = "Yes"
	fieldFont      = "Helv"
)

// Builder assembles an output document from pages of a source document.
type Builder struct {
	ctx      *model.Context
	dims     []types.Dim
	fields   types.Array
	names    map[string]bool
	overlays int
}

// NewBuilder copies pages of src into a new document in the given order. Page
// numbers are 1-based and may repeat.
func NewBuilder(src []byte, pages []int) (*Builder, error) {
	conf := configuration()

	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p)
	}

	var collected bytes.Buffer
	if err := api.Collect(bytes.NewReader(src), &collected, selected, conf); err != nil {
		return nil, fmt.Errorf("%w: copy pages: %v", ErrInvalidPDF, err)
	}

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(collected.Bytes()), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	dims, err := pageDims(ctx)
	if err != nil {
		return nil, err
	}
	return &Builder{ctx: ctx, dims: dims, names: sourceFieldNames(ctx)}, nil
}

// sourceFieldNames collects the names of the root fields the copied pages
// already carry. An unreadable form yields an empty set.
func sourceFieldNames(ctx *model.Context) map[string]bool {
	names := make(map[string]bool)
	catalog, err := ctx.Catalog()
	if err != nil {
		return names
	}
	obj, ok := catalog.Find("AcroForm")
	if !ok {
		return names
	}
	form, err := ctx.DereferenceDict(obj)
	if err != nil || form == nil {
		return names
	}
	obj, ok = form.Find("Fields")
	if !ok {
		return names
	}
	fields, err := ctx.DereferenceArray(obj)
	if err != nil {
		return names
	}
	for _, f := range fields {
		d, err := ctx.DereferenceDict(f)
		if err != nil || d == nil {
			continue
		}
		if name, err := d.StringOrHexLiteralEntry("T"); err == nil && name != nil {
			names[*name] = true
		}
	}
	return names
}

// PageCount returns the number of pages in the output.
func (b *Builder) PageCount() int {
	return len(b.dims)
}

// PageSize returns the point dimensions of the 1-based output page.
func (b *Builder) PageSize(page int) (geometry.Size, error) {
	if page < 1 || page > len(b.dims) {
		return geometry.Size{}, fmt.Errorf("%w: %d", ErrPageRange, page)
	}
	d := b.dims[page-1]
	return geometry.Size{Width: d.Width, Height: d.Height}, nil
}

// DrawImage draws a PNG over the full area of the 1-based page, preserving its
// alpha channel.
func (b *Builder) DrawImage(page int, pngData []byte) error {
	size, err := b.PageSize(page)
	if err != nil {
		return err
	}

	pageDict, pageRef, inherited, err := b.ctx.PageDict(page, false)
	if err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}

	imgRef, err := b.addImage(pngData)
	if err != nil {
		return err
	}

	b.overlays++
	name := "Overlay" + strconv.Itoa(b.overlays)

	resources, err := b.pageResources(pageDict, inherited)
	if err != nil {
		return fmt.Errorf("page %d resources: %w", page, err)
	}
	xobjects, err := b.subDict(resources, "XObject")
	if err != nil {
		return fmt.Errorf("page %d xobjects: %w", page, err)
	}
	xobjects[name] = *imgRef
	resources["XObject"] = xobjects
	pageDict["Resources"] = resources

	pre, err := b.addStream(types.Dict{}, []byte("q\n"))
	if err != nil {
		return err
	}
	post, err := b.addStream(types.Dict{}, fmt.Appendf(nil, "Q\nq %s 0 0 %s 0 0 cm /%s Do Q\n",
		num(size.Width), num(size.Height), name))
	if err != nil {
		return err
	}

	contents := types.Array{*pre}
	if existing, ok := pageDict.Find("Contents"); ok {
		items, err := b.contentRefs(existing)
		if err != nil {
			return fmt.Errorf("page %d contents: %w", page, err)
		}
		contents = append(contents, items...)
	}
	contents = append(contents, *post)
	pageDict["Contents"] = contents

	return b.update(pageRef, pageDict)
}

// AddField places an interactive form field on the 1-based page.
func (b *Builder) AddField(page int, f Field) error {
	pageDict, pageRef, _, err := b.ctx.PageDict(page, false)
	if err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}
	if pageRef == nil {
		return fmt.Errorf("%w: %d", ErrPageRange, page)
	}

	f.Name = b.uniqueName(f.Name)

	widget := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Widget"),
		"Rect":    rectArray(f.Rect),
		"F":       types.Integer(4),
		"P":       *pageRef,
	}

	var fieldRef *types.IndirectRef
	var widgetRef *types.IndirectRef

	switch f.Kind {
	case FieldText:
		size := f.FontSize
		if size <= 0 {
			size = 12
		}
		value := f.Value
		if value == "" {
			value = TextFieldValue
		}
		widget["FT"] = types.Name("Tx")
		widget["T"] = literal(f.Name)
		widget["V"] = literal(value)
		widget["DA"] = literal(fmt.Sprintf("/%s %s Tf 0 g", fieldFont, num(size)))
		widget["MK"] = types.Dict{"BG": types.NewNumberArray(0.933, 0.949, 1)}
		if widgetRef, err = b.ctx.IndRefForNewObject(widget); err != nil {
			return err
		}
		fieldRef = widgetRef

	case FieldCheckbox:
		ap, err := b.toggleAppearance(f.Rect, false)
		if err != nil {
			return err
		}
		widget["FT"] = types.Name("Btn")
		widget["T"] = literal(f.Name)
		widget["V"] = types.Name("Off")
		widget["AS"] = types.Name("Off")
		widget["AP"] = ap
		widget["MK"] = types.Dict{"BC": types.NewNumberArray(0, 0, 0)}
		if widgetRef, err = b.ctx.IndRefForNewObject(widget); err != nil {
			return err
		}
		fieldRef = widgetRef

	case FieldRadio:
		ap, err := b.toggleAppearance(f.Rect, true)
		if err != nil {
			return err
		}
		parent := types.Dict{
			"FT":   types.Name("Btn"),
			"Ff":   types.Integer(49152),
			"T":    literal(f.Name),
			"V":    types.Name("Off"),
			"Kids": types.Array{},
		}
		if fieldRef, err = b.ctx.IndRefForNewObject(parent); err != nil {
			return err
		}
		widget["Parent"] = *fieldRef
		widget["AS"] = types.Name("Off")
		widget["AP"] = ap
		widget["MK"] = types.Dict{"BC": types.NewNumberArray(0, 0, 0)}
		if widgetRef, err = b.ctx.IndRefForNewObject(widget); err != nil {
			return err
		}
		parent["Kids"] = types.Array{*widgetRef}
		if err := b.update(fieldRef, parent); err != nil {
			return err
		}

	default:
		return fmt.Errorf("pdf: unsupported field kind %s", f.Kind)
	}

	if err := b.appendAnnot(page, pageDict, pageRef, *widgetRef); err != nil {
		return err
	}
	b.fields = append(b.fields, *fieldRef)
	return nil
}

// uniqueName returns name, or name with the lowest free numeric suffix when
// another field already uses it. Fully qualified field names must be unique.
func (b *Builder) uniqueName(name string) string {
	if name == "" {
		name = "field"
	}
	unique := name
	for n := 2; b.names[unique]; n++ {
		unique = name + "_" + strconv.Itoa(n)
	}
	b.names[unique] = true
	return unique
}

// AddLink places a URI link annotation on the 1-based page.
func (b *Builder) AddLink(page int, l Link) error {
	pageDict, pageRef, _, err := b.ctx.PageDict(page, false)
	if err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}

	annot := types.Dict{
		"Type":    types.Name("Annot"),
		"Subtype": types.Name("Link"),
		"Rect":    rectArray(l.Rect),
		"Border":  types.NewIntegerArray(0, 0, 2),
		"C":       types.NewNumberArray(0, 0, 1),
		"A": types.Dict{
			"S":   types.Name("URI"),
			"URI": literal(l.URL),
		},
	}

	ref, err := b.ctx.IndRefForNewObject(annot)
	if err != nil {
		return err
	}
	return b.appendAnnot(page, pageDict, pageRef, *ref)
}

// Write serializes the output document.
func (b *Builder) Write(w io.Writer) error {
	if len(b.fields) > 0 {
		if err := b.writeAcroForm(); err != nil {
			return err
		}
	}
	if err := api.WriteContext(b.ctx, w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (b *Builder) writeAcroForm() error {
	catalog, err := b.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	form := types.Dict{}
	if existing, ok := catalog.Find("AcroForm"); ok {
		d, err := b.ctx.DereferenceDict(existing)
		if err != nil {
			return fmt.Errorf("acroform: %w", err)
		}
		if d != nil {
			form = maps.Clone(d)
		}
	}

	var fields types.Array
	if existing, ok := form.Find("Fields"); ok {
		arr, err := b.ctx.DereferenceArray(existing)
		if err != nil {
			return fmt.Errorf("acroform fields: %w", err)
		}
		fields = append(fields, arr...)
	}
	form["Fields"] = append(fields, b.fields...)
	form["NeedAppearances"] = types.Boolean(true)
	form["DA"] = literal("/" + fieldFont + " 0 Tf 0 g")

	helv, err := b.ctx.IndRefForNewObject(types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	})
	if err != nil {
		return err
	}
	form["DR"] = types.Dict{"Font": types.Dict{fieldFont: *helv}}

	catalog["AcroForm"] = form
	return nil
}

// toggleAppearance builds the on and off appearance streams of a checkbox or
// radio widget.
func (b *Builder) toggleAppearance(r geometry.Rect, round bool) (types.Dict, error) {
	w, h := r.Width, r.Height
	bbox := types.NewNumberArray(0, 0, w, h)

	var on string
	if round {
		on = circlePath(w/2, h/2, min(w, h)/4) + " f\n"
	} else {
		on = fmt.Sprintf("%s w %s %s m %s %s l %s %s l S\n",
			num(min(w, h)/10), num(w*0.2), num(h*0.5), num(w*0.4), num(h*0.2), num(w*0.8), num(h*0.8))
	}
	border := fmt.Sprintf("0 g 1 w 0.5 0.5 %s %s re S\n", num(w-1), num(h-1))
	if round {
		border = "0 g 1 w " + circlePath(w/2, h/2, min(w, h)/2-0.5) + " S\n"
	}

	form := func(content string) (*types.IndirectRef, error) {
		return b.addStream(types.Dict{
			"Type":    types.Name("XObject"),
			"Subtype": types.Name("Form"),
			"BBox":    bbox,
		}, []byte(content))
	}

	yes, err := form(border + on)
	if err != nil {
		return nil, err
	}
	off, err := form(border)
	if err != nil {
		return nil, err
	}

	return types.Dict{
		"N": types.Dict{RadioOption: *yes, "Off": *off},
	}, nil
}

func (b *Builder) addImage(pngData []byte) (*types.IndirectRef, error) {
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)

	nrgba := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			nrgba.Set(x, y, img.At(x, y))
			c := nrgba.NRGBAAt(x, y)
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
		}
	}

	mask, err := b.addStream(types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(w),
		"Height":           types.Integer(h),
		"ColorSpace":       types.Name("DeviceGray"),
		"BitsPerComponent": types.Integer(8),
	}, alpha)
	if err != nil {
		return nil, err
	}

	return b.addStream(types.Dict{
		"Type":             types.Name("XObject"),
		"Subtype":          types.Name("Image"),
		"Width":            types.Integer(w),
		"Height":           types.Integer(h),
		"ColorSpace":       types.Name("DeviceRGB"),
		"BitsPerComponent": types.Integer(8),
		"SMask":            *mask,
	}, rgb)
}

// addStream registers a Flate-compressed stream object.
func (b *Builder) addStream(d types.Dict, content []byte) (*types.IndirectRef, error) {
	d["Filter"] = types.Name("FlateDecode")
	sd := types.NewStreamDict(d, 0, nil, nil, []types.PDFFilter{{Name: "FlateDecode"}})
	sd.Content = content
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("encode stream: %w", err)
	}
	sd.Dict["Length"] = types.Integer(len(sd.Raw))

	ref, err := b.ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, fmt.Errorf("register stream: %w", err)
	}
	return ref, nil
}

// pageResources returns a private copy of the page's resource dictionary,
// resolving inherited resources.
func (b *Builder) pageResources(pageDict types.Dict, inherited *model.InheritedPageAttrs) (types.Dict, error) {
	if obj, ok := pageDict.Find("Resources"); ok {
		d, err := b.ctx.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return maps.Clone(d), nil
		}
	}
	if inherited != nil && inherited.Resources != nil {
		return maps.Clone(inherited.Resources), nil
	}
	return types.Dict{}, nil
}

func (b *Builder) subDict(d types.Dict, key string) (types.Dict, error) {
	obj, ok := d.Find(key)
	if !ok {
		return types.Dict{}, nil
	}
	sub, err := b.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return types.Dict{}, nil
	}
	return maps.Clone(sub), nil
}

// contentRefs flattens a Contents entry into a list of stream references.
func (b *Builder) contentRefs(obj types.Object) (types.Array, error) {
	switch o := obj.(type) {
	case types.IndirectRef:
		deref, err := b.ctx.Dereference(o)
		if err != nil {
			return nil, err
		}
		if arr, ok := deref.(types.Array); ok {
			return b.contentRefs(arr)
		}
		return types.Array{o}, nil
	case types.Array:
		var out types.Array
		for _, item := range o {
			refs, err := b.contentRefs(item)
			if err != nil {
				return nil, err
			}
			out = append(out, refs...)
		}
		return out, nil
	case types.StreamDict:
		ref, err := b.ctx.IndRefForNewObject(o)
		if err != nil {
			return nil, err
		}
		return types.Array{*ref}, nil
	}
	return nil, nil
}

func (b *Builder) appendAnnot(page int, pageDict types.Dict, pageRef *types.IndirectRef, ref types.IndirectRef) error {
	var annots types.Array
	if existing, ok := pageDict.Find("Annots"); ok {
		arr, err := b.ctx.DereferenceArray(existing)
		if err != nil {
			return fmt.Errorf("page %d annots: %w", page, err)
		}
		annots = append(annots, arr...)
	}
	pageDict["Annots"] = append(annots, ref)
	return b.update(pageRef, pageDict)
}

func (b *Builder) update(ref *types.IndirectRef, obj types.Object) error {
	if ref == nil {
		return nil
	}
	entry, ok := b.ctx.FindTableEntryForIndRef(ref)
	if !ok || entry == nil {
		return fmt.Errorf("pdf: object %s not found", ref)
	}
	entry.Object = obj
	return nil
}

func rectArray(r geometry.Rect) types.Array {
	return types.NewNumberArray(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// literal returns a PDF string literal with delimiters escaped.
func literal(s string) types.StringLiteral {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", `\n`)
	return types.StringLiteral(r.Replace(s))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// circlePath approximates a circle with four Bézier segments.
func circlePath(cx, cy, r float64) string {
	const k = 0.5523
	c := r * k
	return fmt.Sprintf("%s %s m %s %s %s %s %s %s c %s %s %s %s %s %s c %s %s %s %s %s %s c %s %s %s %s %s %s c",
		num(cx+r), num(cy),
		num(cx+r), num(cy+c), num(cx+c), num(cy+r), num(cx), num(cy+r),
		num(cx-c), num(cy+r), num(cx-r), num(cy+c), num(cx-r), num(cy),
		num(cx-r), num(cy-c), num(cx-c), num(cy-r), num(cx), num(cy-r),
		num(cx+c), num(cy-r), num(cx+r), num(cy-c), num(cx+r), num(cy))
}
