package annotation_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/google/go-cmp/cmp"
)

func sampleObjects(t *testing.T) []*annotation.Object {
	t.Helper()

	origin := geometry.Point{X: 10, Y: 20}
	rect, err := annotation.NewShape(annotation.KindRect, origin, "#ff0000")
	if err != nil {
		t.Fatalf("NewShape(rect) failed: %v", err)
	}
	arrow, err := annotation.NewShape(annotation.KindArrow, origin, "")
	if err != nil {
		t.Fatalf("NewShape(arrow) failed: %v", err)
	}
	field, err := annotation.NewField(annotation.KindRadio, origin, time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatalf("NewField(radio) failed: %v", err)
	}
	path, err := annotation.NewDrawingPath("M 10 10 L 40 60 L 80 20", "#00ff00", 3)
	if err != nil {
		t.Fatalf("NewDrawingPath() failed: %v", err)
	}

	run := annotation.TextRun{Text: "Hello", X: 72, Y: 100, Width: 30, Height: 12, FontSize: 12}

	return []*annotation.Object{
		annotation.NewText(origin, "", ""),
		rect,
		arrow,
		annotation.NewStamp(origin, ""),
		annotation.NewStickyNote(origin, "remember"),
		field,
		annotation.NewLink(geometry.Rect{Left: 50, Top: 50, Width: 100, Height: 30}, "https://example.com"),
		annotation.NewRunHighlight(run),
		annotation.GroupDrawing([]*annotation.Object{path}),
		annotation.NewTextMask(run),
		annotation.NewTextReplacement(run, "World"),
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	objs := sampleObjects(t)

	data, err := annotation.Encode(objs)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := annotation.Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	if diff := cmp.Diff(objs, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_ExcludesHitboxes(t *testing.T) {
	runs := []annotation.TextRun{
		{Text: "a", X: 1, Y: 10, Width: 5, Height: 10, FontSize: 10},
		{Text: "b", X: 10, Y: 10, Width: 5, Height: 10, FontSize: 10},
	}
	objs := append(annotation.Hitboxes(runs), annotation.NewText(geometry.Point{}, "kept", ""))

	data, err := annotation.Encode(objs)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if strings.Contains(string(data), annotation.TagHitbox) {
		t.Errorf("encoded state contains a hitbox: %s", data)
	}

	decoded, err := annotation.Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Text != "kept" {
		t.Errorf("decoded = %d objects, want only the text object", len(decoded))
	}
}

func TestEncode_EmptyPage(t *testing.T) {
	data, err := annotation.Encode(nil)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	want := `{"version":"6.0.0","objects":[]}`
	if string(data) != want {
		t.Errorf("Encode(nil) = %s, want %s", data, want)
	}
}

func TestDecode_DropsLegacyTextLayer(t *testing.T) {
	data := `{"version":"6.0.0","objects":[
		{"type":"rect","left":1,"top":2,"width":3,"height":4,"pdfMeta":{"type":"text"}},
		{"type":"pdf-text","left":1,"top":2,"width":3,"height":4,"pdfMeta":{"type":""}},
		{"type":"rect","left":5,"top":6,"width":7,"height":8,"pdfMeta":{"type":"shape","shape":"rect"}}
	]}`

	objs, err := annotation.Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("len(objs) = %d, want 1", len(objs))
	}
	if objs[0].Kind != annotation.KindRect {
		t.Errorf("Kind = %s, want %s", objs[0].Kind, annotation.KindRect)
	}
}

func TestDecode_UntaggedFallsBackToPrimitive(t *testing.T) {
	data := `{"version":"6.0.0","objects":[{"type":"textbox","text":"hi","left":0,"top":0,"pdfMeta":{"type":"textbox"}},{"type":"image","src":"data:,","pdfMeta":{"type":"image"}},{"type":"path","path":"M 0 0 L 1 1","pdfMeta":{"type":"path"}}]}`

	objs, err := annotation.Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}

	want := []annotation.Kind{annotation.KindText, annotation.KindImage, annotation.KindDrawingPath}
	for i, k := range want {
		if objs[i].Kind != k {
			t.Errorf("objs[%d].Kind = %s, want %s", i, objs[i].Kind, k)
		}
		if objs[i].ScaleX != 1 || objs[i].Opacity != 1 {
			t.Errorf("objs[%d] defaults not applied: scaleX=%v opacity=%v", i, objs[i].ScaleX, objs[i].Opacity)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"missing version", `{"objects":[]}`},
		{"unknown tag", `{"version":"6.0.0","objects":[{"type":"blob","pdfMeta":{"type":"blob"}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := annotation.Decode([]byte(tt.data)); err == nil {
				t.Error("Decode() succeeded, want error")
			}
		})
	}
}

func TestDecodeLenient_SkipsCorruptObjects(t *testing.T) {
	data := `{"version":"6.0.0","objects":[
		{"type":"rect","width":"wide","pdfMeta":{"type":"shape","shape":"rect"}},
		{"type":"rect","width":10,"height":10,"pdfMeta":{"type":"highlight","source":"manual"}}
	]}`

	if _, err := annotation.Decode([]byte(data)); err == nil {
		t.Fatal("Decode() succeeded on corrupt object, want error")
	}

	objs, skipped, err := annotation.DecodeLenient([]byte(data))
	if err != nil {
		t.Fatalf("DecodeLenient() failed: %v", err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(objs) != 1 || objs[0].Kind != annotation.KindHighlight {
		t.Errorf("objs = %v, want one highlight", objs)
	}
}

func TestMarshal_WritesKindTag(t *testing.T) {
	o, err := annotation.NewField(annotation.KindCheckbox, geometry.Point{}, time.UnixMilli(42))
	if err != nil {
		t.Fatalf("NewField() failed: %v", err)
	}
	o.Meta.Type = "tampered"

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	var out struct {
		Meta annotation.Meta `json:"pdfMeta"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if out.Meta.Type != annotation.TagFormField || out.Meta.FieldType != annotation.FieldCheckbox {
		t.Errorf("Meta = %+v, want form-field/checkbox", out.Meta)
	}
	if out.Meta.Name != "check_42" {
		t.Errorf("Name = %q, want %q", out.Meta.Name, "check_42")
	}
}

func TestDuplicate(t *testing.T) {
	stamp := annotation.NewStamp(geometry.Point{}, "")

	dup, err := annotation.Duplicate(stamp)
	if err != nil {
		t.Fatalf("Duplicate() failed: %v", err)
	}

	if dup.ID == stamp.ID {
		t.Error("duplicate shares the source ID")
	}
	if dup.Left != stamp.Left+20 || dup.Top != stamp.Top+20 {
		t.Errorf("duplicate at (%v,%v), want (%v,%v)", dup.Left, dup.Top, stamp.Left+20, stamp.Top+20)
	}
	if len(dup.Children) != len(stamp.Children) {
		t.Fatalf("len(Children) = %d, want %d", len(dup.Children), len(stamp.Children))
	}

	dup.Children[1].Text = "CHANGED"
	if stamp.Children[1].Text == "CHANGED" {
		t.Error("duplicate children alias the source children")
	}
}

func TestDuplicate_RefusesTextReplacement(t *testing.T) {
	run := annotation.TextRun{Text: "x", X: 1, Y: 1, Width: 1, Height: 1, FontSize: 1}
	_, err := annotation.Duplicate(annotation.NewTextReplacement(run, ""))

	if !errors.Is(err, annotation.ErrNotDuplicable) {
		t.Errorf("Duplicate() error = %v, want %v", err, annotation.ErrNotDuplicable)
	}
}

func TestNewShape_Defaults(t *testing.T) {
	tests := []struct {
		kind        annotation.Kind
		width       float64
		height      float64
		fill        string
		strokeWidth float64
	}{
		{annotation.KindRect, 100, 100, "transparent", 2},
		{annotation.KindCircle, 100, 100, "transparent", 2},
		{annotation.KindLine, 150, 0, "", 4},
		{annotation.KindArrow, 200, 20, "transparent", 2},
		{annotation.KindRedaction, 150, 50, "black", 0},
		{annotation.KindWhiteout, 150, 50, "white", 0},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			o, err := annotation.NewShape(tt.kind, geometry.Point{}, "")
			if err != nil {
				t.Fatalf("NewShape() failed: %v", err)
			}
			if o.Width != tt.width || o.Height != tt.height {
				t.Errorf("size = %vx%v, want %vx%v", o.Width, o.Height, tt.width, tt.height)
			}
			if o.Fill != tt.fill {
				t.Errorf("Fill = %q, want %q", o.Fill, tt.fill)
			}
			if o.StrokeWidth != tt.strokeWidth {
				t.Errorf("StrokeWidth = %v, want %v", o.StrokeWidth, tt.strokeWidth)
			}
		})
	}
}

func TestNewShape_RejectsNonShape(t *testing.T) {
	if _, err := annotation.NewShape(annotation.KindLink, geometry.Point{}, ""); !errors.Is(err, annotation.ErrUnknownKind) {
		t.Errorf("NewShape(link) error = %v, want %v", err, annotation.ErrUnknownKind)
	}
}

func TestNewText_Defaults(t *testing.T) {
	o := annotation.NewText(geometry.Point{X: 5, Y: 5}, "", "")

	if o.FontFamily != "Arial" || o.FontSize != 12 {
		t.Errorf("font = %s %v, want Arial 12", o.FontFamily, o.FontSize)
	}
	if o.Left != 105 || o.Top != 105 {
		t.Errorf("position = (%v,%v), want (105,105)", o.Left, o.Top)
	}
	size := 12.0
	if want := size * annotation.LineHeight; o.Height != want {
		t.Errorf("Height = %v, want %v", o.Height, want)
	}
}

func TestNewImage_FitsWithinLimit(t *testing.T) {
	o := annotation.NewImage(geometry.Point{}, "data:,", 800, 400, true)

	if got := o.ScaledWidth(); got != 200 {
		t.Errorf("ScaledWidth() = %v, want 200", got)
	}
	if got := o.ScaledHeight(); got != 100 {
		t.Errorf("ScaledHeight() = %v, want 100", got)
	}
	if !o.Meta.Signature {
		t.Error("Signature flag not set")
	}
}

func TestGroupDrawing_Bounds(t *testing.T) {
	a, _ := annotation.NewDrawingPath("M 10 10 L 30 30", "", 2)
	b, _ := annotation.NewDrawingPath("M 50 5 L 60 40", "", 2)

	g := annotation.GroupDrawing([]*annotation.Object{a, b})

	want := geometry.Rect{Left: 10, Top: 5, Width: 50, Height: 35}
	if got := g.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
	if g.Children[0].Left != 0 || g.Children[0].Top != 5 {
		t.Errorf("first child at (%v,%v), want (0,5)", g.Children[0].Left, g.Children[0].Top)
	}
}

func TestKind_Classification(t *testing.T) {
	for _, k := range annotation.Kinds() {
		if k.Primitive() == "" {
			t.Errorf("%s has no primitive", k)
		}
		parsed, err := annotation.ParseKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}

	structured := map[annotation.Kind]bool{
		annotation.KindTextField: true,
		annotation.KindCheckbox:  true,
		annotation.KindRadio:     true,
		annotation.KindLink:      true,
	}
	for _, k := range annotation.Kinds() {
		if k.IsStructured() != structured[k] {
			t.Errorf("%s.IsStructured() = %v", k, k.IsStructured())
		}
	}
}
