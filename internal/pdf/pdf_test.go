package pdf_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/internal/pdf/pdftest"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParseRuns(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []pdf.Run
	}{
		{
			name:    "td",
			content: "BT /F1 12 Tf 100 700 Td (Hello) Tj ET",
			want:    []pdf.Run{{Text: "Hello", X: 100, Y: 700, Width: 30, FontSize: 12, FontName: "F1"}},
		},
		{
			name:    "tm with scale",
			content: "BT /F2 1 Tf 10 0 0 10 50 60 Tm (ab) Tj ET",
			want:    []pdf.Run{{Text: "ab", X: 50, Y: 60, Width: 10, FontSize: 10, FontName: "F2"}},
		},
		{
			name:    "cm translates",
			content: "q 1 0 0 1 20 30 cm BT /F1 10 Tf 0 0 Td (x) Tj ET Q",
			want:    []pdf.Run{{Text: "x", X: 20, Y: 30, Width: 5, FontSize: 10, FontName: "F1"}},
		},
		{
			name:    "successive shows advance",
			content: "BT /F1 10 Tf 0 0 Td (ab) Tj (cd) Tj ET",
			want: []pdf.Run{
				{Text: "ab", X: 0, Y: 0, Width: 10, FontSize: 10, FontName: "F1"},
				{Text: "cd", X: 10, Y: 0, Width: 10, FontSize: 10, FontName: "F1"},
			},
		},
		{
			name:    "leading and t star",
			content: "BT /F1 10 Tf 14 TL 0 100 Td (one) Tj T* (two) Tj ET",
			want: []pdf.Run{
				{Text: "one", X: 0, Y: 100, Width: 15, FontSize: 10, FontName: "F1"},
				{Text: "two", X: 0, Y: 86, Width: 15, FontSize: 10, FontName: "F1"},
			},
		},
		{
			name:    "tj array with word gap",
			content: "BT /F1 10 Tf 0 0 Td [(Hel) -20 (lo) -500 (world)] TJ ET",
			want:    []pdf.Run{{Text: "Hello world", X: 0, Y: 0, Width: 55, FontSize: 10, FontName: "F1"}},
		},
		{
			name:    "escapes and blank runs",
			content: `BT /F1 10 Tf 0 0 Td (   ) Tj (a\(b\)) Tj ET`,
			want:    []pdf.Run{{Text: "a(b)", X: 15, Y: 0, Width: 20, FontSize: 10, FontName: "F1"}},
		},
		{
			name:    "inline image skipped",
			content: "BI /W 1 /H 1 ID \x00\xff EI BT /F1 10 Tf 5 5 Td (z) Tj ET",
			want:    []pdf.Run{{Text: "z", X: 5, Y: 5, Width: 5, FontSize: 10, FontName: "F1"}},
		},
		{
			name:    "no text",
			content: "0 0 100 100 re f",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pdf.ParseRuns([]byte(tt.content))
			if len(got) != len(tt.want) {
				t.Fatalf("ParseRuns() = %+v, want %+v", got, tt.want)
			}
			for i, w := range tt.want {
				g := got[i]
				if g.Text != w.Text || g.FontName != w.FontName ||
					!approx(g.X, w.X) || !approx(g.Y, w.Y) ||
					!approx(g.Width, w.Width) || !approx(g.FontSize, w.FontSize) {
					t.Errorf("run %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestRunOverlay(t *testing.T) {
	run := pdf.Run{Text: "Hi", X: 100, Y: 700, Width: 12, FontSize: 12}
	got := run.Overlay(2, 792)

	if got.X != 50 || got.Y != 46 || got.Width != 6 || got.Height != 6 || got.FontSize != 6 {
		t.Errorf("Overlay() = %+v", got)
	}
	if got.Text != "Hi" {
		t.Errorf("Overlay().Text = %q, want %q", got.Text, "Hi")
	}
}

func TestReader(t *testing.T) {
	data := pdftest.Document(pdftest.Letter("Hello"), pdftest.A4(""))

	r, err := pdf.NewReader(data)
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}

	if n := r.PageCount(); n != 2 {
		t.Fatalf("PageCount() = %d, want 2", n)
	}

	size, err := r.PageSize(2)
	if err != nil {
		t.Fatalf("PageSize() failed: %v", err)
	}
	if size != (geometry.Size{Width: 595, Height: 842}) {
		t.Errorf("PageSize(2) = %+v, want 595x842", size)
	}

	runs, err := r.TextRuns(1)
	if err != nil {
		t.Fatalf("TextRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Text != "Hello" {
		t.Fatalf("TextRuns(1) = %+v, want one Hello run", runs)
	}
	if runs[0].X != 72 || runs[0].Y != 720 {
		t.Errorf("run origin = (%v, %v), want (72, 720)", runs[0].X, runs[0].Y)
	}

	if _, err := r.PageSize(3); !errors.Is(err, pdf.ErrPageRange) {
		t.Errorf("PageSize(3) error = %v, want ErrPageRange", err)
	}
}

func TestNewReader_Invalid(t *testing.T) {
	if _, err := pdf.NewReader([]byte("not a pdf")); !errors.Is(err, pdf.ErrInvalidPDF) {
		t.Errorf("NewReader() error = %v, want ErrInvalidPDF", err)
	}
}

func overlayPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return buf.Bytes()
}

func TestBuilder(t *testing.T) {
	src := pdftest.Document(pdftest.Letter("first"), pdftest.Letter("second"))

	b, err := pdf.NewBuilder(src, []int{2, 1, 1})
	if err != nil {
		t.Fatalf("NewBuilder() failed: %v", err)
	}
	if n := b.PageCount(); n != 3 {
		t.Fatalf("PageCount() = %d, want 3", n)
	}

	if err := b.DrawImage(1, overlayPNG(t, 8, 8)); err != nil {
		t.Fatalf("DrawImage() failed: %v", err)
	}

	rect := geometry.Rect{Left: 100, Top: 600, Width: 150, Height: 20}
	fields := []pdf.Field{
		{Kind: pdf.FieldText, Name: "text_1", Rect: rect, FontSize: 14},
		{Kind: pdf.FieldCheckbox, Name: "checkbox_1", Rect: geometry.Rect{Left: 100, Top: 500, Width: 20, Height: 20}},
		{Kind: pdf.FieldRadio, Name: "radio_1", Rect: geometry.Rect{Left: 100, Top: 400, Width: 20, Height: 20}},
	}
	for _, f := range fields {
		if err := b.AddField(2, f); err != nil {
			t.Fatalf("AddField(%s) failed: %v", f.Kind, err)
		}
	}

	if err := b.AddLink(3, pdf.Link{URL: "https://example.com/a(b)", Rect: rect}); err != nil {
		t.Fatalf("AddLink() failed: %v", err)
	}

	var out bytes.Buffer
	if err := b.Write(&out); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	r, err := pdf.NewReader(out.Bytes())
	if err != nil {
		t.Fatalf("NewReader(output) failed: %v", err)
	}
	if n := r.PageCount(); n != 3 {
		t.Errorf("output PageCount() = %d, want 3", n)
	}

	runs, err := r.TextRuns(1)
	if err != nil {
		t.Fatalf("TextRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Text != "second" {
		t.Errorf("output page 1 runs = %+v, want the source page 2 text", runs)
	}
}

func TestBuilder_InvalidImage(t *testing.T) {
	b, err := pdf.NewBuilder(pdftest.Document(pdftest.Letter("x")), []int{1})
	if err != nil {
		t.Fatalf("NewBuilder() failed: %v", err)
	}
	if err := b.DrawImage(1, []byte("nope")); !errors.Is(err, pdf.ErrInvalidImage) {
		t.Errorf("DrawImage() error = %v, want ErrInvalidImage", err)
	}
}

func TestBuilder_UniqueFieldNames(t *testing.T) {
	b, err := pdf.NewBuilder(pdftest.Document(pdftest.Letter("form")), []int{1, 1})
	if err != nil {
		t.Fatalf("NewBuilder() failed: %v", err)
	}

	rect := geometry.Rect{Left: 100, Top: 600, Width: 150, Height: 20}
	placements := []struct {
		page int
		name string
	}{
		{1, "field_1773576000000"},
		{2, "field_1773576000000"},
		{2, "field_1773576000000"},
		{2, ""},
	}
	for _, p := range placements {
		f := pdf.Field{Kind: pdf.FieldText, Name: p.name, Rect: rect}
		if err := b.AddField(p.page, f); err != nil {
			t.Fatalf("AddField(%d, %q) failed: %v", p.page, p.name, err)
		}
	}

	var out bytes.Buffer
	if err := b.Write(&out); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	fields, err := api.FormFields(bytes.NewReader(out.Bytes()), model.NewDefaultConfiguration())
	if err != nil {
		t.Fatalf("FormFields() failed: %v", err)
	}
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	slices.Sort(names)

	want := []string{"field", "field_1773576000000", "field_1773576000000_2", "field_1773576000000_3"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
}
