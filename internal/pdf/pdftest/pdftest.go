// Package pdftest builds small well-formed PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
)

// Page describes one page of a generated document.
type Page struct {
	Width  float64
	Height float64

	// Content is the raw, unfiltered content stream.
	Content string
}

// Letter returns a US letter page showing text at (72, 720) in 12pt Helvetica.
func Letter(text string) Page {
	return Page{Width: 612, Height: 792, Content: TextContent(72, 720, 12, text)}
}

// A4 returns an A4 page showing text at (72, 770) in 12pt Helvetica.
func A4(text string) Page {
	return Page{Width: 595, Height: 842, Content: TextContent(72, 770, 12, text)}
}

// TextContent returns a content stream showing text with its baseline at
// (x, y).
func TextContent(x, y, size float64, text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf("BT /F1 %g Tf %g %g Td (%s) Tj ET", size, x, y, text)
}

// Document returns the bytes of a PDF containing pages in order. Every page
// shares a Helvetica font resource named F1.
func Document(pages ...Page) []byte {
	var objs []string

	// 1: catalog, 2: page tree, 3: font, then a page and content pair per page.
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, p := range pages {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
				p.Width, p.Height, 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(p.Content)+1, p.Content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}
