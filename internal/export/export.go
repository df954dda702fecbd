// Package export composites page annotation state onto a copy of the source
// PDF: vector content is rasterized to a transparent overlay image while form
// fields and links become native PDF objects.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
)

// Builder assembles the output document. Page numbers are 1-based output
// positions.
type Builder interface {
	PageCount() int
	PageSize(page int) (geometry.Size, error)
	DrawImage(page int, png []byte) error
	AddField(page int, f pdf.Field) error
	AddLink(page int, l pdf.Link) error
	Write(w io.Writer) error
}

// OpenFunc copies the listed 1-based source pages of src, in order, into a
// new Builder.
type OpenFunc func(src []byte, pages []int) (Builder, error)

// OpenPDF is the OpenFunc backed by pdfcpu.
func OpenPDF(src []byte, pages []int) (Builder, error) {
	b, err := pdf.NewBuilder(src, pages)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Renderer rasterizes objects given in PDF points onto a bitmap covering a
// page of size points and returns it PNG encoded.
type Renderer interface {
	Render(objs []*annotation.Object, size geometry.Size) ([]byte, error)
}

// Request describes the document to export.
type Request struct {
	// Pages is the display order. Duplicates share a SourcePageNumber.
	Pages []document.Page

	// States maps page IDs to serialized page state.
	States map[string]string

	// OverlayWidth is the pixel width the overlay was edited at.
	OverlayWidth float64
}

// Compositor exports annotated documents.
type Compositor struct {
	open     OpenFunc
	renderer Renderer
	logger   *slog.Logger
}

// New creates a compositor.
func New(open OpenFunc, renderer Renderer, logger *slog.Logger) *Compositor {
	if open == nil {
		open = OpenPDF
	}
	return &Compositor{
		open:     open,
		renderer: renderer,
		logger:   logger.With("system", "export"),
	}
}

// Export produces the output PDF. A page that fails to composite is logged
// and recorded in the report. It is emitted as copied from the source unless
// the failure came after the builder was modified, in which case the report
// marks it partial.
func (c *Compositor) Export(ctx context.Context, src []byte, req Request) ([]byte, *Report, error) {
	if len(src) == 0 {
		return nil, nil, ErrNoSource
	}
	if len(req.Pages) == 0 {
		return nil, nil, ErrNoPages
	}

	sources := make([]int, len(req.Pages))
	for i, p := range req.Pages {
		sources[i] = p.SourcePageNumber
	}

	b, err := c.open(src, sources)
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}

	report := &Report{Pages: make([]PageReport, len(req.Pages))}

	for i, p := range req.Pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		n := i + 1
		pr := &report.Pages[i]
		pr.Page = n
		pr.PageID = p.ID
		pr.SourcePage = p.SourcePageNumber

		state, ok := req.States[p.ID]
		if !ok {
			continue
		}

		if err := c.page(b, n, state, req.OverlayWidth, pr); err != nil {
			pr.Error = err.Error()
			report.Failures++
			c.logger.Error("page export failed", "page", n, "page_id", p.ID, "error", err)
		}
	}

	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return nil, nil, fmt.Errorf("write output: %w", err)
	}

	c.logger.Info("document exported",
		"pages", len(req.Pages),
		"modified", report.Modified(),
		"failures", report.Failures,
		"bytes", buf.Len(),
	)
	return buf.Bytes(), report, nil
}

// page composites one page. Decoding and rasterization happen before the
// builder is touched, so a failure there leaves the page as copied. A failure
// while drawing or placing fields and links keeps whatever was already added
// and marks the page partial.
func (c *Compositor) page(b Builder, n int, state string, overlayWidth float64, pr *PageReport) error {
	objs, err := annotation.Decode([]byte(state))
	if err != nil {
		var skipped int
		if objs, skipped, err = annotation.DecodeLenient([]byte(state)); err != nil {
			return fmt.Errorf("decode state: %w", err)
		}
		c.logger.Warn("page state partially recovered", "page", n, "skipped", skipped)
	}
	if len(objs) == 0 {
		return nil
	}
	pr.Modified = true

	size, err := b.PageSize(n)
	if err != nil {
		return err
	}

	scale := geometry.ScaleFactor(size.Width, overlayWidth)
	parts, err := Partition(objs, scale, size.Height)
	if err != nil {
		return err
	}

	var overlay []byte
	if len(parts.Raster) > 0 {
		if overlay, err = c.renderer.Render(parts.Raster, size); err != nil {
			return fmt.Errorf("rasterize: %w", err)
		}
	}

	if overlay != nil {
		if err := b.DrawImage(n, overlay); err != nil {
			return fmt.Errorf("draw overlay: %w", err)
		}
		pr.Rasterized = len(parts.Raster)
		pr.Partial = true
	}

	for _, f := range parts.Fields {
		if err := b.AddField(n, f); err != nil {
			return fmt.Errorf("add field %s: %w", f.Name, err)
		}
		pr.Partial = true
	}
	for _, l := range parts.Links {
		if err := b.AddLink(n, l); err != nil {
			return fmt.Errorf("add link: %w", err)
		}
		pr.Partial = true
	}
	pr.Partial = false

	pr.Placements = parts.Placements
	return nil
}
