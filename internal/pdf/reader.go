// Package pdf adapts pdfcpu to the editor: it reads page geometry and text
// runs from a source document and builds exported documents from it.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/JaimeStill/pdf-annotator/internal/geometry"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Reader exposes the page geometry and text of a parsed document.
type Reader struct {
	ctx  *model.Context
	dims []types.Dim
}

// NewReader parses data.
func NewReader(data []byte) (*Reader, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), configuration())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	dims, err := pageDims(ctx)
	if err != nil {
		return nil, err
	}
	return &Reader{ctx: ctx, dims: dims}, nil
}

// pageDims reads the effective page dimensions of a parsed document.
func pageDims(ctx *model.Context) ([]types.Dim, error) {
	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("%w: page dimensions: %v", ErrInvalidPDF, err)
	}
	if len(dims) != ctx.PageCount {
		return nil, fmt.Errorf("%w: page dimensions cover %d of %d pages", ErrInvalidPDF, len(dims), ctx.PageCount)
	}
	return dims, nil
}

// PageCount returns the number of pages.
func (r *Reader) PageCount() int {
	return len(r.dims)
}

// PageSizes returns the point dimensions of every page in order.
func (r *Reader) PageSizes() []geometry.Size {
	sizes := make([]geometry.Size, len(r.dims))
	for i, d := range r.dims {
		sizes[i] = geometry.Size{Width: d.Width, Height: d.Height}
	}
	return sizes
}

// PageSize returns the point dimensions of the 1-based page.
func (r *Reader) PageSize(page int) (geometry.Size, error) {
	if page < 1 || page > len(r.dims) {
		return geometry.Size{}, fmt.Errorf("%w: %d", ErrPageRange, page)
	}
	d := r.dims[page-1]
	return geometry.Size{Width: d.Width, Height: d.Height}, nil
}

// TextRuns returns the text runs of the 1-based page in PDF space.
func (r *Reader) TextRuns(page int) ([]Run, error) {
	content, err := r.content(page)
	if err != nil {
		return nil, err
	}
	return ParseRuns(content), nil
}

func (r *Reader) content(page int) ([]byte, error) {
	if page < 1 || page > len(r.dims) {
		return nil, fmt.Errorf("%w: %d", ErrPageRange, page)
	}

	rd, err := pdfcpu.ExtractPageContent(r.ctx, page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	return io.ReadAll(rd)
}
