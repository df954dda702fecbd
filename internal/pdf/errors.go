package pdf

import "errors"

var (
	// ErrInvalidPDF is returned when source bytes cannot be parsed as a PDF.
	ErrInvalidPDF = errors.New("pdf: invalid document")

	// ErrPageRange is returned for a page number outside the document.
	ErrPageRange = errors.New("pdf: page out of range")

	// ErrInvalidImage is returned when an overlay image cannot be decoded.
	ErrInvalidImage = errors.New("pdf: invalid overlay image")
)
