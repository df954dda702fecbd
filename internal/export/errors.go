package export

import "errors"

var (
	// ErrNoSource is returned when export is requested without source PDF bytes.
	ErrNoSource = errors.New("export: no source document")

	// ErrNoPages is returned when the request lists no pages.
	ErrNoPages = errors.New("export: no pages")
)
