package document

import "errors"

var (
	// ErrLastPage is returned when deleting the only remaining page.
	ErrLastPage = errors.New("document: cannot delete the last page")

	// ErrPageNotFound is returned when a page ID or position does not exist.
	ErrPageNotFound = errors.New("document: page not found")

	// ErrFetch is returned when a remote PDF cannot be downloaded.
	ErrFetch = errors.New("fetch pdf")
)
