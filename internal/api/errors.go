package api

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/document"
	"github.com/JaimeStill/pdf-annotator/internal/export"
	"github.com/JaimeStill/pdf-annotator/internal/pdf"
	"github.com/JaimeStill/pdf-annotator/internal/raster"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many open sessions")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid or missing file")
	ErrInvalidRequest  = errors.New("invalid request")
)

var statusMap = []struct {
	err    error
	status int
}{
	{ErrSessionNotFound, http.StatusNotFound},
	{session.ErrObjectNotFound, http.StatusNotFound},
	{session.ErrRunNotFound, http.StatusNotFound},
	{session.ErrVersionNotFound, http.StatusNotFound},
	{document.ErrPageNotFound, http.StatusNotFound},
	{storage.ErrNotFound, http.StatusNotFound},

	{session.ErrBusy, http.StatusConflict},
	{session.ErrNotOpen, http.StatusConflict},
	{session.ErrNothingToUndo, http.StatusConflict},
	{document.ErrLastPage, http.StatusConflict},
	{annotation.ErrNotDuplicable, http.StatusConflict},

	{ErrInvalidRequest, http.StatusBadRequest},
	{ErrInvalidFile, http.StatusBadRequest},
	{session.ErrInvalidOptions, http.StatusBadRequest},
	{session.ErrUnsupportedKind, http.StatusBadRequest},
	{session.ErrUnknownTool, http.StatusBadRequest},
	{annotation.ErrUnknownKind, http.StatusBadRequest},
	{annotation.ErrInvalidDocument, http.StatusBadRequest},
	{recent.ErrUnknownKind, http.StatusBadRequest},
	{pdf.ErrInvalidPDF, http.StatusBadRequest},
	{raster.ErrImageSource, http.StatusBadRequest},
	{export.ErrNoSource, http.StatusBadRequest},

	{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{ErrTooManySessions, http.StatusTooManyRequests},
	{document.ErrFetch, http.StatusBadGateway},
	{storage.ErrQuotaExceeded, http.StatusInsufficientStorage},
	{session.ErrVersionNotSaved, http.StatusInsufficientStorage},
}

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	for _, m := range statusMap {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}
