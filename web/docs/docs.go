// Package docs provides the interactive API documentation page using Scalar UI.
// The page is embedded at compile time and loads the generated OpenAPI document.
package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/JaimeStill/pdf-annotator/pkg/routes"
)

//go:embed index.html
var indexTemplate string

var index = template.Must(template.New("index").Parse(indexTemplate))

// Handler serves the Scalar API documentation interface.
type Handler struct {
	page []byte
}

// NewHandler renders the documentation page for the OpenAPI document served
// at specURL.
func NewHandler(title, specURL string) (*Handler, error) {
	var buf bytes.Buffer
	err := index.Execute(&buf, struct {
		Title   string
		SpecURL string
	}{title, specURL})
	if err != nil {
		return nil, fmt.Errorf("render docs page: %w", err)
	}
	return &Handler{page: buf.Bytes()}, nil
}

// Routes returns the route group for documentation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/docs",
		Tags:        []string{"Documentation"},
		Description: "Interactive API documentation powered by Scalar",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.serveIndex},
		},
	}
}

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(h.page)
}
