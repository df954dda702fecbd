// Package api serves editing sessions over HTTP: opening documents, editing
// the active page, page operations, versions and export.
package api

import (
	"net/http"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/pkg/middleware"
	"github.com/JaimeStill/pdf-annotator/pkg/openapi"
	"github.com/JaimeStill/pdf-annotator/pkg/routes"
)

// NewModule builds the API handler. Every route, including the generated
// OpenAPI document, is registered under the configured base path. Request
// logging and slash trimming are left to the enclosing server.
func NewModule(cfg *config.Config, rt *Runtime) (http.Handler, error) {
	spec := cfg.API.OpenAPI.NewSpec(cfg.Version)
	spec.AddServer(cfg.API.Domain)

	h := NewHandler(rt.Registry, rt.Recent, rt.Logger, rt.Pagination, rt.MaxUploadSize)

	mux := http.NewServeMux()
	routes.Register(mux, cfg.API.BasePath, spec, h.Routes()...)

	specBytes, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, err
	}
	mux.HandleFunc("GET "+cfg.API.SpecPath(), openapi.ServeSpec(specBytes))

	return middleware.CORS(&cfg.API.CORS)(mux), nil
}
