package main

import (
	"net/http"
	"strconv"

	"github.com/JaimeStill/pdf-annotator/internal/api"
	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/pkg/routes"
	"github.com/JaimeStill/pdf-annotator/web/docs"
)

// registerRoutes configures the service-level HTTP routes.
func registerRoutes(r routes.System, rt *api.Runtime, cfg *config.Config) error {
	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, rt.Registry)
		},
	})

	if !cfg.API.DocsEnabled() {
		return nil
	}

	docsHandler, err := docs.NewHandler(cfg.API.OpenAPI.Title, cfg.API.SpecPath())
	if err != nil {
		return err
	}
	r.RegisterGroup(docsHandler.Routes())

	return nil
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleReadinessCheck reports not ready once the session cap is reached.
func handleReadinessCheck(w http.ResponseWriter, reg *api.Registry) {
	w.Header().Set("X-Open-Sessions", strconv.Itoa(reg.Len()))
	if reg.Full() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
