package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/export"
	"github.com/JaimeStill/pdf-annotator/internal/raster"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
	"github.com/JaimeStill/pdf-annotator/pkg/pagination"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

const fetchTimeout = 30 * time.Second

// Runtime holds the shared stores and the session registry behind the API.
type Runtime struct {
	Logger        *slog.Logger
	Storage       storage.System
	Versions      *versions.Store
	Recent        *recent.Store
	Registry      *Registry
	Pagination    pagination.Config
	MaxUploadSize int64
}

// NewRuntime builds the version and recent stores over store and a
// registry whose sessions share them.
func NewRuntime(cfg *config.Config, logger *slog.Logger, store storage.System) (*Runtime, error) {
	renderer, err := raster.New(cfg.Editor.RenderMultiplier)
	if err != nil {
		return nil, fmt.Errorf("renderer init failed: %w", err)
	}

	vs := versions.New(store, cfg.Editor.MaxVersions, logger)
	rs := recent.New(store, cfg.Editor.RecentLimit, logger)

	deps := session.Deps{
		Versions:   vs,
		Recent:     rs,
		Compositor: export.New(export.OpenPDF, renderer, logger),
		Renderer:   renderer,
		Client:     &http.Client{Timeout: fetchTimeout},
		Logger:     logger,
	}

	return &Runtime{
		Logger:        logger,
		Storage:       store,
		Versions:      vs,
		Recent:        rs,
		Registry:      NewRegistry(&cfg.Editor.Session, deps, cfg.Editor.MaxSessions, logger),
		Pagination:    cfg.API.Pagination,
		MaxUploadSize: cfg.Storage.MaxUploadSizeBytes(),
	}, nil
}

// Close closes every open session.
func (rt *Runtime) Close() {
	rt.Registry.Close()
}
