package main

import (
	"log/slog"

	"github.com/JaimeStill/pdf-annotator/pkg/middleware"
)

// buildMiddleware creates the outer middleware stack with slash trimming and request logging.
func buildMiddleware(logger *slog.Logger) middleware.System {
	middlewareSys := middleware.New()
	middlewareSys.Use(middleware.TrimSlash())
	middlewareSys.Use(middleware.Logger(logger))
	return middlewareSys
}
