package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/JaimeStill/pdf-annotator/pkg/middleware"
	"github.com/JaimeStill/pdf-annotator/pkg/openapi"
	"github.com/JaimeStill/pdf-annotator/pkg/pagination"
)

const (
	EnvAPIBasePath = "API_BASE_PATH"
	EnvAPIDomain   = "API_DOMAIN"
	EnvAPIDocs     = "API_DOCS"
)

var (
	corsEnv = &middleware.CORSEnv{
		Enabled:          "API_CORS_ENABLED",
		Origins:          "API_CORS_ORIGINS",
		AllowedMethods:   "API_CORS_ALLOWED_METHODS",
		AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
		AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
		MaxAge:           "API_CORS_MAX_AGE",
	}
	openAPIEnv = &openapi.ConfigEnv{
		Title:       "API_OPENAPI_TITLE",
		Description: "API_OPENAPI_DESCRIPTION",
		Version:     "API_OPENAPI_VERSION",
	}
	paginationEnv = &pagination.Env{
		DefaultPageSize: "API_PAGINATION_DEFAULT_PAGE_SIZE",
		MaxPageSize:     "API_PAGINATION_MAX_PAGE_SIZE",
	}
)

// APIConfig configures the JSON API mounted under BasePath.
type APIConfig struct {
	// BasePath prefixes every API route. Default: "/api"
	BasePath string `toml:"base_path"`

	// Domain is advertised as the OpenAPI server URL when set.
	Domain string `toml:"domain"`

	// Docs serves the interactive documentation page at /docs. Default: true
	Docs *bool `toml:"docs"`

	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
}

// DocsEnabled reports whether the documentation page is served.
func (c *APIConfig) DocsEnabled() bool {
	return c.Docs == nil || *c.Docs
}

// SpecPath returns the path the generated OpenAPI document is served at.
func (c *APIConfig) SpecPath() string {
	return c.BasePath + "/openapi.json"
}

func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	c.loadEnv()

	if !strings.HasPrefix(c.BasePath, "/") || strings.HasSuffix(c.BasePath, "/") {
		return fmt.Errorf("base_path %q must start and not end with /", c.BasePath)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.Domain != "" {
		c.Domain = overlay.Domain
	}
	if overlay.Docs != nil {
		c.Docs = overlay.Docs
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIDomain); v != "" {
		c.Domain = v
	}
	if v := os.Getenv(EnvAPIDocs); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Docs = &b
		}
	}
}
