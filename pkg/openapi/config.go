package openapi

import (
	"os"
	"strings"
)

// Config holds the document metadata served at the spec endpoint.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`

	// Version overrides the service version reported in info.version.
	Version string `toml:"version"`
}

// ConfigEnv maps environment variable names for the document metadata.
type ConfigEnv struct {
	Title       string
	Description string
	Version     string
}

// Finalize applies defaults and then environment overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "PDF Annotator API"
	}
	if c.Description == "" {
		c.Description = "Editing sessions for annotating PDF pages, with per-page undo, versions and export."
	}
	if env == nil {
		return nil
	}
	for name, field := range map[string]*string{
		env.Title:       &c.Title,
		env.Description: &c.Description,
		env.Version:     &c.Version,
	} {
		if name == "" {
			continue
		}
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*field = v
		}
	}
	return nil
}

// Merge copies the non-empty fields of overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.Title:       overlay.Title,
		&c.Description: overlay.Description,
		&c.Version:     overlay.Version,
	} {
		if src != "" {
			*dst = src
		}
	}
}

// NewSpec creates a document from the configured metadata. serviceVersion
// is used unless Version is set.
func (c *Config) NewSpec(serviceVersion string) *Spec {
	version := serviceVersion
	if c.Version != "" {
		version = c.Version
	}
	spec := NewSpec(c.Title, version)
	spec.SetDescription(c.Description)
	return spec
}
