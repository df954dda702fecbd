package storage

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

// Backend names the storage implementation.
type Backend string

const (
	BackendFilesystem Backend = "filesystem"
	BackendMemory     Backend = "memory"
	BackendPostgres   Backend = "postgres"
)

// Validate checks if the backend is supported.
func (b Backend) Validate() error {
	switch b {
	case BackendFilesystem, BackendMemory, BackendPostgres:
		return nil
	default:
		return fmt.Errorf("invalid backend: %s (must be filesystem, memory, or postgres)", b)
	}
}

// Config contains key-value storage configuration.
type Config struct {
	Backend Backend `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/store"
	BasePath string `toml:"base_path"`

	// MaxSize caps the total stored bytes across all keys.
	// Default: "5MB", matching the browser local storage quota.
	MaxSize string `toml:"max_size"`

	// MaxUploadSize caps PDF uploads accepted by the HTTP surface.
	MaxUploadSize string `toml:"max_upload_size"`

	maxSizeVal       int64
	maxUploadSizeVal int64
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Backend       string
	BasePath      string
	MaxSize       string
	MaxUploadSize string
}

func (c *Config) MaxSizeBytes() int64 {
	return c.maxSizeVal
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if size, err := units.FromHumanSize(overlay.MaxSize); err == nil {
		c.MaxSize = overlay.MaxSize
		c.maxSizeVal = size
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/store"
	}
	if c.MaxSize == "" {
		c.MaxSize = "5MB"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Backend != "" {
		if v := os.Getenv(env.Backend); v != "" {
			c.Backend = Backend(v)
		}
	}
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.MaxSize != "" {
		if v := os.Getenv(env.MaxSize); v != "" {
			c.MaxSize = v
		}
	}
	if env.MaxUploadSize != "" {
		if v := os.Getenv(env.MaxUploadSize); v != "" {
			c.MaxUploadSize = v
		}
	}
}

func (c *Config) validate() error {
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if c.Backend == BackendFilesystem && c.BasePath == "" {
		return fmt.Errorf("base_path required")
	}

	size, err := units.FromHumanSize(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	c.maxSizeVal = size

	upload, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if upload <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = upload

	return nil
}
