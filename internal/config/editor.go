package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/pdf-annotator/internal/raster"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/session"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
)

var sessionEnv = &session.Env{
	SettleDelay:   "EDITOR_SETTLE_DELAY",
	LoadDelay:     "EDITOR_LOAD_DELAY",
	LoadRetry:     "EDITOR_LOAD_RETRY",
	ReleaseDelay:  "EDITOR_RELEASE_DELAY",
	SavingDelay:   "EDITOR_SAVING_DELAY",
	AutosaveDelay: "EDITOR_AUTOSAVE_DELAY",
	OverlayWidth:  "EDITOR_OVERLAY_WIDTH",
	PageUndoLimit: "EDITOR_PAGE_UNDO_LIMIT",
}

const (
	EnvEditorMaxVersions      = "EDITOR_MAX_VERSIONS"
	EnvEditorRecentLimit      = "EDITOR_RECENT_LIMIT"
	EnvEditorRenderMultiplier = "EDITOR_RENDER_MULTIPLIER"
	EnvEditorMaxSessions      = "EDITOR_MAX_SESSIONS"
)

// EditorConfig configures editing sessions and the stores they share.
type EditorConfig struct {
	Session session.Config `toml:"session"`

	// MaxVersions caps the versions kept per document. Default: 10
	MaxVersions int `toml:"max_versions"`

	// RecentLimit caps each recent image list. Default: 5
	RecentLimit int `toml:"recent_limit"`

	// RenderMultiplier scales overlay rasterization on export. Default: 2
	RenderMultiplier float64 `toml:"render_multiplier"`

	// MaxSessions caps concurrently open sessions. Default: 32
	MaxSessions int `toml:"max_sessions"`
}

func (c *EditorConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Session.Finalize(sessionEnv); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (c *EditorConfig) Merge(overlay *EditorConfig) {
	if overlay.MaxVersions != 0 {
		c.MaxVersions = overlay.MaxVersions
	}
	if overlay.RecentLimit != 0 {
		c.RecentLimit = overlay.RecentLimit
	}
	if overlay.RenderMultiplier != 0 {
		c.RenderMultiplier = overlay.RenderMultiplier
	}
	if overlay.MaxSessions != 0 {
		c.MaxSessions = overlay.MaxSessions
	}
	c.Session.Merge(&overlay.Session)
}

func (c *EditorConfig) loadDefaults() {
	if c.MaxVersions <= 0 {
		c.MaxVersions = versions.DefaultMax
	}
	if c.RecentLimit <= 0 {
		c.RecentLimit = recent.DefaultLimit
	}
	if c.RenderMultiplier <= 0 {
		c.RenderMultiplier = raster.DefaultMultiplier
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 32
	}
}

func (c *EditorConfig) loadEnv() {
	if v := os.Getenv(EnvEditorMaxVersions); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxVersions = n
		}
	}
	if v := os.Getenv(EnvEditorRecentLimit); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RecentLimit = n
		}
	}
	if v := os.Getenv(EnvEditorRenderMultiplier); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RenderMultiplier = f
		}
	}
	if v := os.Getenv(EnvEditorMaxSessions); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxSessions = n
		}
	}
}

func (c *EditorConfig) validate() error {
	if c.MaxVersions < 1 {
		return fmt.Errorf("max_versions must be positive")
	}
	if c.RecentLimit < 1 {
		return fmt.Errorf("recent_limit must be positive")
	}
	if c.RenderMultiplier <= 0 || c.RenderMultiplier > 8 {
		return fmt.Errorf("render_multiplier must be in (0, 8]")
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be positive")
	}
	return nil
}
