package session

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the editor timings and limits of a session.
type Config struct {
	// SettleDelay is how long navigation waits after force-committing the
	// outgoing page. Default: "80ms"
	SettleDelay string `toml:"settle_delay"`

	// LoadDelay debounces loading the incoming page. Default: "150ms"
	LoadDelay string `toml:"load_delay"`

	// LoadRetry is how long a load waits while the navigation lock is held.
	// Default: "100ms"
	LoadRetry string `toml:"load_retry"`

	// ReleaseDelay is how long after switching the navigation lock is held.
	// Default: "300ms"
	ReleaseDelay string `toml:"release_delay"`

	// SavingDelay is how long the saving flag stays set after a commit.
	// Default: "50ms"
	SavingDelay string `toml:"saving_delay"`

	// AutosaveDelay debounces commits after canvas changes. Default: "400ms"
	AutosaveDelay string `toml:"autosave_delay"`

	// OverlayWidth is the initial overlay width in pixels. Default: 800
	OverlayWidth float64 `toml:"overlay_width"`

	// PageUndoLimit caps the page operation snapshots kept. Default: 20
	PageUndoLimit int `toml:"page_undo_limit"`

	// NotificationBuffer is the capacity of the notification channel.
	// Default: 16
	NotificationBuffer int `toml:"notification_buffer"`

	settle, load, retry, release, saving, autosave time.Duration
}

// Env maps environment variable names for session configuration.
type Env struct {
	SettleDelay   string
	LoadDelay     string
	LoadRetry     string
	ReleaseDelay  string
	SavingDelay   string
	AutosaveDelay string
	OverlayWidth  string
	PageUndoLimit string
}

func (c *Config) SettleDuration() time.Duration   { return c.settle }
func (c *Config) LoadDuration() time.Duration     { return c.load }
func (c *Config) RetryDuration() time.Duration    { return c.retry }
func (c *Config) ReleaseDuration() time.Duration  { return c.release }
func (c *Config) SavingDuration() time.Duration   { return c.saving }
func (c *Config) AutosaveDuration() time.Duration { return c.autosave }

// Finalize applies defaults, loads environment overrides, and validates the
// session configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.SettleDelay != "" {
		c.SettleDelay = overlay.SettleDelay
	}
	if overlay.LoadDelay != "" {
		c.LoadDelay = overlay.LoadDelay
	}
	if overlay.LoadRetry != "" {
		c.LoadRetry = overlay.LoadRetry
	}
	if overlay.ReleaseDelay != "" {
		c.ReleaseDelay = overlay.ReleaseDelay
	}
	if overlay.SavingDelay != "" {
		c.SavingDelay = overlay.SavingDelay
	}
	if overlay.AutosaveDelay != "" {
		c.AutosaveDelay = overlay.AutosaveDelay
	}
	if overlay.OverlayWidth > 0 {
		c.OverlayWidth = overlay.OverlayWidth
	}
	if overlay.PageUndoLimit > 0 {
		c.PageUndoLimit = overlay.PageUndoLimit
	}
	if overlay.NotificationBuffer > 0 {
		c.NotificationBuffer = overlay.NotificationBuffer
	}
}

func (c *Config) loadDefaults() {
	if c.SettleDelay == "" {
		c.SettleDelay = "80ms"
	}
	if c.LoadDelay == "" {
		c.LoadDelay = "150ms"
	}
	if c.LoadRetry == "" {
		c.LoadRetry = "100ms"
	}
	if c.ReleaseDelay == "" {
		c.ReleaseDelay = "300ms"
	}
	if c.SavingDelay == "" {
		c.SavingDelay = "50ms"
	}
	if c.AutosaveDelay == "" {
		c.AutosaveDelay = "400ms"
	}
	if c.OverlayWidth <= 0 {
		c.OverlayWidth = 800
	}
	if c.PageUndoLimit <= 0 {
		c.PageUndoLimit = 20
	}
	if c.NotificationBuffer <= 0 {
		c.NotificationBuffer = 16
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	str(env.SettleDelay, &c.SettleDelay)
	str(env.LoadDelay, &c.LoadDelay)
	str(env.LoadRetry, &c.LoadRetry)
	str(env.ReleaseDelay, &c.ReleaseDelay)
	str(env.SavingDelay, &c.SavingDelay)
	str(env.AutosaveDelay, &c.AutosaveDelay)

	if env.OverlayWidth != "" {
		if v := os.Getenv(env.OverlayWidth); v != "" {
			if w, err := strconv.ParseFloat(v, 64); err == nil {
				c.OverlayWidth = w
			}
		}
	}
	if env.PageUndoLimit != "" {
		if v := os.Getenv(env.PageUndoLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.PageUndoLimit = n
			}
		}
	}
}

func (c *Config) validate() error {
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"settle_delay", c.SettleDelay, &c.settle},
		{"load_delay", c.LoadDelay, &c.load},
		{"load_retry", c.LoadRetry, &c.retry},
		{"release_delay", c.ReleaseDelay, &c.release},
		{"saving_delay", c.SavingDelay, &c.saving},
		{"autosave_delay", c.AutosaveDelay, &c.autosave},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v < 0 {
			return fmt.Errorf("%s must not be negative", d.name)
		}
		*d.dst = v
	}

	if c.OverlayWidth <= 0 {
		return fmt.Errorf("overlay_width must be positive")
	}
	return nil
}
