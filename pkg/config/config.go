// Package config handles loading and saving archlens configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/archlens/config.yaml
//   - State:   ~/.local/state/archlens/ (debug log, exported snapshots)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "archlens"

// FocusConfig tunes focus mode and the canvas camera. Sizes are in plane
// units (pixels of the original diagram).
type FocusConfig struct {
	ScatterFactor float64 `yaml:"scatter_factor,omitempty"` // 0 < f < 1
	DwellMs       int     `yaml:"dwell_ms,omitempty"`
	ZoomThreshold float64 `yaml:"zoom_threshold,omitempty"` // minimum zoom for hover focus
	CardWidth     float64 `yaml:"card_width,omitempty"`
	CardHeight    float64 `yaml:"card_height,omitempty"`
	NodeWidth     float64 `yaml:"node_width,omitempty"` // used when a diagram omits sizes
	NodeHeight    float64 `yaml:"node_height,omitempty"`
	MinZoom       float64 `yaml:"min_zoom,omitempty"`
	MaxZoom       float64 `yaml:"max_zoom,omitempty"`
	FitPadding    float64 `yaml:"fit_padding,omitempty"`
}

// TimelineConfig tunes the timeline window.
type TimelineConfig struct {
	PaddingRatio float64 `yaml:"padding_ratio,omitempty"`
	PanRatio     float64 `yaml:"pan_ratio,omitempty"`
	ZoomStep     float64 `yaml:"zoom_step,omitempty"` // > 1; zoom in divides by it
	NavigateDays float64 `yaml:"navigate_days,omitempty"`
	PageSize     int     `yaml:"page_size,omitempty"`
}

// UIConfig holds UI preferences.
type UIConfig struct {
	DefaultLayer string `yaml:"default_layer,omitempty"` // live, building, platform
	DiagramPath  string `yaml:"diagram,omitempty"`
	EventsPath   string `yaml:"events,omitempty"`
	Watch        *bool  `yaml:"watch,omitempty"` // reload on file change (default true)
}

// Config is the top-level configuration.
type Config struct {
	Focus    FocusConfig    `yaml:"focus,omitempty"`
	Timeline TimelineConfig `yaml:"timeline,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with the stock tuning values.
func DefaultConfig() Config {
	return Config{
		Focus: FocusConfig{
			ScatterFactor: 0.78,
			DwellMs:       600,
			ZoomThreshold: 0.9,
			CardWidth:     300,
			CardHeight:    280,
			NodeWidth:     220,
			NodeHeight:    160,
			MinZoom:       0.2,
			MaxZoom:       4,
			FitPadding:    0.15,
		},
		Timeline: TimelineConfig{
			PaddingRatio: 0.12,
			PanRatio:     0.25,
			ZoomStep:     1.5,
			NavigateDays: 3,
			PageSize:     5,
		},
		UI: UIConfig{
			DefaultLayer: "live",
		},
	}
}

// DwellDelay returns the dwell time as a duration.
func (f FocusConfig) DwellDelay() time.Duration {
	return time.Duration(f.DwellMs) * time.Millisecond
}

// NavigateWidth returns the navigate window width as a duration.
func (t TimelineConfig) NavigateWidth() time.Duration {
	return time.Duration(t.NavigateDays * float64(24*time.Hour))
}

// WatchEnabled reports whether live reload is on.
func (u UIConfig) WatchEnabled() bool {
	return u.Watch == nil || *u.Watch
}

// Validate reports the first out-of-range value.
func (c Config) Validate() error {
	f, t := c.Focus, c.Timeline
	switch {
	case f.ScatterFactor <= 0 || f.ScatterFactor >= 1:
		return fmt.Errorf("focus.scatter_factor must be in (0, 1), got %v", f.ScatterFactor)
	case f.DwellMs <= 0:
		return fmt.Errorf("focus.dwell_ms must be positive, got %d", f.DwellMs)
	case f.CardWidth <= 0 || f.CardHeight <= 0:
		return fmt.Errorf("focus card size must be positive, got %vx%v", f.CardWidth, f.CardHeight)
	case f.NodeWidth <= 0 || f.NodeHeight <= 0:
		return fmt.Errorf("focus node size must be positive, got %vx%v", f.NodeWidth, f.NodeHeight)
	case f.MinZoom <= 0 || f.MaxZoom < f.MinZoom:
		return fmt.Errorf("focus zoom bounds invalid: [%v, %v]", f.MinZoom, f.MaxZoom)
	case t.PaddingRatio < 0:
		return fmt.Errorf("timeline.padding_ratio must not be negative, got %v", t.PaddingRatio)
	case t.PanRatio <= 0:
		return fmt.Errorf("timeline.pan_ratio must be positive, got %v", t.PanRatio)
	case t.ZoomStep <= 1:
		return fmt.Errorf("timeline.zoom_step must be greater than 1, got %v", t.ZoomStep)
	case t.NavigateDays <= 0:
		return fmt.Errorf("timeline.navigate_days must be positive, got %v", t.NavigateDays)
	case t.PageSize < 1:
		return fmt.Errorf("timeline.page_size must be at least 1, got %d", t.PageSize)
	}
	return nil
}

// ConfigDir returns the XDG config directory for archlens.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// StateDir returns the XDG state directory for archlens.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file
// keep their defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.UI.DiagramPath = expandHome(cfg.UI.DiagramPath)
	cfg.UI.EventsPath = expandHome(cfg.UI.EventsPath)
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
