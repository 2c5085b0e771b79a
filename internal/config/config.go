// Package config holds the runtime configuration for a render. Values come
// from .lifelines.yaml, LIFELINES_* env vars, and CLI flags, in ascending
// precedence, with built-in defaults underneath.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/peledor/lifelines/internal/layout"
	"github.com/peledor/lifelines/internal/scale"
)

// ErrInvalid reports an out-of-range configuration value.
var ErrInvalid = errors.New("invalid config")

// CanvasConfig sizes the output document.
type CanvasConfig struct {
	Width       float64 `mapstructure:"width"`
	MarginX     float64 `mapstructure:"margin_x"`
	MarginTop   float64 `mapstructure:"margin_top"`
	StrokeWidth float64 `mapstructure:"stroke_width"`
	Background  string  `mapstructure:"background"`
	Font        string  `mapstructure:"font"`
}

// BandConfig sizes the lane bands.
type BandConfig struct {
	RowHeight     float64 `mapstructure:"row_height"`
	RowGap        float64 `mapstructure:"row_gap"`
	LanePadding   float64 `mapstructure:"lane_padding"`
	MinLaneHeight float64 `mapstructure:"min_lane_height"`
	SectionGap    float64 `mapstructure:"section_gap"`
}

// Config is the full runtime configuration.
type Config struct {
	RTL        bool         `mapstructure:"rtl"`
	Now        string       `mapstructure:"now"` // present-edge override, YYYY-MM-DD
	BaseRadius float64      `mapstructure:"base_radius"`
	Catalog    string       `mapstructure:"catalog"`  // optional lanes.toml path
	DiagLog    string       `mapstructure:"diag_log"` // optional JSONL trail path
	DebounceMS int          `mapstructure:"debounce_ms"`
	Canvas     CanvasConfig `mapstructure:"canvas"`
	Bands      BandConfig   `mapstructure:"bands"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("rtl", true)
	viper.SetDefault("now", "")
	viper.SetDefault("base_radius", 8.0)
	viper.SetDefault("catalog", "")
	viper.SetDefault("diag_log", "")
	viper.SetDefault("debounce_ms", 250)
	viper.SetDefault("canvas.width", 1400.0)
	viper.SetDefault("canvas.margin_x", 60.0)
	viper.SetDefault("canvas.margin_top", 20.0)
	viper.SetDefault("canvas.stroke_width", 4.0)
	viper.SetDefault("canvas.background", "")
	viper.SetDefault("canvas.font", "sans-serif")
	viper.SetDefault("bands.row_height", 6.0)
	viper.SetDefault("bands.row_gap", 4.0)
	viper.SetDefault("bands.lane_padding", 12.0)
	viper.SetDefault("bands.min_lane_height", 40.0)
	viper.SetDefault("bands.section_gap", 30.0)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Validate checks value ranges before a render starts.
func (c Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0:
		return fmt.Errorf("%w: canvas.width %v", ErrInvalid, c.Canvas.Width)
	case c.Canvas.MarginX < 0 || 2*c.Canvas.MarginX >= c.Canvas.Width:
		return fmt.Errorf("%w: canvas.margin_x %v leaves no drawable range", ErrInvalid, c.Canvas.MarginX)
	case c.Canvas.StrokeWidth <= 0:
		return fmt.Errorf("%w: canvas.stroke_width %v", ErrInvalid, c.Canvas.StrokeWidth)
	case c.BaseRadius <= 0:
		return fmt.Errorf("%w: base_radius %v", ErrInvalid, c.BaseRadius)
	case c.Bands.RowHeight <= 0:
		return fmt.Errorf("%w: bands.row_height %v", ErrInvalid, c.Bands.RowHeight)
	case c.Bands.RowGap < 0 || c.Bands.LanePadding < 0 || c.Bands.MinLaneHeight < 0 || c.Bands.SectionGap < 0:
		return fmt.Errorf("%w: band metrics must not be negative", ErrInvalid)
	case c.DebounceMS < 0:
		return fmt.Errorf("%w: debounce_ms %d", ErrInvalid, c.DebounceMS)
	}
	if _, err := c.PresentDate(time.Time{}); err != nil {
		return err
	}
	return nil
}

// Metrics maps the band configuration onto layout metrics.
func (c Config) Metrics() layout.Metrics {
	return layout.Metrics{
		RowHeight:     c.Bands.RowHeight,
		RowGap:        c.Bands.RowGap,
		LanePadding:   c.Bands.LanePadding,
		MinLaneHeight: c.Bands.MinLaneHeight,
		SectionGap:    c.Bands.SectionGap,
		Top:           c.Canvas.MarginTop,
	}
}

// Direction returns the configured reading direction.
func (c Config) Direction() scale.Dir {
	if c.RTL {
		return scale.RTL
	}
	return scale.LTR
}

// Range returns the drawable horizontal pixel range.
func (c Config) Range() (minX, maxX float64) {
	return c.Canvas.MarginX, c.Canvas.Width - c.Canvas.MarginX
}

// Debounce returns the watch-mode debounce window.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// PresentDate resolves the present-edge override, falling back to the given
// date when none is configured.
func (c Config) PresentDate(fallback time.Time) (time.Time, error) {
	if c.Now == "" {
		return fallback, nil
	}
	for _, form := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(form, c.Now); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: now %q is not a date", ErrInvalid, c.Now)
}
