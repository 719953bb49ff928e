// Package config holds the viewer settings, read from an optional JSON
// file and then overridden by command line flags.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"rasterscope/internal/colormap"
	"rasterscope/internal/debug"
	"rasterscope/internal/geo"
	"rasterscope/internal/layout"
	"rasterscope/internal/loader"
	"rasterscope/internal/raster"
	"rasterscope/internal/viewport"
)

var ErrInvalid = errors.New("invalid configuration")

// Calibration is a fixed display range for a dataset kind
type Calibration struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Config struct {
	ZoomMin          float64                `json:"zoom_min"`
	ZoomMax          float64                `json:"zoom_max"`
	ZoomStep         float64                `json:"zoom_step"`
	MaxGridLines     int                    `json:"max_grid_lines"`
	ScaleBarFraction float64                `json:"scale_bar_fraction"`
	Preset           string                 `json:"preset"`
	ShowGrid         bool                   `json:"show_grid"`
	Aspect           float64                `json:"aspect"`
	Calibrations     map[string]Calibration `json:"calibrations"`
	LogFile          string                 `json:"log_file"`
	LogLevel         string                 `json:"log_level"`
	LoadConcurrency  int                    `json:"load_concurrency"`
	ImageCacheSize   int                    `json:"image_cache_size"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		ZoomMin:          viewport.DefaultZoomMin,
		ZoomMax:          viewport.DefaultZoomMax,
		ZoomStep:         viewport.DefaultZoomStep,
		MaxGridLines:     layout.DefaultMaxLines,
		ScaleBarFraction: layout.DefaultScaleBarFraction,
		Preset:           colormap.Heat.String(),
		ShowGrid:         true,
		Aspect:           2.0,
		Calibrations: map[string]Calibration{
			loader.KindLST: {Min: -30, Max: 50},
		},
		LogLevel:        "info",
		LoadConcurrency: loader.DefaultConcurrency,
		ImageCacheSize:  raster.DefaultImageCacheSize,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys missing from the file keep their default; calibrations are merged
// by kind.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks every setting and reports all problems at once
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !(c.ZoomMin > 0) {
		bad("zoom_min must be positive, got %v", c.ZoomMin)
	}
	if !(c.ZoomMax >= c.ZoomMin) || !(c.ZoomMax <= viewport.ZoomLimit) {
		bad("zoom_max %v must be between zoom_min %v and %v", c.ZoomMax, c.ZoomMin, viewport.ZoomLimit)
	}
	if !(c.ZoomStep > 1) {
		bad("zoom_step must be greater than 1, got %v", c.ZoomStep)
	}
	if c.MaxGridLines <= 0 {
		bad("max_grid_lines must be positive, got %d", c.MaxGridLines)
	}
	if !(c.ScaleBarFraction > 0 && c.ScaleBarFraction <= 1) {
		bad("scale_bar_fraction must be in (0, 1], got %v", c.ScaleBarFraction)
	}
	if _, err := colormap.ParsePreset(c.Preset); err != nil {
		bad("%v", err)
	}
	if c.Aspect < 1.0 || c.Aspect > 4.0 {
		bad("aspect must be between 1.0 and 4.0, got %v", c.Aspect)
	}
	for kind, cal := range c.Calibrations {
		if !(cal.Max > cal.Min) || math.IsInf(cal.Min, 0) || math.IsInf(cal.Max, 0) {
			bad("calibration %q: min %v must be below max %v", kind, cal.Min, cal.Max)
		}
	}
	if _, err := debug.ParseLevel(c.LogLevel); err != nil {
		bad("%v", err)
	}
	if c.LoadConcurrency <= 0 {
		bad("load_concurrency must be positive, got %d", c.LoadConcurrency)
	}
	if c.ImageCacheSize <= 0 {
		bad("image_cache_size must be positive, got %d", c.ImageCacheSize)
	}

	return errors.Join(errs...)
}

// ColorPreset returns the parsed preset, falling back to heat
func (c Config) ColorPreset() colormap.Preset {
	p, err := colormap.ParsePreset(c.Preset)
	if err != nil {
		return colormap.Heat
	}
	return p
}

// ViewportOptions returns the zoom limits over the whole Earth
func (c Config) ViewportOptions() viewport.Options {
	return viewport.Options{
		ZoomMin:  c.ZoomMin,
		ZoomMax:  c.ZoomMax,
		ZoomStep: c.ZoomStep,
		World:    geo.WholeEarth,
	}
}

// RasterCalibrations converts the calibration table for samplers
func (c Config) RasterCalibrations() map[string]raster.Range {
	out := make(map[string]raster.Range, len(c.Calibrations))
	for kind, cal := range c.Calibrations {
		out[kind] = raster.Range{Min: cal.Min, Max: cal.Max}
	}
	return out
}

// LoaderOptions returns the background loader settings
func (c Config) LoaderOptions() loader.Options {
	return loader.Options{
		Concurrency:    c.LoadConcurrency,
		Calibrations:   c.RasterCalibrations(),
		ImageCacheSize: c.ImageCacheSize,
	}
}
