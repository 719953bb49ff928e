// Package colormap turns scalar samples into display colors through a
// small set of fixed lookup tables.
package colormap

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Epsilon is the smallest value range that is still normalized; narrower
// ranges map every finite value to Neutral.
const Epsilon = 1e-12

// RGBA is an 8-bit per channel color
type RGBA struct {
	R, G, B, A uint8
}

var (
	// Transparent marks samples without data
	Transparent = RGBA{}
	// Neutral is returned when the value range is degenerate
	Neutral = RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Color converts to the image/color representation
func (c RGBA) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex returns the color as a CSS hex string (alpha ignored)
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Preset selects one of the built-in lookup tables
type Preset int

const (
	Heat Preset = iota
	Terrain
	Gray
)

var presetNames = []string{"heat", "terrain", "gray"}

// String returns the lower-case preset name
func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return "unknown"
	}
	return presetNames[p]
}

// Next returns the preset after p, wrapping around
func (p Preset) Next() Preset {
	return Preset((int(p) + 1) % len(presetNames))
}

// Presets returns every built-in preset in declaration order
func Presets() []Preset {
	return []Preset{Heat, Terrain, Gray}
}

// ParsePreset looks up a preset by (case-insensitive) name
func ParsePreset(name string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Preset(i), nil
		}
	}
	return Heat, fmt.Errorf("unknown color preset %q (want one of %s)", name, strings.Join(presetNames, ", "))
}

// Anchor colors, cold to hot / low to high. Parsed once at init.
var lutHex = [][]string{
	Heat:    {"#0000ff", "#0096ff", "#00ff96", "#ffff00", "#ff7800", "#b40000"},
	Terrain: {"#007800", "#a07828", "#b4b4b4", "#ffffff"},
	Gray:    {"#000000", "#ffffff"},
}

var luts = func() [][]RGBA {
	tables := make([][]RGBA, len(lutHex))
	for i, hexes := range lutHex {
		for _, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				panic(fmt.Sprintf("colormap: bad anchor %q: %v", h, err))
			}
			r, g, b := c.RGB255()
			tables[i] = append(tables[i], RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return tables
}()

// LUT returns a copy of the anchor colors of a preset. Unknown presets
// fall back to Heat.
func LUT(p Preset) []RGBA {
	return append([]RGBA(nil), lut(p)...)
}

func lut(p Preset) []RGBA {
	if p < 0 || int(p) >= len(luts) {
		return luts[Heat]
	}
	return luts[p]
}

// MapValue maps value within [vmin, vmax] to a color of the preset.
// Non-finite values are Transparent and a degenerate range yields Neutral.
// Values outside the range clamp to the end colors.
func MapValue(value, vmin, vmax float64, p Preset) RGBA {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Transparent
	}
	if !(vmax-vmin > Epsilon) {
		return Neutral
	}

	ratio := (value - vmin) / (vmax - vmin)
	ratio = math.Max(0, math.Min(1, ratio))
	return interpolateLUT(lut(p), ratio)
}

// interpolateLUT picks the two anchors bracketing ratio*(n-1) and blends
// them channel-wise.
func interpolateLUT(colors []RGBA, ratio float64) RGBA {
	n := len(colors) - 1
	if n < 0 {
		return Neutral
	}
	if n == 0 {
		return colors[0]
	}

	scaled := ratio * float64(n)
	i := int(scaled)
	if i >= n {
		return colors[n]
	}
	return lerp(colors[i], colors[i+1], scaled-float64(i))
}

func lerp(a, b RGBA, t float64) RGBA {
	t = math.Max(0, math.Min(1, t))
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// Ramp returns n colors evenly spaced across the preset, for legends.
func Ramp(p Preset, n int) []RGBA {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []RGBA{MapValue(0.5, 0, 1, p)}
	}

	ramp := make([]RGBA, n)
	for i := range ramp {
		ramp[i] = MapValue(float64(i), 0, float64(n-1), p)
	}
	return ramp
}
