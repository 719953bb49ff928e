package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"rasterscope/internal/colormap"
)

// Styles for overlays and panels
var (
	StyleFrame        = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleTick         = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleScaleLight   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleScaleDark    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	StyleScaleLabel   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	StyleLabel        = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleDim          = tcell.StyleDefault.Foreground(tcell.ColorGray)
	StyleError        = tcell.StyleDefault.Foreground(tcell.ColorRed)
	StyleListItem     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	StyleListSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// GridColor is the graticule color, blended over the raster beneath it
var GridColor = colormap.RGBA{R: 220, G: 220, B: 220, A: 255}

// gridAlpha is how much of GridColor shows over a raster cell
const gridAlpha = 0.6

// TermColor converts a colormap color to a terminal color. Transparent
// colors become the terminal default.
func TermColor(c colormap.RGBA) tcell.Color {
	if c.A == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Blend mixes b into a by t in RGB space; a transparent side yields the
// other color unchanged.
func Blend(a, b colormap.RGBA, t float64) colormap.RGBA {
	switch {
	case a.A == 0:
		return b
	case b.A == 0:
		return a
	}
	ca, _ := colorful.MakeColor(a.Color())
	cb, _ := colorful.MakeColor(b.Color())
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return colormap.RGBA{R: r, G: g, B: bl, A: 255}
}

// HalfBlockStyle styles an upper-half-block cell so that the glyph shows
// top and the cell background shows bottom.
func HalfBlockStyle(top, bottom colormap.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(TermColor(top)).Background(TermColor(bottom))
}
