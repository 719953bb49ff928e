package render

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/colormap"
	"rasterscope/internal/debug"
	"rasterscope/internal/geo"
	"rasterscope/internal/raster"
	"rasterscope/internal/viewport"
)

// MapRenderer paints the visible raster layers and overlays onto a canvas.
//
// The viewport works in virtual pixels: a terminal cell is one pixel wide
// and aspect pixels tall, so degrees stay square on screen. Each cell
// shows two samples with an upper half block.
type MapRenderer struct {
	view   *viewport.Transform
	layers *raster.Layers
	canvas *Canvas
	aspect float64
	preset colormap.Preset
}

// NewMapRenderer creates a new map renderer
func NewMapRenderer(view *viewport.Transform, layers *raster.Layers, canvas *Canvas, aspect float64) *MapRenderer {
	if !(aspect > 0) {
		aspect = 2
	}
	return &MapRenderer{
		view:   view,
		layers: layers,
		canvas: canvas,
		aspect: aspect,
	}
}

// SetPreset selects the color preset used for raster layers
func (m *MapRenderer) SetPreset(p colormap.Preset) {
	m.preset = p
}

// Preset returns the current color preset
func (m *MapRenderer) Preset() colormap.Preset {
	return m.preset
}

// Aspect returns the virtual pixel height of a cell
func (m *MapRenderer) Aspect() float64 {
	return m.aspect
}

// UpdateCanvas updates the renderer's canvas
func (m *MapRenderer) UpdateCanvas(canvas *Canvas) {
	m.canvas = canvas
}

// ViewportSize returns the virtual pixel size of a canvas of the given
// cell dimensions.
func (m *MapRenderer) ViewportSize(cols, rows int) (float64, float64) {
	return float64(cols), float64(rows) * m.aspect
}

// CellToPixel returns the virtual pixel at the center of a cell
func (m *MapRenderer) CellToPixel(x, y int) geo.Point {
	return geo.Point{X: float64(x) + 0.5, Y: (float64(y) + 0.5) * m.aspect}
}

// PixelToCell returns the cell containing a virtual pixel
func (m *MapRenderer) PixelToCell(p geo.Point) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y / m.aspect))
}

// colorAt returns the topmost opaque color of the visible layers at a
// world point. The stack is in draw order, so the last layer is on top.
func colorAt(stack []*raster.Sampler, lon, lat float64, p colormap.Preset) colormap.RGBA {
	for i := len(stack) - 1; i >= 0; i-- {
		if c := stack[i].ColorAt(lon, lat, p); c.A != 0 {
			return c
		}
	}
	return colormap.Transparent
}

// RenderRaster paints every visible layer. Cells outside all layers keep
// whatever the canvas held.
func (m *MapRenderer) RenderRaster() {
	inv, ok := m.view.ScreenToWorld()
	if !ok {
		return
	}

	var stack []*raster.Sampler
	for _, l := range m.layers.VisibleLayers() {
		if l.Sampler.Renderable() {
			stack = append(stack, l.Sampler)
		}
	}
	if len(stack) == 0 {
		return
	}
	data := m.layers.Extent()

	painted := 0
	for y := 0; y < m.canvas.Height(); y++ {
		for x := 0; x < m.canvas.Width(); x++ {
			px := float64(x) + 0.5
			top := inv.Apply(geo.Point{X: px, Y: (float64(y) + 0.25) * m.aspect})
			bottom := inv.Apply(geo.Point{X: px, Y: (float64(y) + 0.75) * m.aspect})
			if !data.Contains(top.X, top.Y) && !data.Contains(bottom.X, bottom.Y) {
				continue
			}

			ct := colorAt(stack, top.X, top.Y, m.preset)
			cb := colorAt(stack, bottom.X, bottom.Y, m.preset)
			switch {
			case ct.A == 0 && cb.A == 0:
				continue
			case ct.A == 0:
				m.canvas.Set(x, y, '▄', tcell.StyleDefault.Foreground(TermColor(cb)))
			default:
				m.canvas.Set(x, y, '▀', HalfBlockStyle(ct, cb))
			}
			painted++
		}
	}

	debug.Log("raster: %d layers, %d cells painted", len(stack), painted)
}

// CellColor returns the raster color under a cell, averaging its halves.
// Overlays use it to blend over the image.
func (m *MapRenderer) CellColor(x, y int) colormap.RGBA {
	cell := m.canvas.Get(x, y)
	fg, bg, _ := cell.Style.Decompose()

	toRGBA := func(c tcell.Color) colormap.RGBA {
		if c == tcell.ColorDefault || !c.Valid() {
			return colormap.Transparent
		}
		r, g, b := c.RGB()
		return colormap.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
	}

	switch cell.Char {
	case '▀':
		return Blend(toRGBA(fg), toRGBA(bg), 0.5)
	case '▄':
		return toRGBA(fg)
	}
	return toRGBA(bg)
}

// DrawLine implements Bresenham's line algorithm over cells
func (m *MapRenderer) DrawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)

	sx := -1
	if x0 < x1 {
		sx = 1
	}

	sy := -1
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy

	for {
		plot(x0, y0)

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err

		if e2 > -dy {
			err -= dy
			x0 += sx
		}

		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
