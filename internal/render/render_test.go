package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasterscope/internal/colormap"
	"rasterscope/internal/geo"
	"rasterscope/internal/layout"
	"rasterscope/internal/raster"
	"rasterscope/internal/viewport"
)

func rowText(c *Canvas, y int) string {
	var sb strings.Builder
	for x := 0; x < c.Width(); x++ {
		sb.WriteRune(c.Get(x, y).Char)
	}
	return sb.String()
}

// newScene sets up a canvas of cols x rows cells showing the whole Earth
// as a two-cell raster: 0 in the west, 10 in the east.
func newScene(cols, rows int) (*MapRenderer, *viewport.Transform, *raster.Layers) {
	view := viewport.New(viewport.DefaultOptions())
	layers := &raster.Layers{}
	grid := raster.GridFromRows([][]float64{{0, 10}})
	layers.Append("halves", raster.NewSampler(grid, geo.WholeEarth, nil))

	m := NewMapRenderer(view, layers, NewCanvas(cols, rows), 2)
	view.SetViewportSize(m.ViewportSize(cols, rows))
	return m, view, layers
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(10, 3)
	assert.Equal(t, 10, c.Width())
	assert.Equal(t, 3, c.Height())
	assert.Equal(t, ' ', c.Get(0, 0).Char)

	c.Set(2, 1, 'x', StyleLabel)
	assert.Equal(t, Cell{Char: 'x', Style: StyleLabel}, c.Get(2, 1))
	c.Set(-1, 0, 'y', StyleLabel)
	c.Set(10, 0, 'y', StyleLabel)
	assert.Equal(t, blank, c.Get(10, 0))

	assert.Equal(t, 3, c.DrawText(1, 0, "abc", StyleLabel))
	c.DrawTextRight(9, 2, "end", StyleLabel)
	assert.Equal(t, " abc      ", rowText(c, 0))
	assert.Equal(t, "       end", rowText(c, 2))

	c.FillRect(0, 0, 3, 3, ' ', tcell.StyleDefault)
	assert.Equal(t, "   c      ", rowText(c, 0))

	c.Clear()
	c.DrawBox(0, 0, 10, 3, StyleFrame)
	assert.Equal(t, "┌────────┐", rowText(c, 0))
	assert.Equal(t, "│        │", rowText(c, 1))
	assert.Equal(t, "└────────┘", rowText(c, 2))

	c.FillRect(1, 1, 2, 1, '#', StyleDim)
	assert.Equal(t, "│##      │", rowText(c, 1))

	assert.Equal(t, 0, NewCanvas(-1, 5).Width())
}

func TestCanvasBlit(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(20, 5)

	c := NewCanvas(3, 1)
	c.DrawText(0, 0, "map", StyleLabel)
	c.Blit(screen, 2, 1)
	screen.Show()

	cells, width, _ := screen.GetContents()
	assert.Equal(t, []rune("m"), cells[1*width+2].Runes)
	assert.Equal(t, []rune("p"), cells[1*width+4].Runes)
}

func TestRenderRaster(t *testing.T) {
	m, _, _ := newScene(8, 8)
	m.RenderRaster()
	c := m.canvas

	west := TermColor(colormap.MapValue(0, 0, 10, colormap.Heat))
	east := TermColor(colormap.MapValue(10, 0, 10, colormap.Heat))

	// The globe is 8x4 virtual pixels, centered: rows 3 and 4.
	assert.Equal(t, "        ", rowText(c, 2))
	assert.Equal(t, "▀▀▀▀▀▀▀▀", rowText(c, 3))
	assert.Equal(t, "▀▀▀▀▀▀▀▀", rowText(c, 4))
	assert.Equal(t, "        ", rowText(c, 5))

	fg, bg, _ := c.Get(1, 3).Style.Decompose()
	assert.Equal(t, west, fg)
	assert.Equal(t, west, bg)
	fg, _, _ = c.Get(6, 4).Style.Decompose()
	assert.Equal(t, east, fg)
}

func TestRenderRasterHalfCells(t *testing.T) {
	m, view, _ := newScene(8, 8)
	view.PanBy(0, 1)
	m.RenderRaster()
	c := m.canvas

	assert.Equal(t, "▄▄▄▄▄▄▄▄", rowText(c, 3), "only the lower half is on the globe")
	assert.Equal(t, "▀▀▀▀▀▀▀▀", rowText(c, 5))

	_, bg, _ := c.Get(0, 5).Style.Decompose()
	assert.Equal(t, tcell.ColorDefault, bg)
}

func TestRenderRasterHiddenLayer(t *testing.T) {
	m, _, layers := newScene(8, 8)
	layers.SetVisible(0, false)
	m.RenderRaster()
	assert.Equal(t, "        ", rowText(m.canvas, 3))
}

func TestRenderRasterUsesCachedImage(t *testing.T) {
	m, _, layers := newScene(8, 8)
	m.RenderRaster()
	m.RenderRaster()
	assert.Equal(t, 1, layers.At(0).Sampler.Builds())

	m.SetPreset(colormap.Gray)
	m.RenderRaster()
	assert.Equal(t, 2, layers.At(0).Sampler.Builds())
}

func TestCellColor(t *testing.T) {
	m, _, _ := newScene(8, 8)
	red := colormap.RGBA{R: 255, A: 255}
	blue := colormap.RGBA{B: 255, A: 255}

	m.canvas.Set(0, 0, '▀', HalfBlockStyle(red, blue))
	assert.Equal(t, Blend(red, blue, 0.5), m.CellColor(0, 0))

	m.canvas.Set(1, 0, '▄', tcell.StyleDefault.Foreground(TermColor(blue)))
	assert.Equal(t, blue, m.CellColor(1, 0))

	assert.Equal(t, colormap.Transparent, m.CellColor(2, 0))
}

func TestBlend(t *testing.T) {
	black := colormap.RGBA{A: 255}
	white := colormap.RGBA{R: 255, G: 255, B: 255, A: 255}

	assert.Equal(t, black, Blend(black, white, 0))
	assert.Equal(t, white, Blend(black, white, 1))
	mid := Blend(black, white, 0.5)
	assert.InDelta(t, 128, int(mid.R), 1)
	assert.Equal(t, white, Blend(colormap.Transparent, white, 0.3))
	assert.Equal(t, black, Blend(black, colormap.Transparent, 0.3))

	assert.Equal(t, tcell.ColorDefault, TermColor(colormap.Transparent))
}

func TestRenderGrid(t *testing.T) {
	m, view, _ := newScene(80, 40)
	g := layout.ComputeGrid(view, view.Frame(), 0)
	require.False(t, g.Suppressed)

	m.RenderRaster()
	m.RenderGrid(g)

	// Prime meridian at x=40, equator at 40 px = row 20.
	assert.Equal(t, '┼', m.canvas.Get(40, 20).Char)
	assert.Equal(t, '│', m.canvas.Get(40, 12).Char)
	assert.Equal(t, '─', m.canvas.Get(45, 20).Char)

	_, bg, _ := m.canvas.Get(40, 12).Style.Decompose()
	assert.NotEqual(t, tcell.ColorDefault, bg, "grid keeps the raster behind it")

	g.Suppressed = true
	m.canvas.Clear()
	m.RenderGrid(g)
	assert.Equal(t, ' ', m.canvas.Get(40, 20).Char)
}

func TestRenderFrame(t *testing.T) {
	m, view, _ := newScene(80, 40)
	g := layout.ComputeGrid(view, view.Frame(), 0)
	m.RenderFrame(g)
	c := m.canvas

	assert.Equal(t, '┌', c.Get(0, 0).Char)
	assert.Equal(t, '┘', c.Get(79, 39).Char)
	assert.Contains(t, rowText(c, 0), "0°")
	assert.Contains(t, rowText(c, 39), "-180°")
	// The equator label sits on both side borders.
	assert.True(t, strings.HasPrefix(rowText(c, 20), "0°"))
	assert.True(t, strings.HasSuffix(rowText(c, 20), "0°"))
}

func TestRenderScaleBar(t *testing.T) {
	m, view, _ := newScene(80, 40)
	bar := layout.ComputeScaleBar(view, view.Frame(), 0.2)
	require.True(t, bar.Visible)
	m.RenderScaleBar(bar)
	c := m.canvas

	// Bar center is 56 px = row 28.
	row := rowText(c, 28)
	assert.Contains(t, row, "████")
	assert.Contains(t, row, "▒")
	assert.Contains(t, rowText(c, 27), bar.Label)

	c.Clear()
	m.RenderScaleBar(layout.ScaleBar{})
	assert.Equal(t, strings.Repeat(" ", 80), rowText(c, 28))
}
