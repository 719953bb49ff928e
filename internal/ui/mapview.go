package ui

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"rasterscope/internal/colormap"
	"rasterscope/internal/config"
	"rasterscope/internal/debug"
	"rasterscope/internal/geo"
	"rasterscope/internal/layout"
	"rasterscope/internal/raster"
	"rasterscope/internal/render"
	"rasterscope/internal/viewport"
)

// fitMargin is the fraction of the view left around a fitted layer
const fitMargin = 0.05

// panStepCells is how far one keyboard pan moves, in cells
const panStepCells = 4

// MapView displays the raster layers with grid and scale bar overlays and
// owns the interactive view transform.
type MapView struct {
	view     *viewport.Transform
	layers   *raster.Layers
	renderer *render.MapRenderer
	canvas   *render.Canvas
	width    int
	height   int

	showGrid      bool
	maxGridLines  int
	scaleFraction float64

	cursor    geo.Point
	hasCursor bool
}

// NewMapView creates a new map view
func NewMapView(width, height int, layers *raster.Layers, cfg config.Config) *MapView {
	view := viewport.New(cfg.ViewportOptions())
	canvas := render.NewCanvas(width, height)
	renderer := render.NewMapRenderer(view, layers, canvas, cfg.Aspect)
	renderer.SetPreset(cfg.ColorPreset())

	m := &MapView{
		view:          view,
		layers:        layers,
		renderer:      renderer,
		canvas:        canvas,
		showGrid:      cfg.ShowGrid,
		maxGridLines:  cfg.MaxGridLines,
		scaleFraction: cfg.ScaleBarFraction,
	}
	m.UpdateDimensions(width, height)
	return m
}

// Draw renders the map view to the screen
func (m *MapView) Draw(screen tcell.Screen) {
	m.canvas.Clear()

	m.renderer.RenderRaster()

	frame := m.view.Frame()
	grid := layout.ComputeGrid(m.view, frame, m.maxGridLines)
	if m.showGrid {
		m.renderer.RenderGrid(grid)
	} else {
		grid = layout.Grid{Suppressed: true}
	}
	m.renderer.RenderFrame(grid)
	m.renderer.RenderScaleBar(layout.ComputeScaleBar(m.view, frame, m.scaleFraction))

	m.canvas.Blit(screen, 0, 0)
}

// UpdateDimensions updates the view dimensions when the screen is resized.
// Zoom and pan are kept.
func (m *MapView) UpdateDimensions(width, height int) {
	m.width = width
	m.height = height

	m.canvas = render.NewCanvas(width, height)
	m.renderer.UpdateCanvas(m.canvas)

	w, h := m.renderer.ViewportSize(width, height)
	m.view.Handle(viewport.Event{Kind: viewport.EventResize, Width: w, Height: h})
}

// HandleMouse translates a terminal mouse event into view events. It
// returns true when the view changed or the cursor moved.
func (m *MapView) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	p := m.renderer.CellToPixel(x, y)
	buttons := ev.Buttons()

	changed := m.setCursor(p)

	switch {
	case buttons&tcell.WheelUp != 0:
		changed = m.view.Handle(viewport.Event{Kind: viewport.EventWheel, Point: p, WheelDelta: 1}) || changed
	case buttons&tcell.WheelDown != 0:
		changed = m.view.Handle(viewport.Event{Kind: viewport.EventWheel, Point: p, WheelDelta: -1}) || changed
	case buttons&tcell.Button1 != 0:
		if !m.view.Dragging() {
			m.view.Handle(viewport.Event{Kind: viewport.EventPress, Point: p, Button: viewport.ButtonPrimary})
		} else {
			changed = m.view.Handle(viewport.Event{Kind: viewport.EventMove, Point: p}) || changed
		}
	case m.view.Dragging():
		m.view.Handle(viewport.Event{Kind: viewport.EventRelease, Point: p, Button: viewport.ButtonPrimary})
	}

	if changed {
		// The world under a fixed cursor moves with zoom and pan.
		m.setCursor(p)
	}
	return changed
}

func (m *MapView) setCursor(p geo.Point) bool {
	w, ok := m.view.Unproject(p)
	if !ok {
		m.hasCursor = false
		return false
	}
	moved := !m.hasCursor || w != m.cursor
	m.cursor, m.hasCursor = w, true
	return moved
}

// Cursor returns the world position under the mouse
func (m *MapView) Cursor() (geo.Point, bool) {
	return m.cursor, m.hasCursor
}

func (m *MapView) center() geo.Point {
	w, h := m.view.ViewportSize()
	return geo.Point{X: w / 2, Y: h / 2}
}

// ZoomIn zooms one step about the view center
func (m *MapView) ZoomIn() {
	m.view.ZoomAt(m.center(), 1)
}

// ZoomOut zooms one step out about the view center
func (m *MapView) ZoomOut() {
	m.view.ZoomAt(m.center(), -1)
}

// Pan moves the view by whole keyboard steps; positive dx looks east,
// positive dy looks north.
func (m *MapView) Pan(dx, dy int) {
	step := float64(panStepCells)
	m.view.PanBy(-float64(dx)*step, float64(dy)*step*m.renderer.Aspect())
}

// Reset shows the whole world again
func (m *MapView) Reset() {
	m.view.Reset()
	debug.Log("view reset")
}

// FitExtent zooms to an extent
func (m *MapView) FitExtent(e geo.Extent) bool {
	if !m.view.FitExtent(e, fitMargin) {
		return false
	}
	debug.Log("fit to lon[%.3f %.3f] lat[%.3f %.3f] zoom %.3g", e.MinLon, e.MaxLon, e.MinLat, e.MaxLat, m.view.Zoom())
	return true
}

// ToggleGrid shows or hides the graticule
func (m *MapView) ToggleGrid() {
	m.showGrid = !m.showGrid
}

// ShowGrid reports whether the graticule is drawn
func (m *MapView) ShowGrid() bool {
	return m.showGrid
}

// CyclePreset switches to the next color preset
func (m *MapView) CyclePreset() colormap.Preset {
	p := m.renderer.Preset().Next()
	m.renderer.SetPreset(p)
	return p
}

// Preset returns the active color preset
func (m *MapView) Preset() colormap.Preset {
	return m.renderer.Preset()
}

// Zoom returns the current zoom factor
func (m *MapView) Zoom() float64 {
	return m.view.Zoom()
}

// Transform exposes the view transform
func (m *MapView) Transform() *viewport.Transform {
	return m.view
}

// Sample returns the value of the topmost visible layer under the cursor
func (m *MapView) Sample() (float64, int) {
	if !m.hasCursor {
		return math.NaN(), -1
	}
	return m.layers.SampleAt(m.cursor.X, m.cursor.Y)
}
