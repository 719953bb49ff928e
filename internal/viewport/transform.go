// Package viewport maintains the zoom/pan state of the map canvas and the
// affine transform between world (lon/lat degrees) and screen pixels.
package viewport

import (
	"log/slog"
	"math"

	"rasterscope/internal/debug"
	"rasterscope/internal/geo"
)

// Default zoom limits and wheel step
const (
	DefaultZoomMin  = 0.25
	DefaultZoomMax  = 200.0
	DefaultZoomStep = 1.2
	// ZoomLimit is the largest accepted zoom bound. Past it a scale bar
	// would need lengths below a metre.
	ZoomLimit = 1e5
)

// Options configures a Transform
type Options struct {
	ZoomMin  float64
	ZoomMax  float64
	ZoomStep float64
	// World is the fixed reference rectangle; the zero value means the
	// whole Earth.
	World geo.Extent
}

// DefaultOptions returns the standard zoom limits over the whole Earth
func DefaultOptions() Options {
	return Options{
		ZoomMin:  DefaultZoomMin,
		ZoomMax:  DefaultZoomMax,
		ZoomStep: DefaultZoomStep,
		World:    geo.WholeEarth,
	}
}

// Transform holds the view state. The composed world-to-screen matrix is
//
//	translate(viewportCenter + pan) ∘ scale(z*base, -z*base) ∘ translate(-world.Center())
//
// with base = min(width/world.Width(), height/world.Height()). It is not
// safe for concurrent use; the UI goroutine owns it.
type Transform struct {
	zoom     float64
	zoomMin  float64
	zoomMax  float64
	zoomStep float64
	pan      geo.Point
	world    geo.Extent
	width    float64
	height   float64

	dragging   bool
	dragButton Button
	lastPos    geo.Point
}

// New creates a transform at zoom 1 with no pan
func New(opts Options) *Transform {
	def := DefaultOptions()
	if opts.ZoomMin <= 0 {
		opts.ZoomMin = def.ZoomMin
	}
	opts.ZoomMin = math.Min(opts.ZoomMin, ZoomLimit)
	if opts.ZoomMax < opts.ZoomMin {
		opts.ZoomMax = math.Max(def.ZoomMax, opts.ZoomMin)
	}
	opts.ZoomMax = math.Min(opts.ZoomMax, ZoomLimit)
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = def.ZoomStep
	}
	if !opts.World.Valid() {
		opts.World = def.World
	}

	return &Transform{
		zoom:     clamp(1, opts.ZoomMin, opts.ZoomMax),
		zoomMin:  opts.ZoomMin,
		zoomMax:  opts.ZoomMax,
		zoomStep: opts.ZoomStep,
		world:    opts.World,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Zoom returns the current zoom factor
func (t *Transform) Zoom() float64 {
	return t.zoom
}

// ZoomBounds returns the configured zoom limits
func (t *Transform) ZoomBounds() (min, max float64) {
	return t.zoomMin, t.zoomMax
}

// Pan returns the pan offset in pixels
func (t *Transform) Pan() geo.Point {
	return t.pan
}

// World returns the fixed world reference rectangle
func (t *Transform) World() geo.Extent {
	return t.world
}

// ViewportSize returns the viewport dimensions in pixels
func (t *Transform) ViewportSize() (width, height float64) {
	return t.width, t.height
}

// Frame returns the viewport as a screen rectangle at the origin
func (t *Transform) Frame() geo.Rect {
	return geo.Rect{W: t.width, H: t.height}
}

// Dragging reports whether a pan drag is in progress
func (t *Transform) Dragging() bool {
	return t.dragging
}

// SetViewportSize updates the viewport dimensions. Zoom and pan are left
// alone so the view survives window resizes.
func (t *Transform) SetViewportSize(width, height float64) {
	t.width = math.Max(0, width)
	t.height = math.Max(0, height)
}

// baseScale is the pixels-per-degree at zoom 1 that fits the world
// rectangle into the viewport while keeping degrees square.
func (t *Transform) baseScale() float64 {
	return math.Min(t.width/t.world.Width(), t.height/t.world.Height())
}

// Scale returns the current pixels per degree
func (t *Transform) Scale() float64 {
	return t.zoom * t.baseScale()
}

// WorldToScreen returns the world-to-screen matrix. With an empty viewport
// the matrix is singular.
func (t *Transform) WorldToScreen() geo.Affine {
	s := t.Scale()
	c := t.world.Center()
	return geo.Identity().
		Translate(t.width/2+t.pan.X, t.height/2+t.pan.Y).
		Scale(s, -s).
		Translate(-c.X, -c.Y)
}

// ScreenToWorld returns the inverse of WorldToScreen. ok is false when the
// transform cannot be inverted (empty viewport); the view is unusable
// until the viewport is resized.
func (t *Transform) ScreenToWorld() (geo.Affine, bool) {
	inv, ok := t.WorldToScreen().Invert()
	if !ok {
		debug.Warn("transform inversion failed",
			slog.Float64("width", t.width), slog.Float64("height", t.height),
			slog.Float64("zoom", t.zoom))
	}
	return inv, ok
}

// Project maps a world point to screen pixels
func (t *Transform) Project(world geo.Point) geo.Point {
	return t.WorldToScreen().Apply(world)
}

// Unproject maps a screen point to world coordinates
func (t *Transform) Unproject(screen geo.Point) (geo.Point, bool) {
	inv, ok := t.ScreenToWorld()
	if !ok {
		return geo.Point{X: math.NaN(), Y: math.NaN()}, false
	}
	return inv.Apply(screen), true
}

// VisibleExtent returns the world rectangle covered by the viewport,
// computed from its four corners.
func (t *Transform) VisibleExtent() (geo.Extent, bool) {
	inv, ok := t.ScreenToWorld()
	if !ok {
		return geo.Extent{}, false
	}
	return geo.ExtentFromPoints(
		inv.Apply(geo.Point{X: 0, Y: 0}),
		inv.Apply(geo.Point{X: t.width, Y: 0}),
		inv.Apply(geo.Point{X: 0, Y: t.height}),
		inv.Apply(geo.Point{X: t.width, Y: t.height}),
	), true
}

// ZoomAt changes the zoom by one wheel step about a screen anchor: the
// world point under the anchor stays under it. A positive delta zooms in,
// a negative one out. It returns false when nothing changed (zero delta
// or already at a bound).
func (t *Transform) ZoomAt(anchor geo.Point, delta float64) bool {
	if delta == 0 || math.IsNaN(delta) {
		return false
	}

	factor := t.zoomStep
	if delta < 0 {
		factor = 1 / t.zoomStep
	}
	return t.SetZoom(anchor, t.zoom*factor)
}

// SetZoom sets the zoom factor (clamped to the configured bounds) keeping
// the world point under anchor fixed.
func (t *Transform) SetZoom(anchor geo.Point, zoom float64) bool {
	newZoom := clamp(zoom, t.zoomMin, t.zoomMax)
	if newZoom == t.zoom || math.IsNaN(newZoom) {
		return false
	}

	before, ok := t.Unproject(anchor)
	t.zoom = newZoom
	if !ok {
		return true
	}

	after := t.Project(before)
	t.pan = t.pan.Add(anchor.Sub(after))
	debug.Log("zoom %.4g about %.1f,%.1f (pan %.1f,%.1f)", t.zoom, anchor.X, anchor.Y, t.pan.X, t.pan.Y)
	return true
}

// PanBegin starts a drag with the given button at a screen point
func (t *Transform) PanBegin(p geo.Point, button Button) {
	t.dragging = true
	t.dragButton = button
	t.lastPos = p
}

// PanMove moves the view by the screen delta since the previous event of
// the drag. It returns false when no drag is in progress.
func (t *Transform) PanMove(p geo.Point) bool {
	if !t.dragging {
		return false
	}
	t.pan = t.pan.Add(p.Sub(t.lastPos))
	t.lastPos = p
	return true
}

// PanEnd finishes a drag started with the same button
func (t *Transform) PanEnd(button Button) {
	if t.dragging && button == t.dragButton {
		t.dragging = false
	}
}

// PanBy shifts the view by a screen delta
func (t *Transform) PanBy(dx, dy float64) {
	t.pan = t.pan.Add(geo.Point{X: dx, Y: dy})
}

// Reset makes the world rectangle fill the viewport at zoom 1 and drops
// any drag in progress.
func (t *Transform) Reset() {
	t.zoom = clamp(1, t.zoomMin, t.zoomMax)
	t.pan = geo.Point{}
	t.dragging = false
}

// FitExtent zooms and pans so that e fills the viewport, leaving margin
// (a fraction of the viewport, e.g. 0.05) on each side. It returns false
// when e or the viewport is degenerate.
func (t *Transform) FitExtent(e geo.Extent, margin float64) bool {
	base := t.baseScale()
	if !e.Valid() || !(base > 0) || math.IsInf(base, 0) {
		return false
	}

	margin = clamp(margin, 0, 0.45)
	fit := math.Min(t.width*(1-2*margin)/e.Width(), t.height*(1-2*margin)/e.Height())
	t.zoom = clamp(fit/base, t.zoomMin, t.zoomMax)

	s := t.Scale()
	ec, wc := e.Center(), t.world.Center()
	t.pan = geo.Point{X: -s * (ec.X - wc.X), Y: s * (ec.Y - wc.Y)}
	t.dragging = false
	return true
}
