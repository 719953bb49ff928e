// Package layout computes the graticule and scale bar for the current view.
// Everything here is a pure function of the view transform and frame; no
// state is kept between repaints.
package layout

import (
	"rasterscope/internal/geo"
)

// View is the read side of the viewport transform
type View interface {
	Zoom() float64
	WorldToScreen() geo.Affine
	ScreenToWorld() (geo.Affine, bool)
}

// visibleWorld unprojects the four frame corners and returns the
// bounding world rectangle.
func visibleWorld(view View, frame geo.Rect) (geo.Extent, bool) {
	if frame.Empty() {
		return geo.Extent{}, false
	}
	inv, ok := view.ScreenToWorld()
	if !ok {
		return geo.Extent{}, false
	}

	e := geo.ExtentFromPoints(
		inv.Apply(geo.Point{X: frame.X, Y: frame.Y}),
		inv.Apply(geo.Point{X: frame.Right(), Y: frame.Y}),
		inv.Apply(geo.Point{X: frame.X, Y: frame.Bottom()}),
		inv.Apply(geo.Point{X: frame.Right(), Y: frame.Bottom()}),
	)
	return e, e.Valid()
}
