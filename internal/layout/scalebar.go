package layout

import (
	"fmt"
	"math"

	"rasterscope/internal/geo"
)

// Scale bar geometry, in screen pixels
const (
	DefaultScaleBarFraction = 0.2
	ScaleBarMargin          = 20.0
	ScaleBarHeight          = 8.0
	// frames narrower or shorter than this hide the bar; the height
	// leaves room for the margin, the bar and its label
	scaleBarMinWidth  = 50.0
	scaleBarMinHeight = 32.0
	// scaleBarMaxLat keeps the longitude degree length away from zero
	scaleBarMaxLat = 85.0
)

// NiceKm is the ascending sequence of bar lengths in kilometers, from
// 1 m to 50000 km
var NiceKm = func() []float64 {
	var out []float64
	for exp := -3; exp <= 4; exp++ {
		mag := math.Pow10(exp)
		out = append(out, 1*mag, 2*mag, 5*mag)
	}
	return out
}()

// NiceDistance picks the smallest nice value that is at least half of
// raw, or the largest one when raw is beyond the sequence.
func NiceDistance(raw float64) float64 {
	for _, v := range NiceKm {
		if v >= raw/2 {
			return v
		}
	}
	return NiceKm[len(NiceKm)-1]
}

// ScaleBar is the layout of the distance bar for one repaint
type ScaleBar struct {
	LengthPx float64
	Km       float64
	Label    string
	// Rect is the whole bar; Halves are its alternating fill segments
	Rect    geo.Rect
	Halves  [2]geo.Rect
	Visible bool
}

// ComputeScaleBar sizes a bar of about fraction of the frame width,
// anchored to the bottom-right corner of the frame.
func ComputeScaleBar(view View, frame geo.Rect, fraction float64) ScaleBar {
	if frame.W < scaleBarMinWidth || frame.H < scaleBarMinHeight {
		return ScaleBar{}
	}
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultScaleBarFraction
	}
	inv, ok := view.ScreenToWorld()
	if !ok {
		return ScaleBar{}
	}

	target := fraction * frame.W
	y := frame.Bottom() - ScaleBarMargin - ScaleBarHeight/2
	x1 := frame.Right() - ScaleBarMargin
	west := inv.Apply(geo.Point{X: x1 - target, Y: y})
	east := inv.Apply(geo.Point{X: x1, Y: y})
	center := inv.Apply(geo.Point{X: frame.X + frame.W/2, Y: frame.Y + frame.H/2})

	lat := math.Max(-scaleBarMaxLat, math.Min(scaleBarMaxLat, center.Y))
	rawKm := geo.LonDegreesToKm(math.Abs(east.X-west.X), lat)
	if !(rawKm > 0) || math.IsInf(rawKm, 0) {
		return ScaleBar{}
	}

	km := NiceDistance(rawKm)
	length := geo.KmToLonDegrees(km, lat) / math.Abs(east.X-west.X) * target
	if !(length >= 1) || math.IsInf(length, 0) {
		return ScaleBar{}
	}

	rect := geo.Rect{
		X: frame.Right() - ScaleBarMargin - length,
		Y: frame.Bottom() - ScaleBarMargin - ScaleBarHeight,
		W: length,
		H: ScaleBarHeight,
	}
	half := math.Floor(length / 2)

	return ScaleBar{
		LengthPx: length,
		Km:       km,
		Label:    FormatDistance(km),
		Rect:     rect,
		Halves: [2]geo.Rect{
			{X: rect.X, Y: rect.Y, W: half, H: rect.H},
			{X: rect.X + half, Y: rect.Y, W: length - half, H: rect.H},
		},
		Visible: true,
	}
}

// FormatDistance labels a bar length in meters below 1 km and in
// thousands of km from 1000 km.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	if km < 1000 {
		return fmt.Sprintf("%.0f km", km)
	}
	v := km / 1000
	if v < 10 {
		return fmt.Sprintf("%.1f 1000km", v)
	}
	return fmt.Sprintf("%.0f 1000km", v)
}
