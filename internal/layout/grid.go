package layout

import (
	"fmt"
	"math"

	"rasterscope/internal/geo"
)

// DefaultMaxLines caps the lines generated per axis
const DefaultMaxLines = 500

// edgeSlack admits ticks that land on the frame edge up to rounding
const edgeSlack = 1e-6

// gridSteps maps a minimum zoom factor to a longitude step in degrees,
// ordered by decreasing zoom.
var gridSteps = []struct {
	minZoom float64
	step    float64
}{
	{240, 0.25},
	{120, 0.5},
	{60, 1},
	{20, 2},
	{10, 5},
	{5, 10},
	{2, 15},
	{0, 30},
}

// StepForZoom returns the longitude grid step for a zoom factor. The
// latitude step is always half of it.
func StepForZoom(zoom float64) float64 {
	for _, s := range gridSteps {
		if zoom >= s.minZoom {
			return s.step
		}
	}
	return gridSteps[len(gridSteps)-1].step
}

// Axis of a grid line or tick
type Axis int

const (
	Meridian Axis = iota // constant longitude
	Parallel             // constant latitude
)

// Edge of the frame a tick sits on
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// Line is a grid line in screen space
type Line struct {
	Axis     Axis
	Value    float64 // degrees
	From, To geo.Point
}

// Tick is a labeled grid crossing on the frame edge
type Tick struct {
	Axis  Axis
	Edge  Edge
	Value float64
	Pos   geo.Point
	Label string
}

// Grid is the graticule for one repaint
type Grid struct {
	StepLon float64
	StepLat float64
	// Bounds is the visible world rectangle snapped outward to whole
	// steps and clipped to the globe.
	Bounds     geo.Extent
	Lines      []Line
	Ticks      []Tick
	Suppressed bool
}

// ComputeGrid lays out longitude/latitude lines and edge ticks for the
// view. When either axis would need more than maxLines lines the grid is
// suppressed and carries no lines.
func ComputeGrid(view View, frame geo.Rect, maxLines int) Grid {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	stepLon := StepForZoom(view.Zoom())
	g := Grid{StepLon: stepLon, StepLat: stepLon / 2}

	visible, ok := visibleWorld(view, frame)
	if !ok {
		return g
	}

	minLon := math.Max(math.Floor(visible.MinLon/g.StepLon)*g.StepLon, geo.WholeEarth.MinLon)
	maxLon := math.Min(math.Ceil(visible.MaxLon/g.StepLon)*g.StepLon, geo.WholeEarth.MaxLon)
	minLat := math.Max(math.Floor(visible.MinLat/g.StepLat)*g.StepLat, geo.WholeEarth.MinLat)
	maxLat := math.Min(math.Ceil(visible.MaxLat/g.StepLat)*g.StepLat, geo.WholeEarth.MaxLat)
	if minLon > maxLon || minLat > maxLat {
		return g
	}
	g.Bounds = geo.Extent{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}

	nLon := lineCount(minLon, maxLon, g.StepLon)
	nLat := lineCount(minLat, maxLat, g.StepLat)
	if nLon > maxLines || nLat > maxLines {
		g.Suppressed = true
		return g
	}

	m := view.WorldToScreen()
	g.Lines = make([]Line, 0, nLon+nLat)

	for i := 0; i < nLon; i++ {
		lon := stepValue(minLon, g.StepLon, i)
		from := m.Apply(geo.Point{X: lon, Y: minLat})
		to := m.Apply(geo.Point{X: lon, Y: maxLat})
		g.Lines = append(g.Lines, Line{Axis: Meridian, Value: lon, From: from, To: to})

		if from.X < frame.X-edgeSlack || from.X > frame.Right()+edgeSlack {
			continue
		}
		label := FormatDegree(lon, g.StepLon)
		g.Ticks = append(g.Ticks,
			Tick{Axis: Meridian, Edge: EdgeTop, Value: lon, Pos: geo.Point{X: from.X, Y: frame.Y}, Label: label},
			Tick{Axis: Meridian, Edge: EdgeBottom, Value: lon, Pos: geo.Point{X: from.X, Y: frame.Bottom()}, Label: label},
		)
	}

	for i := 0; i < nLat; i++ {
		lat := stepValue(minLat, g.StepLat, i)
		from := m.Apply(geo.Point{X: minLon, Y: lat})
		to := m.Apply(geo.Point{X: maxLon, Y: lat})
		g.Lines = append(g.Lines, Line{Axis: Parallel, Value: lat, From: from, To: to})

		if from.Y < frame.Y-edgeSlack || from.Y > frame.Bottom()+edgeSlack {
			continue
		}
		label := FormatDegree(lat, g.StepLat)
		g.Ticks = append(g.Ticks,
			Tick{Axis: Parallel, Edge: EdgeLeft, Value: lat, Pos: geo.Point{X: frame.X, Y: from.Y}, Label: label},
			Tick{Axis: Parallel, Edge: EdgeRight, Value: lat, Pos: geo.Point{X: frame.Right(), Y: from.Y}, Label: label},
		)
	}

	return g
}

// lineCount is the number of step multiples in [min, max]; both ends are
// already multiples of step.
func lineCount(min, max, step float64) int {
	return int(math.Floor((max-min)/step+1e-9)) + 1
}

// stepValue avoids accumulating floating point error over many steps
func stepValue(start, step float64, i int) float64 {
	v := start + float64(i)*step
	return math.Round(v*1e9) / 1e9
}

// FormatDegree renders a grid value. Whole degrees on a step of at least
// one degree print without decimals; everything else gets enough decimals
// to tell adjacent steps apart.
func FormatDegree(v, step float64) string {
	if v == 0 {
		v = 0 // no "-0°"
	}
	if step >= 1 && v == math.Trunc(v) {
		return fmt.Sprintf("%.0f°", v)
	}
	return fmt.Sprintf("%.*f°", decimals(step), v)
}

// decimals returns the smallest count (1..6) that represents step exactly
func decimals(step float64) int {
	step = math.Abs(step)
	for d := 1; d < 6; d++ {
		scaled := step * math.Pow10(d)
		if math.Abs(scaled-math.Round(scaled)) < 1e-9 {
			return d
		}
	}
	return 6
}
