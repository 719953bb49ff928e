package geo

import (
	"math"
)

// Point is a 2D coordinate. In world space X is longitude and Y is
// latitude (degrees); in screen space both are pixels with Y growing down.
type Point struct {
	X float64
	Y float64
}

// Add returns p+q
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// IsFinite reports whether both coordinates are finite numbers
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Rect is an axis-aligned screen rectangle with (X, Y) at its top-left corner
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Right returns the x coordinate of the right edge
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y coordinate of the bottom edge
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Empty reports whether the rectangle has no area
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside the rectangle (edges included)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Extent is a geographic bounding rectangle in degrees
type Extent struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// WholeEarth is the reference rectangle covering every longitude and latitude
var WholeEarth = Extent{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}

// ExtentFromPoints returns the smallest extent containing all points.
// With no points it returns the zero (invalid) extent.
func ExtentFromPoints(points ...Point) Extent {
	if len(points) == 0 {
		return Extent{}
	}

	e := Extent{MinLon: points[0].X, MaxLon: points[0].X, MinLat: points[0].Y, MaxLat: points[0].Y}
	for _, p := range points[1:] {
		e.MinLon = math.Min(e.MinLon, p.X)
		e.MaxLon = math.Max(e.MaxLon, p.X)
		e.MinLat = math.Min(e.MinLat, p.Y)
		e.MaxLat = math.Max(e.MaxLat, p.Y)
	}
	return e
}

// Valid reports whether the extent is non-degenerate on both axes
func (e Extent) Valid() bool {
	return e.MaxLon > e.MinLon && e.MaxLat > e.MinLat
}

// Width returns the longitude span in degrees
func (e Extent) Width() float64 {
	return e.MaxLon - e.MinLon
}

// Height returns the latitude span in degrees
func (e Extent) Height() float64 {
	return e.MaxLat - e.MinLat
}

// Center returns the midpoint of the extent
func (e Extent) Center() Point {
	return Point{X: (e.MinLon + e.MaxLon) / 2, Y: (e.MinLat + e.MaxLat) / 2}
}

// Contains checks if a lon/lat point falls within the extent (edges included)
func (e Extent) Contains(lon, lat float64) bool {
	return lon >= e.MinLon && lon <= e.MaxLon && lat >= e.MinLat && lat <= e.MaxLat
}

// Union returns the smallest extent containing both e and o. Invalid
// extents are ignored.
func (e Extent) Union(o Extent) Extent {
	if !o.Valid() {
		return e
	}
	if !e.Valid() {
		return o
	}
	return Extent{
		MinLon: math.Min(e.MinLon, o.MinLon),
		MinLat: math.Min(e.MinLat, o.MinLat),
		MaxLon: math.Max(e.MaxLon, o.MaxLon),
		MaxLat: math.Max(e.MaxLat, o.MaxLat),
	}
}
