// Package raster holds decoded single-band grids and answers value,
// geographic sample and display color queries against them.
package raster

import (
	"math"

	"rasterscope/internal/geo"
)

// Grid is a dense row-major array of samples. Row 0 is the northernmost
// row. NaN marks cells without data.
type Grid struct {
	Width  int
	Height int
	Values []float64
}

// NewGrid allocates a grid with every cell set to NaN
func NewGrid(width, height int) Grid {
	if width <= 0 || height <= 0 {
		return Grid{}
	}
	values := make([]float64, width*height)
	for i := range values {
		values[i] = math.NaN()
	}
	return Grid{Width: width, Height: height, Values: values}
}

// GridFromRows builds a grid from rows listed north to south. Short rows
// are padded with NaN.
func GridFromRows(rows [][]float64) Grid {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	g := NewGrid(width, len(rows))
	for y, r := range rows {
		copy(g.Values[y*width:], r)
	}
	return g
}

// Valid reports whether the dimensions are positive and match the value count
func (g Grid) Valid() bool {
	return g.Width > 0 && g.Height > 0 && len(g.Values) == g.Width*g.Height
}

// At returns the value at (col, row) or NaN outside the grid
func (g Grid) At(col, row int) float64 {
	if !g.Valid() || col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return math.NaN()
	}
	return g.Values[row*g.Width+col]
}

// Range is a closed value interval
type Range struct {
	Min float64
	Max float64
}

// Span returns Max-Min
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// ValueRange scans the grid once and returns the min/max over finite
// values. The boolean is false when the grid holds no finite value.
func (g Grid) ValueRange() (Range, bool) {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for _, v := range g.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
		found = true
	}
	if !found {
		return Range{}, false
	}
	return r, true
}

// ImageRow converts a grid row (row 0 = north) to the display image row.
// Display images are stored south row first so they can be drawn straight
// into a y-up world space; this is the only place the flip happens.
func ImageRow(row, height int) int {
	return height - 1 - row
}

// rotationEpsilon bounds the rotation/shear terms of a geotransform that
// is still treated as north-up.
const rotationEpsilon = 1e-10

// GeoTransform maps pixel/line to georeferenced coordinates following the
// GDAL convention:
//
//	lon = gt[0] + col*gt[1] + row*gt[2]
//	lat = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

// NorthUpTransform returns the geotransform of a grid that exactly covers
// extent with width x height cells.
func NorthUpTransform(extent geo.Extent, width, height int) GeoTransform {
	return GeoTransform{
		extent.MinLon, extent.Width() / float64(width), 0,
		extent.MaxLat, 0, -extent.Height() / float64(height),
	}
}

// NorthUp reports whether the transform is a pure scale and offset that
// can be used for index lookups.
func (gt GeoTransform) NorthUp() bool {
	return math.Abs(gt[2]) < rotationEpsilon && math.Abs(gt[4]) < rotationEpsilon &&
		gt[1] != 0 && gt[5] != 0 &&
		!math.IsNaN(gt[1]) && !math.IsNaN(gt[5])
}

// Pixel returns the fractional (col, row) of a lon/lat. Only meaningful
// for north-up transforms.
func (gt GeoTransform) Pixel(lon, lat float64) (float64, float64) {
	return (lon - gt[0]) / gt[1], (lat - gt[3]) / gt[5]
}

// Extent returns the geographic rectangle covered by a width x height
// grid under a north-up transform.
func (gt GeoTransform) Extent(width, height int) geo.Extent {
	x0, x1 := gt[0], gt[0]+gt[1]*float64(width)
	y0, y1 := gt[3], gt[3]+gt[5]*float64(height)
	return geo.Extent{
		MinLon: math.Min(x0, x1), MaxLon: math.Max(x0, x1),
		MinLat: math.Min(y0, y1), MaxLat: math.Max(y0, y1),
	}
}

