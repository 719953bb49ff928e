package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasterscope/internal/colormap"
	"rasterscope/internal/geo"
)

var smallExtent = geo.Extent{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5}

func smallSampler(opts ...Option) *Sampler {
	grid := GridFromRows([][]float64{
		{10, 20},
		{30, 40},
	})
	return NewSampler(grid, smallExtent, nil, opts...)
}

func TestSampleAtGeoScenario(t *testing.T) {
	s := smallSampler()
	assert.Equal(t, 10.0, s.SampleAtGeo(-9, 4))
	assert.Equal(t, 40.0, s.SampleAtGeo(9, -4))
	assert.Equal(t, 20.0, s.SampleAtGeo(9, 4))
	assert.Equal(t, 30.0, s.SampleAtGeo(-9, -4))
}

func TestSampleAtGeoEdges(t *testing.T) {
	s := smallSampler()
	// corners of the extent are inside
	assert.Equal(t, 10.0, s.SampleAtGeo(-10, 5))
	assert.Equal(t, 40.0, s.SampleAtGeo(10, -5))
	// the centre line belongs to the eastern/southern cell
	assert.Equal(t, 40.0, s.SampleAtGeo(0, 0))

	for _, p := range []geo.Point{{X: -10.001, Y: 0}, {X: 10.001, Y: 0}, {X: 0, Y: 5.001}, {X: 0, Y: -5.001}, {X: math.NaN(), Y: 0}, {X: 200, Y: 100}} {
		assert.True(t, math.IsNaN(s.SampleAtGeo(p.X, p.Y)), "%v", p)
	}
}

func TestSampleAtGeoMatchesValueAt(t *testing.T) {
	grid := NewGrid(7, 5)
	for i := range grid.Values {
		grid.Values[i] = float64(i)
	}
	s := NewSampler(grid, geo.Extent{MinLon: 100, MinLat: 20, MaxLon: 114, MaxLat: 30}, nil)

	for lon := 99.0; lon <= 115; lon += 0.37 {
		for lat := 19.0; lat <= 31; lat += 0.41 {
			col, row, ok := s.Index(lon, lat)
			v := s.SampleAtGeo(lon, lat)
			if !ok {
				assert.True(t, math.IsNaN(v))
				assert.False(t, s.Extent().Contains(lon, lat))
				continue
			}
			assert.Equal(t, s.ValueAt(col, row), v)
		}
	}
}

func TestSampleAtGeoTransform(t *testing.T) {
	grid := GridFromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	})
	gt := GeoTransform{0, 1, 0, 2, 0, -1}
	s := NewSampler(grid, geo.Extent{}, &gt)

	require.True(t, s.UsesGeoTransform())
	assert.Equal(t, geo.Extent{MinLon: 0, MinLat: 0, MaxLon: 3, MaxLat: 2}, s.Extent())
	assert.Equal(t, 1.0, s.SampleAtGeo(0.5, 1.5))
	assert.Equal(t, 6.0, s.SampleAtGeo(2.9, 0.1))
	assert.Equal(t, 2.0, s.SampleAtGeo(1, 2))
	// floor, not truncation toward zero
	assert.True(t, math.IsNaN(s.SampleAtGeo(-0.5, 1.5)))
	assert.True(t, math.IsNaN(s.SampleAtGeo(3.1, 1)))
	// east and south edges clamp into the last cell, as in extent mode
	assert.Equal(t, 6.0, s.SampleAtGeo(3, 1))
	assert.Equal(t, 6.0, s.SampleAtGeo(3, 0))
}

func TestSampleAtGeoEdgesAgreeAcrossModes(t *testing.T) {
	gt := NorthUpTransform(smallExtent, 2, 2)
	byGT := NewSampler(GridFromRows([][]float64{{10, 20}, {30, 40}}), smallExtent, &gt)
	byExtent := smallSampler()
	require.True(t, byGT.UsesGeoTransform())

	for _, p := range []geo.Point{{X: 10, Y: -5}, {X: -10, Y: -5}, {X: 10, Y: 5}, {X: -10, Y: 5}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: -5}} {
		assert.Equal(t, byExtent.SampleAtGeo(p.X, p.Y), byGT.SampleAtGeo(p.X, p.Y), "%v", p)
	}
	assert.Equal(t, 40.0, byGT.SampleAtGeo(10, -5))
}

func TestSampleAtGeoTransformOutsideExtent(t *testing.T) {
	// the geotransform covers lon[-20,20] lat[-10,10], twice the extent
	gt := NorthUpTransform(geo.Extent{MinLon: -20, MinLat: -10, MaxLon: 20, MaxLat: 10}, 2, 2)
	s := NewSampler(GridFromRows([][]float64{{10, 20}, {30, 40}}), smallExtent, &gt)
	require.True(t, s.UsesGeoTransform())

	assert.True(t, math.IsNaN(s.SampleAtGeo(15, 0)))
	assert.True(t, math.IsNaN(s.SampleAtGeo(0, -8)))
	_, _, ok := s.Index(15, 0)
	assert.False(t, ok)
	assert.Equal(t, 40.0, s.SampleAtGeo(5, -2))
}

func TestSampleAtGeoRotatedTransformFallsBack(t *testing.T) {
	grid := GridFromRows([][]float64{{1, 2}, {3, 4}})
	gt := GeoTransform{100, 1, 0.5, 50, 0, -1}
	s := NewSampler(grid, smallExtent, &gt)

	assert.False(t, s.UsesGeoTransform())
	assert.Equal(t, smallExtent, s.Extent())
	assert.Equal(t, 1.0, s.SampleAtGeo(-9, 4))
	assert.Equal(t, 4.0, s.SampleAtGeo(9, -4))
}

func TestValueAt(t *testing.T) {
	s := smallSampler()
	assert.Equal(t, 20.0, s.ValueAt(1, 0))
	assert.Equal(t, 30.0, s.ValueAt(0, 1))
	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		assert.True(t, math.IsNaN(s.ValueAt(idx[0], idx[1])))
	}
}

func TestValueRange(t *testing.T) {
	grid := GridFromRows([][]float64{
		{math.NaN(), -3, math.Inf(1)},
		{7, math.NaN(), 2},
	})
	s := NewSampler(grid, smallExtent, nil)
	lo, hi, ok := s.ValueRange()
	require.True(t, ok)
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 7.0, hi)

	empty := NewSampler(NewGrid(3, 2), smallExtent, nil)
	_, _, ok = empty.ValueRange()
	assert.False(t, ok)

	img := empty.DisplayImage(colormap.Heat)
	require.Equal(t, 3, img.Bounds().Dx())
	for _, b := range img.Pix {
		assert.Zero(t, b)
	}
}

func TestDisplayImageFlip(t *testing.T) {
	s := smallSampler()
	img := s.DisplayImage(colormap.Gray)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())

	// grid row 0 (north, 10/20) lands on the last image row
	assert.Equal(t, colormap.MapValue(10, 10, 40, colormap.Gray).Color(), img.RGBAAt(0, 1))
	assert.Equal(t, colormap.MapValue(20, 10, 40, colormap.Gray).Color(), img.RGBAAt(1, 1))
	assert.Equal(t, colormap.MapValue(30, 10, 40, colormap.Gray).Color(), img.RGBAAt(0, 0))
	assert.Equal(t, colormap.MapValue(40, 10, 40, colormap.Gray).Color(), img.RGBAAt(1, 0))

	assert.Equal(t, 1, ImageRow(0, 2))
	assert.Equal(t, 0, ImageRow(1, 2))
	assert.Equal(t, 0, ImageRow(0, 1))
}

func TestDisplayImageNoDataTransparent(t *testing.T) {
	grid := GridFromRows([][]float64{{math.NaN(), 1}, {2, 3}})
	s := NewSampler(grid, smallExtent, nil)
	img := s.DisplayImage(colormap.Heat)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 1).A)
	assert.Equal(t, uint8(255), img.RGBAAt(1, 1).A)
}

func TestDisplayImageCached(t *testing.T) {
	s := smallSampler()
	a := s.DisplayImage(colormap.Heat)
	b := s.DisplayImage(colormap.Heat)
	assert.Same(t, a, b)
	assert.Equal(t, 1, s.Builds())

	s.DisplayImage(colormap.Terrain)
	assert.Equal(t, 2, s.Builds())
	assert.Same(t, a, s.DisplayImage(colormap.Heat))
	assert.Equal(t, 2, s.Builds())

	s.SetDisplayRange(&Range{Min: 0, Max: 100})
	c := s.DisplayImage(colormap.Heat)
	assert.NotSame(t, a, c)
	assert.Equal(t, 3, s.Builds())

	s.SetDisplayRange(nil)
	assert.Same(t, a, s.DisplayImage(colormap.Heat))
	assert.Equal(t, 3, s.Builds())
}

func TestCalibrationOverride(t *testing.T) {
	cal := map[string]Range{"lst": {Min: -30, Max: 50}}
	s := smallSampler(WithKind("lst"), WithCalibrations(cal))
	r, ok := s.DisplayRange()
	require.True(t, ok)
	assert.Equal(t, Range{Min: -30, Max: 50}, r)

	img := s.DisplayImage(colormap.Heat)
	assert.Equal(t, colormap.MapValue(10, -30, 50, colormap.Heat).Color(), img.RGBAAt(0, 1))

	// other kinds use the data range
	g := smallSampler(WithCalibrations(cal))
	r, _ = g.DisplayRange()
	assert.Equal(t, Range{Min: 10, Max: 40}, r)
}

func TestUnrenderable(t *testing.T) {
	bad := NewSampler(Grid{Width: 3, Height: 3, Values: []float64{1}}, smallExtent, nil)
	assert.False(t, bad.Renderable())
	assert.True(t, math.IsNaN(bad.SampleAtGeo(0, 0)))
	assert.Equal(t, 0, bad.DisplayImage(colormap.Heat).Bounds().Dx())

	flat := NewSampler(GridFromRows([][]float64{{1}}), geo.Extent{MinLon: 1, MaxLon: 1, MinLat: 0, MaxLat: 1}, nil)
	assert.False(t, flat.Renderable())
	assert.True(t, math.IsNaN(flat.SampleAtGeo(1, 0.5)))
	assert.Equal(t, colormap.Transparent, flat.ColorAt(1, 0.5, colormap.Heat))
}

func TestColorAt(t *testing.T) {
	s := smallSampler()
	assert.Equal(t, colormap.MapValue(10, 10, 40, colormap.Heat), s.ColorAt(-9, 4, colormap.Heat))
	assert.Equal(t, colormap.MapValue(40, 10, 40, colormap.Heat), s.ColorAt(9, -4, colormap.Heat))
	assert.Equal(t, colormap.Transparent, s.ColorAt(20, 0, colormap.Heat))
}

func TestLayers(t *testing.T) {
	var l Layers
	assert.Equal(t, -1, l.Append("nil", nil))
	assert.Equal(t, 0, l.Len())

	west := NewSampler(GridFromRows([][]float64{{1}}), geo.Extent{MinLon: -20, MinLat: -10, MaxLon: 0, MaxLat: 10}, nil)
	holes := NewSampler(GridFromRows([][]float64{{math.NaN(), 5}}), geo.Extent{MinLon: -10, MinLat: -10, MaxLon: 10, MaxLat: 10}, nil)
	assert.Equal(t, 0, l.Append("west", west))
	assert.Equal(t, 1, l.Append("holes", holes))

	v, idx := l.SampleAt(-5, 0)
	assert.Equal(t, 1.0, v, "no data in the top layer falls through")
	assert.Equal(t, 0, idx)

	v, idx = l.SampleAt(5, 0)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 1, idx)

	cover := NewSampler(GridFromRows([][]float64{{9}}), geo.Extent{MinLon: -30, MinLat: -10, MaxLon: 30, MaxLat: 10}, nil)
	assert.Equal(t, 2, l.Append("cover", cover))
	v, idx = l.SampleAt(-5, 0)
	assert.Equal(t, 9.0, v, "the newest layer is on top")
	assert.Equal(t, 2, idx)

	assert.True(t, l.SetVisible(2, false))
	assert.True(t, l.SetVisible(1, false))
	assert.False(t, l.Visible(1))
	v, idx = l.SampleAt(5, 0)
	assert.True(t, math.IsNaN(v))
	assert.Equal(t, -1, idx)
	assert.Len(t, l.VisibleLayers(), 1)
	assert.Equal(t, geo.Extent{MinLon: -20, MinLat: -10, MaxLon: 0, MaxLat: 10}, l.Extent())

	assert.False(t, l.SetVisible(5, true))
	assert.Nil(t, l.At(-1))

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Extent().Valid())
}
