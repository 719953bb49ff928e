package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineComposition(t *testing.T) {
	// translate then scale then translate, as the viewport builds it
	m := Identity().Translate(400, 300).Scale(2, -2).Translate(-10, -5)

	p := m.Apply(Point{X: 10, Y: 5})
	assert.InDelta(t, 400, p.X, 1e-12)
	assert.InDelta(t, 300, p.Y, 1e-12)

	p = m.Apply(Point{X: 11, Y: 6})
	assert.InDelta(t, 402, p.X, 1e-12)
	assert.InDelta(t, 298, p.Y, 1e-12)
}

func TestAffineInverse(t *testing.T) {
	for _, m := range []Affine{
		Identity(),
		Identity().Translate(12.5, -3).Scale(0.001, -0.001),
		{A: 2, B: 1, C: 3, D: -1, E: 4, F: 7},
		Identity().Translate(1e6, 1e6).Scale(444.4, -444.4).Translate(179.9, -89.9),
	} {
		inv, ok := m.Invert()
		require.True(t, ok, "%+v", m)

		for _, p := range []Point{{0, 0}, {1, 1}, {-180, 90}, {123.456, -7.89}} {
			q := inv.Apply(m.Apply(p))
			assert.InDelta(t, p.X, q.X, 1e-7*math.Max(1, math.Abs(p.X)))
			assert.InDelta(t, p.Y, q.Y, 1e-7*math.Max(1, math.Abs(p.Y)))
		}
	}
}

func TestAffineSingular(t *testing.T) {
	m := Identity().Translate(10, 10).Scale(0, 0)
	inv, ok := m.Invert()
	assert.False(t, ok)
	assert.Equal(t, Identity(), inv)

	_, ok = Affine{A: math.NaN(), E: 1}.Invert()
	assert.False(t, ok)
}

func TestExtent(t *testing.T) {
	e := Extent{MinLon: -10, MinLat: -5, MaxLon: 10, MaxLat: 5}
	assert.True(t, e.Valid())
	assert.Equal(t, 20.0, e.Width())
	assert.Equal(t, 10.0, e.Height())
	assert.Equal(t, Point{0, 0}, e.Center())
	assert.True(t, e.Contains(10, -5))
	assert.False(t, e.Contains(10.01, 0))

	assert.False(t, Extent{MinLon: 1, MaxLon: 1, MinLat: 0, MaxLat: 2}.Valid())

	u := e.Union(Extent{MinLon: 0, MinLat: 0, MaxLon: 30, MaxLat: 40})
	assert.Equal(t, Extent{MinLon: -10, MinLat: -5, MaxLon: 30, MaxLat: 40}, u)
	assert.Equal(t, e, e.Union(Extent{}))
	assert.Equal(t, e, Extent{}.Union(e))

	assert.Equal(t, Extent{MinLon: -3, MinLat: -1, MaxLon: 4, MaxLat: 2},
		ExtentFromPoints(Point{4, -1}, Point{-3, 2}, Point{0, 0}))
}

func TestKmPerDegree(t *testing.T) {
	assert.InDelta(t, 111.195, KmPerDegreeLat, 1e-3)
	assert.InDelta(t, KmPerDegreeLat, KmPerDegreeLon(0), 1e-12)
	assert.InDelta(t, KmPerDegreeLat/2, KmPerDegreeLon(60), 1e-9)
	assert.InDelta(t, 0, KmPerDegreeLon(90), 1e-9)
	assert.InDelta(t, KmPerDegreeLon(45), KmPerDegreeLon(-45), 1e-12)

	assert.InDelta(t, 2*KmPerDegreeLat, LonDegreesToKm(-2, 0), 1e-9)
	assert.InDelta(t, 2, KmToLonDegrees(LonDegreesToKm(2, 37), 37), 1e-12)
	assert.True(t, math.IsInf(KmToLonDegrees(10, 90.0000001), 1))
}
