package geo

import (
	"math"
)

// singularEpsilon is the determinant magnitude below which a matrix is
// treated as non-invertible.
const singularEpsilon = 1e-300

// Affine is a 2x3 matrix mapping (x, y) to
// (A*x + B*y + C, D*x + E*y + F).
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform
func Identity() Affine {
	return Affine{A: 1, E: 1}
}

// Multiply returns the composition m ∘ n: n is applied first, then m.
func (m Affine) Multiply(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// Translate post-multiplies by a translation, so the translation is
// applied to points before m.
func (m Affine) Translate(tx, ty float64) Affine {
	return m.Multiply(Affine{A: 1, C: tx, E: 1, F: ty})
}

// Scale post-multiplies by a scale, so the scale is applied to points
// before m.
func (m Affine) Scale(sx, sy float64) Affine {
	return m.Multiply(Affine{A: sx, E: sy})
}

// Determinant of the linear part
func (m Affine) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse transform. The boolean is false when the
// matrix is singular (or not finite), in which case the identity is
// returned.
func (m Affine) Invert() (Affine, bool) {
	det := m.Determinant()
	if math.Abs(det) < singularEpsilon || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity(), false
	}

	idet := 1 / det
	inv := Affine{
		A: m.E * idet,
		B: -m.B * idet,
		D: -m.D * idet,
		E: m.A * idet,
	}
	inv.C = -(inv.A*m.C + inv.B*m.F)
	inv.F = -(inv.D*m.C + inv.E*m.F)
	return inv, true
}

// Apply transforms a point
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}
