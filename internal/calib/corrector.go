package calib

import "github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"

// Corrector reshapes a raw detected surface according to a coefficient
// candidate. Implementations must be pure functions of their inputs:
// the optimizer evaluates the same surface under thousands of candidate
// coefficient sets and relies on corrections being reproducible.
type Corrector interface {
	Correct(s phantom.Surface, c Coefficients) phantom.Surface
}

// FieldCorrector is the default correction model. Lateral coordinates
// pass through per-axis cubic field-scan polynomials and a shared
// depth-dependent scale; the depth coordinate has a degree-4 bivariate
// surface term subtracted. At InitialCoefficients the mapping is the
// identity.
type FieldCorrector struct{}

// Correct applies the model point-wise. Cardinality is preserved and
// invalid (NaN) input points stay invalid in the output.
func (FieldCorrector) Correct(s phantom.Surface, c Coefficients) phantom.Surface {
	out := make(phantom.Surface, len(s))
	for i, p := range s {
		x, y, z := p.X, p.Y, p.Z

		// Cubic field-scan correction along each lateral axis.
		fx := c.Q10 + x*(c.Q11+x*(c.Q12+x*c.Q13))
		fy := c.Q20 + y*(c.Q21+y*(c.Q22+y*c.Q23))

		// Depth-dependent lateral scaling.
		scale := c.S01 + z*(c.S02+z*c.S03)

		out[i] = phantom.Point{
			X: fx * scale,
			Y: fy * scale,
			Z: z - surfaceTerm(c.C, fx, fy),
		}
	}
	return out
}

// surfaceTerm evaluates the 15-term bivariate polynomial
// c0 + c1·x + c2·y + ... + c14·y⁴ (all monomials of total degree ≤ 4).
func surfaceTerm(c [15]float64, x, y float64) float64 {
	x2, y2 := x*x, y*y
	x3, y3 := x2*x, y2*y
	return c[0] +
		c[1]*x + c[2]*y +
		c[3]*x2 + c[4]*x*y + c[5]*y2 +
		c[6]*x3 + c[7]*x2*y + c[8]*x*y2 + c[9]*y3 +
		c[10]*x3*x + c[11]*x3*y + c[12]*x2*y2 + c[13]*x*y3 + c[14]*y3*y
}
