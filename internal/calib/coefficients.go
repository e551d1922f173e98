// Package calib implements phantom-based distortion calibration for an
// OCT scanner: a stochastic badness-of-fit score that measures how far a
// corrected phantom surface is from a perfect sphere, and a Nelder-Mead
// search over the correction coefficients that minimizes it.
package calib

import "fmt"

// NumCoefficients is the length of the flat coefficient vector exchanged
// with the optimizer.
const NumCoefficients = 26

// Coefficients is the full field-distortion correction model in named
// form. The q1* and q2* groups are the cubic lateral field-scan
// polynomials for x and y, the s0* group is the depth-dependent lateral
// scale, and C holds the 15 surface-shape terms of the degree-4
// bivariate depth correction.
type Coefficients struct {
	Q10, Q11, Q12, Q13 float64
	Q20, Q21, Q22, Q23 float64
	S01, S02, S03      float64
	C                  [15]float64
}

// InitialCoefficients returns the fixed starting point of every
// calibration run: the identity correction. Lateral polynomials pass x
// and y through unchanged, the depth scale is unity, and the
// surface-shape terms are zero.
func InitialCoefficients() Coefficients {
	return Coefficients{Q11: 1, Q21: 1, S01: 1}
}

// Vector flattens the coefficients into the 26-slot layout used at the
// optimizer boundary: q10..q13, q20..q23, s01..s03, c0..c14.
func (c Coefficients) Vector() []float64 {
	v := make([]float64, 0, NumCoefficients)
	v = append(v,
		c.Q10, c.Q11, c.Q12, c.Q13,
		c.Q20, c.Q21, c.Q22, c.Q23,
		c.S01, c.S02, c.S03,
	)
	v = append(v, c.C[:]...)
	return v
}

// CoefficientsFromVector packages a flat optimizer vector back into
// named form. The vector must have exactly NumCoefficients entries.
func CoefficientsFromVector(v []float64) (Coefficients, error) {
	if len(v) != NumCoefficients {
		return Coefficients{}, fmt.Errorf("coefficient vector has %d entries, want %d", len(v), NumCoefficients)
	}
	c := Coefficients{
		Q10: v[0], Q11: v[1], Q12: v[2], Q13: v[3],
		Q20: v[4], Q21: v[5], Q22: v[6], Q23: v[7],
		S01: v[8], S02: v[9], S03: v[10],
	}
	copy(c.C[:], v[11:])
	return c, nil
}
