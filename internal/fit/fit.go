// Package fit provides least-squares sphere and axis-aligned ellipsoid
// fitting of 3-D point sets. Fits are algebraic (linear in the unknowns)
// and solved by QR factorization, so they are fast enough to sit inside
// an optimization loop that runs thousands of evaluations.
package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// ErrDegenerateFit reports a point set that does not determine the model:
// too few points, a rank-deficient system, or a solution with
// non-positive squared radii.
var ErrDegenerateFit = errors.New("fit: degenerate point set")

// Fitter estimates a quadric centered shape from a point set. The radii
// are the principal semi-axes; an isotropic fitter repeats the single
// radius in all three slots.
type Fitter interface {
	Fit(pts phantom.Surface) (center phantom.Point, radii [3]float64, err error)
}

// SphereFitter fits the best sphere x²+y²+z² = 2ax + 2by + 2cz + d.
// Needs at least 4 points.
type SphereFitter struct{}

// Fit solves the algebraic sphere system and returns the center and the
// radius repeated across all three slots.
func (SphereFitter) Fit(pts phantom.Surface) (phantom.Point, [3]float64, error) {
	if len(pts) < 4 {
		return phantom.Point{}, [3]float64{}, fmt.Errorf("%w: %d points, need 4", ErrDegenerateFit, len(pts))
	}

	a := mat.NewDense(len(pts), 4, nil)
	b := mat.NewVecDense(len(pts), nil)
	for i, p := range pts {
		a.Set(i, 0, 2*p.X)
		a.Set(i, 1, 2*p.Y)
		a.Set(i, 2, 2*p.Z)
		a.Set(i, 3, 1)
		b.SetVec(i, p.X*p.X+p.Y*p.Y+p.Z*p.Z)
	}

	c, err := solveLSQ(a, b, 4)
	if err != nil {
		return phantom.Point{}, [3]float64{}, err
	}

	center := phantom.Point{X: c.AtVec(0), Y: c.AtVec(1), Z: c.AtVec(2)}
	r2 := c.AtVec(3) + center.X*center.X + center.Y*center.Y + center.Z*center.Z
	if !(r2 > 0) || math.IsInf(r2, 0) {
		return phantom.Point{}, [3]float64{}, fmt.Errorf("%w: non-positive squared radius", ErrDegenerateFit)
	}
	r := math.Sqrt(r2)
	return center, [3]float64{r, r, r}, nil
}

// EllipsoidFitter fits the best axis-aligned ellipsoid
// Ax² + By² + Cz² + Dx + Ey + Fz = 1. Needs at least 6 points. Rotated
// ellipsoids are out of scope: the scanner's distortion model is
// expressed along the instrument axes.
type EllipsoidFitter struct{}

// Fit solves the axis-aligned quadric system and returns the center and
// the three principal semi-axes in x, y, z order.
func (EllipsoidFitter) Fit(pts phantom.Surface) (phantom.Point, [3]float64, error) {
	if len(pts) < 6 {
		return phantom.Point{}, [3]float64{}, fmt.Errorf("%w: %d points, need 6", ErrDegenerateFit, len(pts))
	}

	a := mat.NewDense(len(pts), 6, nil)
	b := mat.NewVecDense(len(pts), nil)
	for i, p := range pts {
		a.Set(i, 0, p.X*p.X)
		a.Set(i, 1, p.Y*p.Y)
		a.Set(i, 2, p.Z*p.Z)
		a.Set(i, 3, p.X)
		a.Set(i, 4, p.Y)
		a.Set(i, 5, p.Z)
		b.SetVec(i, 1)
	}

	c, err := solveLSQ(a, b, 6)
	if err != nil {
		return phantom.Point{}, [3]float64{}, err
	}

	qx, qy, qz := c.AtVec(0), c.AtVec(1), c.AtVec(2)
	if qx <= 0 || qy <= 0 || qz <= 0 {
		return phantom.Point{}, [3]float64{}, fmt.Errorf("%w: non-ellipsoidal quadric", ErrDegenerateFit)
	}

	center := phantom.Point{
		X: -c.AtVec(3) / (2 * qx),
		Y: -c.AtVec(4) / (2 * qy),
		Z: -c.AtVec(5) / (2 * qz),
	}
	// Constant term after completing the square.
	g := 1 + qx*center.X*center.X + qy*center.Y*center.Y + qz*center.Z*center.Z
	if !(g > 0) {
		return phantom.Point{}, [3]float64{}, fmt.Errorf("%w: negative quadric offset", ErrDegenerateFit)
	}

	radii := [3]float64{
		math.Sqrt(g / qx),
		math.Sqrt(g / qy),
		math.Sqrt(g / qz),
	}
	return center, radii, nil
}

// solveLSQ solves the overdetermined system a·x = b for x (n unknowns)
// by QR factorization.
func solveLSQ(a *mat.Dense, b *mat.VecDense, n int) (*mat.VecDense, error) {
	var qr mat.QR
	qr.Factorize(a)

	x := mat.NewVecDense(n, nil)
	if err := qr.SolveVecTo(x, false, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateFit, err)
	}
	for i := 0; i < n; i++ {
		if v := x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: singular system", ErrDegenerateFit)
		}
	}
	return x, nil
}
