package calib

import (
	"math"
	"testing"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

func TestFieldCorrector_IdentityAtInitial(t *testing.T) {
	pts := spherePoints(100, 4.0, phantom.Point{X: 1, Y: 2, Z: 3})
	out := FieldCorrector{}.Correct(pts, InitialCoefficients())

	if len(out) != len(pts) {
		t.Fatalf("cardinality changed: %d -> %d", len(pts), len(out))
	}
	for i := range pts {
		if math.Abs(out[i].X-pts[i].X) > 1e-12 ||
			math.Abs(out[i].Y-pts[i].Y) > 1e-12 ||
			math.Abs(out[i].Z-pts[i].Z) > 1e-12 {
			t.Fatalf("point %d moved under identity coefficients: %+v -> %+v", i, pts[i], out[i])
		}
	}
}

func TestFieldCorrector_InvalidPointsStayInvalid(t *testing.T) {
	pts := phantom.Surface{
		{X: math.NaN(), Y: 1, Z: 2},
		{X: 1, Y: 2, Z: 3},
	}
	out := FieldCorrector{}.Correct(pts, InitialCoefficients())
	if out[0].Valid() {
		t.Errorf("invalid input point became valid: %+v", out[0])
	}
	if !out[1].Valid() {
		t.Errorf("valid input point became invalid: %+v", out[1])
	}
}

func TestFieldCorrector_LateralScale(t *testing.T) {
	// s01 scales both lateral axes uniformly and leaves z alone.
	c := InitialCoefficients()
	c.S01 = 2.0

	in := phantom.Surface{{X: 1.5, Y: -2.0, Z: 0.7}}
	out := FieldCorrector{}.Correct(in, c)

	if math.Abs(out[0].X-3.0) > 1e-12 || math.Abs(out[0].Y+4.0) > 1e-12 {
		t.Errorf("lateral scale: got (%v, %v), want (3, -4)", out[0].X, out[0].Y)
	}
	if math.Abs(out[0].Z-0.7) > 1e-12 {
		t.Errorf("z = %v, want unchanged 0.7", out[0].Z)
	}
}

func TestFieldCorrector_SurfaceTermShiftsZ(t *testing.T) {
	// A pure c0 offset subtracts a constant from every depth.
	c := InitialCoefficients()
	c.C[0] = 0.25

	in := phantom.Surface{{X: 1, Y: 2, Z: 3}, {X: -4, Y: 0, Z: -1}}
	out := FieldCorrector{}.Correct(in, c)
	for i := range in {
		if math.Abs(out[i].Z-(in[i].Z-0.25)) > 1e-12 {
			t.Errorf("point %d: z = %v, want %v", i, out[i].Z, in[i].Z-0.25)
		}
		if out[i].X != in[i].X || out[i].Y != in[i].Y {
			t.Errorf("point %d: lateral coordinates moved under depth-only term", i)
		}
	}
}
