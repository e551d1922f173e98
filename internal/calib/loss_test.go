package calib

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

func TestMeanSquaredDeviation_IgnoresInvalidEntries(t *testing.T) {
	matrix := [][]float64{
		{5.1, math.NaN(), 4.9},
		{math.NaN(), 5.0, math.NaN()},
	}

	got, err := MeanSquaredDeviation(matrix, 5.0)
	if err != nil {
		t.Fatalf("MeanSquaredDeviation: %v", err)
	}
	want := (0.1*0.1 + 0.1*0.1 + 0) / 3
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("loss = %v, want %v", got, want)
	}

	// Removing the invalid slots entirely must give the same loss: the
	// placeholders carry no weight, they are pure placement markers.
	stripped := [][]float64{
		{5.1, 4.9},
		{5.0},
	}
	got2, err := MeanSquaredDeviation(stripped, 5.0)
	if err != nil {
		t.Fatalf("MeanSquaredDeviation: %v", err)
	}
	if got2 != got {
		t.Errorf("loss differs with placeholders stripped: %v != %v", got2, got)
	}
}

func TestMeanSquaredDeviation_AllInvalid(t *testing.T) {
	matrix := [][]float64{
		{math.NaN(), math.NaN()},
		{math.NaN(), math.NaN()},
	}
	_, err := MeanSquaredDeviation(matrix, 5.0)
	if !errors.Is(err, ErrUndefinedLoss) {
		t.Errorf("err = %v, want ErrUndefinedLoss", err)
	}
}

func TestLoss_IdentityOnExactSphere(t *testing.T) {
	// Two exact spheres of the true radius, off-center to exercise the
	// centering fit. The identity coefficients must score ~0 regardless
	// of the jitter stream.
	surfaces := []phantom.Surface{
		spherePoints(2000, 5.0, phantom.Point{X: 1, Y: -2, Z: 3}),
		spherePoints(2000, 5.0, phantom.Point{X: -0.5, Y: 0.7, Z: -1.2}),
	}
	loss := NewLoss(surfaces, 5.0, 12, 0.5)
	loss.Rand = rand.New(rand.NewSource(99))

	for trial := 0; trial < 3; trial++ {
		v, err := loss.Evaluate(InitialCoefficients())
		if err != nil {
			t.Fatalf("trial %d: Evaluate: %v", trial, err)
		}
		if v > 1e-9 {
			t.Errorf("trial %d: loss = %v on exact sphere, want ~0", trial, v)
		}
	}
}

func TestLoss_InvalidPointsFiltered(t *testing.T) {
	surface := spherePoints(2000, 5.0, phantom.Point{})
	surface = append(surface,
		phantom.Point{X: math.NaN(), Y: 1, Z: 1},
		phantom.Point{X: 0, Y: math.Inf(1), Z: 0},
	)

	loss := NewLoss([]phantom.Surface{surface}, 5.0, 10, 0.5)
	loss.Rand = rand.New(rand.NewSource(3))

	v, err := loss.Evaluate(InitialCoefficients())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v > 1e-9 {
		t.Errorf("loss = %v, want ~0 with invalid points filtered", v)
	}
}

func TestLoss_TooFewPointsUndefined(t *testing.T) {
	loss := NewLoss([]phantom.Surface{{{X: 1}, {Y: 1}, {Z: 1}}}, 5.0, 10, 0.5)
	loss.Rand = rand.New(rand.NewSource(3))

	_, err := loss.Evaluate(InitialCoefficients())
	if !errors.Is(err, ErrUndefinedLoss) {
		t.Errorf("err = %v, want ErrUndefinedLoss", err)
	}
}

func TestLoss_DegenerateSurfaceExcluded(t *testing.T) {
	// One good sphere plus one hopeless surface: the bad row must be
	// excluded, not fatal.
	surfaces := []phantom.Surface{
		spherePoints(2000, 5.0, phantom.Point{}),
		{{X: 1}, {Y: 1}, {Z: 1}},
	}
	loss := NewLoss(surfaces, 5.0, 10, 0.5)
	loss.Rand = rand.New(rand.NewSource(3))

	matrix := loss.RadiusMatrix(InitialCoefficients())
	if len(matrix) != 2 {
		t.Fatalf("got %d rows, want 2", len(matrix))
	}
	for i, r := range matrix[1] {
		if !math.IsNaN(r) {
			t.Errorf("degenerate surface radius[%d] = %v, want NaN", i, r)
		}
	}

	v, err := loss.Evaluate(InitialCoefficients())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v > 1e-9 {
		t.Errorf("loss = %v, want ~0 from the valid surface alone", v)
	}
}
