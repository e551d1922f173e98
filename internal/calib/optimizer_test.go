package calib

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

func TestCalibrate_AlreadyOptimal(t *testing.T) {
	if testing.Short() {
		t.Skip("optimizer run")
	}

	// Two identical exact spheres: the identity starting point is
	// already optimal, so the search should settle near zero quickly.
	surfaces := []phantom.Surface{
		spherePoints(1200, 5.0, phantom.Point{}),
		spherePoints(1200, 5.0, phantom.Point{X: 0.4, Y: -0.3, Z: 0.2}),
	}
	loss := NewLoss(surfaces, 5.0, 8, 0.6)
	loss.Rand = rand.New(rand.NewSource(11))

	cfg := Config{
		FuncTolerance:  1e-10,
		ConvergeWindow: 10,
		MaxIterations:  500,
		MaxEvaluations: 20000,
	}
	res, err := Calibrate(loss, cfg)
	if err != nil {
		t.Fatalf("Calibrate: %v", err)
	}

	if res.Status != Converged {
		t.Errorf("status = %v, want converged", res.Status)
	}
	if res.Loss > 1e-4 {
		t.Errorf("final loss = %v, want near 0", res.Loss)
	}
	if res.Iterations <= 0 || res.Iterations >= cfg.MaxIterations {
		t.Errorf("iterations = %d, want a small positive count under %d", res.Iterations, cfg.MaxIterations)
	}
	if res.Evaluations <= 0 {
		t.Errorf("evaluations = %d, want > 0", res.Evaluations)
	}
}

func TestCalibrate_UndefinedStartAborts(t *testing.T) {
	loss := NewLoss([]phantom.Surface{{{X: 1}, {Y: 1}}}, 5.0, 8, 0.5)
	loss.Rand = rand.New(rand.NewSource(11))

	_, err := Calibrate(loss, Config{MaxIterations: 10})
	if !errors.Is(err, ErrUndefinedLoss) {
		t.Errorf("err = %v, want ErrUndefinedLoss", err)
	}
}

func TestStatusFrom(t *testing.T) {
	if got := MaxIterationsReached.String(); got != "max-iterations-reached" {
		t.Errorf("String() = %q", got)
	}
	if got := Converged.String(); got != "converged" {
		t.Errorf("String() = %q", got)
	}
}
