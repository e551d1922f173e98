package calib

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/fit"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// ErrUndefinedLoss reports an evaluation in which no angular section on
// any surface produced a usable radius, so there is nothing to average.
// It is surfaced explicitly because feeding an unexamined NaN or zero to
// the optimizer would silently corrupt the search.
var ErrUndefinedLoss = errors.New("calib: loss undefined, no valid radius samples")

// Loss scores a coefficient candidate against the calibration scans:
// the mean squared deviation of all measurable section radii from the
// true phantom radius, across every surface. Smaller is better; an
// exact sphere of the right size scores zero.
type Loss struct {
	// Surfaces are the raw detected phantom surfaces, one per scan.
	// They are read-only here; every evaluation works on corrected
	// copies.
	Surfaces []phantom.Surface

	// Radius is the known physical radius of the phantom, in the same
	// length units as the surface coordinates.
	Radius float64

	// AngleSteps is the number of angular sections taken per surface.
	AngleSteps int

	// BandWidth is the full width of each angular section band.
	BandWidth float64

	// Corrector applies a coefficient candidate to a surface.
	Corrector Corrector

	// CenterFit locates each corrected surface's center before
	// sectioning. SectionFit estimates the local radius of each
	// angular section.
	CenterFit  fit.Fitter
	SectionFit fit.Fitter

	// Rand drives the per-call angle jitter. It is never reseeded, so
	// repeated evaluations of identical coefficients differ slightly.
	Rand *rand.Rand
}

// NewLoss builds a Loss over the given scans with the default model:
// the polynomial FieldCorrector, an axis-aligned ellipsoid fit for
// centering, a sphere fit for sections, and a time-seeded jitter
// source. Callers can replace any field before first use; tests inject
// a fixed-seed Rand.
func NewLoss(surfaces []phantom.Surface, radius float64, angleSteps int, bandWidth float64) *Loss {
	return &Loss{
		Surfaces:   surfaces,
		Radius:     radius,
		AngleSteps: angleSteps,
		BandWidth:  bandWidth,
		Corrector:  FieldCorrector{},
		CenterFit:  fit.EllipsoidFitter{},
		SectionFit: fit.SphereFitter{},
		Rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RadiusMatrix computes one radial profile per surface under the given
// coefficients. A surface whose corrected point cloud is too sparse or
// degenerate to center contributes an all-NaN row; individual
// unmeasurable sections are NaN within otherwise valid rows.
func (l *Loss) RadiusMatrix(c Coefficients) [][]float64 {
	matrix := make([][]float64, len(l.Surfaces))
	for i, s := range l.Surfaces {
		corrected := l.Corrector.Correct(s, c).DropInvalid()

		center, _, err := l.CenterFit.Fit(corrected)
		if err != nil {
			matrix[i] = invalidRow(l.AngleSteps)
			continue
		}

		centered := corrected.Translate(center)
		matrix[i] = RadialProfile(centered, l.AngleSteps, l.BandWidth, l.SectionFit, l.Rand)
	}
	return matrix
}

// Evaluate returns the loss for one coefficient candidate. It returns
// ErrUndefinedLoss when the radius matrix holds no valid entry at all.
func (l *Loss) Evaluate(c Coefficients) (float64, error) {
	return MeanSquaredDeviation(l.RadiusMatrix(c), l.Radius)
}

// MeanSquaredDeviation averages the squared deviation from radius over
// the valid (finite) entries of the matrix, ignoring NaN placeholders
// entirely. A matrix without a single valid entry yields
// ErrUndefinedLoss.
func MeanSquaredDeviation(matrix [][]float64, radius float64) (float64, error) {
	var sum float64
	n := 0
	for _, row := range matrix {
		for _, r := range row {
			if math.IsNaN(r) {
				continue
			}
			d := r - radius
			sum += d * d
			n++
		}
	}
	if n == 0 {
		return 0, ErrUndefinedLoss
	}
	return sum / float64(n), nil
}

func invalidRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}
