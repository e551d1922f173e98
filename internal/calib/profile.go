package calib

import (
	"math"
	"math/rand"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/fit"
	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// RadialProfile estimates the local phantom radius at steps jittered
// orientations of one centered, corrected surface. Each orientation's
// angular section is fitted with fitter and the first principal radius
// recorded; sections with fewer than 4 points, or sections the fitter
// rejects as degenerate, yield NaN. The result always has length steps,
// ordered by ascending angle.
func RadialProfile(centered phantom.Surface, steps int, bandWidth float64, fitter fit.Fitter, rng *rand.Rand) []float64 {
	radii := make([]float64, steps)
	for i, theta := range angleSet(steps, rng) {
		radii[i] = math.NaN()

		idx := SectorIndices(centered, theta, bandWidth)
		if len(idx) < minSectionPoints {
			continue
		}

		section := make(phantom.Surface, len(idx))
		for j, k := range idx {
			section[j] = centered[k]
		}

		_, r, err := fitter.Fit(section)
		if err != nil {
			continue
		}
		radii[i] = r[0]
	}
	return radii
}
