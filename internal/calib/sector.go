package calib

import (
	"math"
	"math/rand"
	"sort"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// minSectionPoints is the smallest angular section worth fitting: a
// sphere fit is underdetermined below 4 points.
const minSectionPoints = 4

// SectorIndices returns the indices of the points whose perpendicular
// distance in the x/y plane to the origin line at angle theta is
// strictly less than half the band width. The surface must already be
// centered; the selected band then approximates a great-circle arc of
// the phantom at orientation theta.
func SectorIndices(pts phantom.Surface, theta, bandWidth float64) []int {
	dir := phantom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	neg := phantom.Point{X: -dir.X, Y: -dir.Y}

	// Distances are taken in the projected plane: z is held at zero.
	flat := make(phantom.Surface, len(pts))
	for i, p := range pts {
		flat[i] = phantom.Point{X: p.X, Y: p.Y}
	}

	half := bandWidth / 2
	dists := PointLineDistances(flat, dir, neg)
	var idx []int
	for i, d := range dists {
		if d < half {
			idx = append(idx, i)
		}
	}
	return idx
}

// angleSet produces n section orientations: evenly spaced over
// (−π/2, π/2], shifted by one shared uniform offset in [0, π/n), wrapped
// back by π where the shift pushed them past π/2, and sorted. The offset
// is redrawn on every call so successive loss evaluations never sample
// the same orientations, which keeps the optimizer from overfitting the
// coefficients to one fixed angular grid.
func angleSet(n int, rng *rand.Rand) []float64 {
	step := math.Pi / float64(n)
	offset := rng.Float64() * step

	angles := make([]float64, n)
	for i := range angles {
		a := -math.Pi/2 + float64(i+1)*step + offset
		if a > math.Pi/2 {
			a -= math.Pi
		}
		angles[i] = a
	}
	sort.Float64s(angles)
	return angles
}
