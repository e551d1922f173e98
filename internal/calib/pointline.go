package calib

import (
	"math"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// PointLineDistances returns the perpendicular distance from every point
// in pts to the infinite line through l1 and l2, computed per point as
// ‖(l1−l2) × (p−l2)‖ / ‖l1−l2‖. l1 and l2 must be distinct; callers in
// this package always pass opposite unit direction vectors.
func PointLineDistances(pts phantom.Surface, l1, l2 phantom.Point) []float64 {
	dx := l1.X - l2.X
	dy := l1.Y - l2.Y
	dz := l1.Z - l2.Z
	norm := math.Sqrt(dx*dx + dy*dy + dz*dz)

	dists := make([]float64, len(pts))
	for i, p := range pts {
		px := p.X - l2.X
		py := p.Y - l2.Y
		pz := p.Z - l2.Z

		cx := dy*pz - dz*py
		cy := dz*px - dx*pz
		cz := dx*py - dy*px

		dists[i] = math.Sqrt(cx*cx+cy*cy+cz*cz) / norm
	}
	return dists
}
