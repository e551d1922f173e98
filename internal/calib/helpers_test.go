package calib

import (
	"math"

	"github.com/MaDolling/OCT-Field-Distortion-Correction/internal/phantom"
)

// spherePoints samples n points on a sphere of radius r around center
// using a golden-spiral layout, which spreads points near-uniformly so
// every angular section is well populated.
func spherePoints(n int, r float64, center phantom.Point) phantom.Surface {
	golden := math.Pi * (3 - math.Sqrt(5))
	pts := make(phantom.Surface, n)
	for i := 0; i < n; i++ {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		rho := math.Sqrt(1 - z*z)
		phi := golden * float64(i)
		pts[i] = phantom.Point{
			X: center.X + r*rho*math.Cos(phi),
			Y: center.Y + r*rho*math.Sin(phi),
			Z: center.Z + r*z,
		}
	}
	return pts
}
