// Package phantom holds the point cloud types for scans of the spherical
// reference phantom, plus loaders for surfaces produced by an upstream
// surface-detection stage.
package phantom

import "math"

// Point is a single detected surface sample in scanner coordinates (mm).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Valid reports whether all three coordinates are finite. Surface
// detection emits NaN rows where no boundary was found in a column.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Surface is one phantom scan's detected boundary as an unordered point set.
type Surface []Point

// DropInvalid returns a new Surface containing only the finite points.
func (s Surface) DropInvalid() Surface {
	out := make(Surface, 0, len(s))
	for _, p := range s {
		if p.Valid() {
			out = append(out, p)
		}
	}
	return out
}

// Translate returns a copy of the surface shifted by -origin, so that
// origin lands at (0,0,0).
func (s Surface) Translate(origin Point) Surface {
	out := make(Surface, len(s))
	for i, p := range s {
		out[i] = Point{X: p.X - origin.X, Y: p.Y - origin.Y, Z: p.Z - origin.Z}
	}
	return out
}

// Centroid returns the mean of the valid points. It is a cheap first
// guess for fit initialization and for sanity logging; the calibration
// itself centers on a full ellipsoid fit.
func (s Surface) Centroid() Point {
	var c Point
	n := 0
	for _, p := range s {
		if !p.Valid() {
			continue
		}
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
		n++
	}
	if n == 0 {
		return Point{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	c.X /= float64(n)
	c.Y /= float64(n)
	c.Z /= float64(n)
	return c
}
