// Package coords converts hand positions between cartesian and spherical
// representations relative to the sensor origin.
//
// Axes: +X points out of the sensor face, +Y to the right and +Z up, both as
// seen when looking at the sensor. Spherical coordinates use the mathematical
// convention: Theta is the azimuth measured from +X in the XY plane, Phi is the
// zenith measured from +Z.
package coords

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Cartesian is a point in sensor space, in millimetres.
type Cartesian struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Spherical is a point in sensor space as radius (mm), azimuth and zenith (rad).
type Spherical struct {
	R     float64 `json:"r"`
	Theta float64 `json:"theta"`
	Phi   float64 `json:"phi"`
}

// Vec returns c as a gonum vector.
func (c Cartesian) Vec() r3.Vec {
	return r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
}

// FromVec converts a gonum vector to a Cartesian point.
func FromVec(v r3.Vec) Cartesian {
	return Cartesian{X: v.X, Y: v.Y, Z: v.Z}
}

// CartesianToSpherical converts c to spherical coordinates.
// The origin maps to the zero Spherical value (Phi is 0 when R is 0).
func CartesianToSpherical(c Cartesian) Spherical {
	r := r3.Norm(c.Vec())
	if r == 0 {
		return Spherical{}
	}

	return Spherical{
		R:     r,
		Theta: math.Atan2(c.Y, c.X),
		Phi:   math.Acos(clamp(c.Z/r, -1, 1)),
	}
}

// SphericalToCartesian converts s to cartesian coordinates.
func SphericalToCartesian(s Spherical) Cartesian {
	sinPhi, cosPhi := math.Sincos(s.Phi)
	sinTheta, cosTheta := math.Sincos(s.Theta)

	return Cartesian{
		X: s.R * cosTheta * sinPhi,
		Y: s.R * sinTheta * sinPhi,
		Z: s.R * cosPhi,
	}
}

// Cartesian is shorthand for SphericalToCartesian(s).
func (s Spherical) Cartesian() Cartesian {
	return SphericalToCartesian(s)
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Cartesian) float64 {
	return r3.Norm(r3.Sub(a.Vec(), b.Vec()))
}

// clamp guards acos against rounding just outside [-1, 1].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
