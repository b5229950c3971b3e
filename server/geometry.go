package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// aimEpsilon is the magnitude below which an aim vector counts as "no aim".
const aimEpsilon = 1e-6

// normalize returns the unit vector of v, or the zero vector when v is
// too short to carry a direction.
func normalize(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n < aimEpsilon || math.IsNaN(n) || math.IsInf(n, 0) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

func dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// overlaps reports whether two circles intersect (strictly).
func overlaps(a r2.Vec, ra float64, b r2.Vec, rb float64) bool {
	return dist(a, b) < ra+rb
}

// direction returns the unit vector pointing from 'from' to 'to'.
func direction(from, to r2.Vec) r2.Vec {
	return normalize(r2.Sub(to, from))
}

// fromAngle builds a unit vector for angle a (radians).
func fromAngle(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// clampToWorld keeps a circle of radius r fully inside [0, size]².
func clampToWorld(p r2.Vec, r, size float64) r2.Vec {
	return r2.Vec{
		X: clamp(p.X, r, size-r),
		Y: clamp(p.Y, r, size-r),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// roundTo1 rounds a float64 to 1 decimal place to save protocol bytes.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
