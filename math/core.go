// math/core.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

var Infinity = float32(gomath.Inf(1))

// Unit conversions. Aircraft positions and horizontal velocities are
// carried in meters and meters/second; altitudes and vertical rates in
// feet and feet/second, matching how the surveillance sources report
// them.
const (
	MetersPerNM   = 1852
	FeetPerMeter  = 3.28084
	SecondsPerMin = 60
)

func NMToMeters(nm float32) float32 {
	return nm * MetersPerNM
}

func MetersToNM(m float32) float32 {
	return m / MetersPerNM
}

// FPMToFPS converts a vertical rate in feet/minute (how rates are
// usually quoted) to feet/second (how the core carries them).
func FPMToFPS(fpm float32) float32 {
	return fpm / SecondsPerMin
}

func Sqrt(a float32) float32 {
	return float32(gomath.Sqrt(float64(a)))
}

func Hypot(x, y float32) float32 {
	return float32(gomath.Hypot(float64(x), float64(y)))
}

func IsInf(v float32) bool {
	return gomath.IsInf(float64(v), 0)
}

func IsNaN(v float32) bool {
	return gomath.IsNaN(float64(v))
}

func Sign(v float32) float32 {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp(x, a, b float32) float32 {
	return (1-x)*a + x*b
}
