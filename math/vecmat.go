// math/vecmat.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 2f

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

func Dot(a, b [2]float32) float32 {
	return a[0]*b[0] + a[1]*b[1]
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp2f(x float32, a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{(1-x)*a[0] + x*b[0], (1-x)*a[1] + x*b[1]}
}

func Length2f(v [2]float32) float32 {
	return Hypot(v[0], v[1])
}

func Distance2f(a [2]float32, b [2]float32) float32 {
	return Length2f(Sub2f(a, b))
}

func Normalize2f(a [2]float32) [2]float32 {
	l := Length2f(a)
	if l == 0 {
		return [2]float32{0, 0}
	}
	return Scale2f(a, 1/l)
}
