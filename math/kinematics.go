// math/kinematics.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// Relative-motion kinematics for conflict prediction. Everything here
// works on the horizontal plane; altitude is handled separately by the
// callers since it comes from a different sensor with different units.

// The relative speed below which a pair is treated as non-closing;
// avoids dividing by a range rate that is numerically zero.
const closureEpsilon = 1e-3 // m/s

// ClosestApproach returns the time in seconds until the closest
// horizontal approach between two aircraft given their relative position
// (meters) and relative velocity (meters/second), along with the
// projected distance at that point. A negative time means the point of
// closest approach is in the past (the pair is diverging). If the
// relative velocity is negligible the geometry is degenerate: the
// returned time is +Inf and the miss distance is the current range.
func ClosestApproach(relPos, relVel [2]float32) (time float32, dist float32) {
	v2 := Dot(relVel, relVel)
	if v2 <= closureEpsilon*closureEpsilon {
		return Infinity, Length2f(relPos)
	}
	t := -Dot(relPos, relVel) / v2
	return t, Length2f(Add2f(relPos, Scale2f(relVel, t)))
}

// RangeRate returns the rate of change of the horizontal distance
// between two aircraft in meters/second; negative means closing.
func RangeRate(relPos, relVel [2]float32) float32 {
	r := Length2f(relPos)
	if r == 0 {
		// Coincident positions: no meaningful direction to project onto.
		return 0
	}
	return Dot(relPos, relVel) / r
}

// RangeTau returns range over closure rate, the classic TCAS range tau,
// in seconds. It is +Inf unless the pair is actually closing so that
// time-based thresholds can never fire for diverging or near-static
// geometry.
func RangeTau(rng, rangeRate float32) float32 {
	if rangeRate >= -closureEpsilon {
		return Infinity
	}
	return rng / -rangeRate
}
