// tcas/tracking.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"log/slog"

	"github.com/tcas-sim/tcas/math"
)

// Track is the relative geometry between an ownship and one intruder
// for a single tick, computed from their sensed Snapshots. Tracks are
// rebuilt every tick and never persisted; the only cross-tick memory in
// the pipeline lives in the Classifier (miss-distance trend) and the
// AdvisoryEngine.
type Track struct {
	Range           float32 // horizontal distance, meters
	RangeRate       float32 // meters/second, negative = closing
	Tau             float32 // range tau, seconds; +Inf unless closing
	CPATime         float32 // seconds to closest horizontal approach; may be negative
	CPADist         float32 // projected horizontal miss distance, meters
	VerticalSep     float32 // feet, unsigned
	RelAltitude     float32 // feet, intruder minus ownship
	RelVerticalRate float32 // feet/second, intruder minus ownship
	VerticalClosure float32 // feet/second, positive = vertical separation shrinking
}

// Relative computes the Track for an ownship-intruder pair. Degenerate
// geometry (coincident positions, negligible relative velocity) yields
// tau = +Inf and zero range rate rather than an error.
func Relative(own, intr Snapshot) Track {
	relPos := math.Sub2f(intr.Position, own.Position)
	relVel := math.Sub2f(intr.Velocity, own.Velocity)

	rng := math.Length2f(relPos)
	rangeRate := math.RangeRate(relPos, relVel)
	cpaTime, cpaDist := math.ClosestApproach(relPos, relVel)

	relAlt := intr.Altitude - own.Altitude
	relVS := intr.VerticalRate - own.VerticalRate

	var vertClosure float32
	if relAlt > 0 {
		vertClosure = -relVS
	} else if relAlt < 0 {
		vertClosure = relVS
	} else {
		vertClosure = math.Abs(relVS)
	}

	return Track{
		Range:           rng,
		RangeRate:       rangeRate,
		Tau:             math.RangeTau(rng, rangeRate),
		CPATime:         cpaTime,
		CPADist:         cpaDist,
		VerticalSep:     math.Abs(relAlt),
		RelAltitude:     relAlt,
		RelVerticalRate: relVS,
		VerticalClosure: vertClosure,
	}
}

// ProjectedVerticalSep returns the vertical separation in feet expected
// after dt seconds if the ownship flies the given vertical rate and the
// intruder continues at its current relative profile.
func (t Track) ProjectedVerticalSep(ownRate, currentOwnRate, dt float32) float32 {
	// RelVerticalRate is relative to the ownship's current rate; adjust
	// for the candidate rate.
	rel := t.RelVerticalRate - (ownRate - currentOwnRate)
	return math.Abs(t.RelAltitude + rel*dt)
}

func (t Track) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("range", float64(t.Range)),
		slog.Float64("range_rate", float64(t.RangeRate)),
		slog.Float64("tau", float64(t.Tau)),
		slog.Float64("cpa_dist", float64(t.CPADist)),
		slog.Float64("vertical_sep", float64(t.VerticalSep)))
}
