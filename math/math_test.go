// math/math_test.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestClosestApproach(t *testing.T) {
	type ca struct {
		relPos, relVel [2]float32
		time, dist     float32
	}

	for _, c := range []ca{
		// Head-on at 300 m/s closure from 3000 m out: CPA in 10 s, zero miss.
		{relPos: [2]float32{3000, 0}, relVel: [2]float32{-300, 0}, time: 10, dist: 0},
		// Parallel offset track: closest point is abeam, 500 m.
		{relPos: [2]float32{1000, 500}, relVel: [2]float32{-100, 0}, time: 10, dist: 500},
		// Receding: CPA was 5 s ago.
		{relPos: [2]float32{1000, 0}, relVel: [2]float32{200, 0}, time: -5, dist: 0},
	} {
		tm, d := ClosestApproach(c.relPos, c.relVel)
		if Abs(tm-c.time) > 1e-3 {
			t.Errorf("ClosestApproach(%v, %v) time %f, expected %f", c.relPos, c.relVel, tm, c.time)
		}
		if Abs(d-c.dist) > 1e-2 {
			t.Errorf("ClosestApproach(%v, %v) dist %f, expected %f", c.relPos, c.relVel, d, c.dist)
		}
	}
}

func TestClosestApproachDegenerate(t *testing.T) {
	tm, d := ClosestApproach([2]float32{4000, 3000}, [2]float32{0, 0})
	if !IsInf(tm) {
		t.Errorf("expected +Inf time for zero relative velocity, got %f", tm)
	}
	if d != 5000 {
		t.Errorf("expected current range 5000 for degenerate geometry, got %f", d)
	}
}

func TestRangeRate(t *testing.T) {
	// Closing head-on: rate is the full relative speed, negative.
	if rr := RangeRate([2]float32{1000, 0}, [2]float32{-250, 0}); rr != -250 {
		t.Errorf("head-on range rate %f, expected -250", rr)
	}
	// Perpendicular motion: no instantaneous range change.
	if rr := RangeRate([2]float32{1000, 0}, [2]float32{0, 100}); rr != 0 {
		t.Errorf("perpendicular range rate %f, expected 0", rr)
	}
	// Coincident positions must not blow up.
	if rr := RangeRate([2]float32{0, 0}, [2]float32{100, 0}); rr != 0 {
		t.Errorf("coincident range rate %f, expected 0", rr)
	}
}

func TestRangeTau(t *testing.T) {
	if tau := RangeTau(5000, -250); tau != 20 {
		t.Errorf("tau %f, expected 20", tau)
	}
	for _, rate := range []float32{0, 1e-9, 250} {
		if tau := RangeTau(5000, rate); !IsInf(tau) {
			t.Errorf("tau %f for non-closing rate %f, expected +Inf", tau, rate)
		}
	}
}

func TestVecOps(t *testing.T) {
	if v := Add2f([2]float32{1, 2}, [2]float32{3, -1}); v != [2]float32{4, 1} {
		t.Errorf("Add2f failed: %v", v)
	}
	if v := Sub2f([2]float32{1, 2}, [2]float32{3, -1}); v != [2]float32{-2, 3} {
		t.Errorf("Sub2f failed: %v", v)
	}
	if d := Distance2f([2]float32{0, 0}, [2]float32{3, 4}); d != 5 {
		t.Errorf("Distance2f failed: %f", d)
	}
	if n := Normalize2f([2]float32{0, 0}); n != [2]float32{0, 0} {
		t.Errorf("Normalize2f of zero vector: %v", n)
	}
}
