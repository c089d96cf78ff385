// tcas/threat_test.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"testing"
)

// mkTrack builds the Track for an intruder relative to a level ownship
// at the origin flying (150, 0) m/s at the given altitude.
func mkTrack(ownAlt float32, intrPos, intrVel [2]float32, intrAlt float32) Track {
	own := Snapshot{Callsign: "OWN1", Velocity: [2]float32{150, 0}, Altitude: ownAlt}
	intr := Snapshot{Callsign: "INT1", Position: intrPos, Velocity: intrVel, Altitude: intrAlt}
	return Relative(own, intr)
}

func TestClassifyOrdering(t *testing.T) {
	cfg := DefaultConfig()
	sl, err := cfg.LevelForAltitude(10000)
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		trk  Track
		want ThreatClass
	}{
		// Head-on, co-altitude, 8000 m out at 300 m/s closure: tau 26.7 s,
		// inside SL6's RA tau of 30.
		{"imminent head-on", mkTrack(10000, [2]float32{8000, 0}, [2]float32{-150, 0}, 10000),
			ResolutionCandidate},
		// Same geometry from 12000 m: tau 40 s, between the RA and TA
		// thresholds.
		{"approaching head-on", mkTrack(10000, [2]float32{12000, 0}, [2]float32{-150, 0}, 10000),
			TrafficAdvisory},
		// Co-speed traffic 5000 m ahead: no closure, so tau is infinite,
		// but it is well inside the proximate envelope.
		{"nearby co-speed", mkTrack(10000, [2]float32{5000, 0}, [2]float32{150, 0}, 10000),
			ProximateTraffic},
		// Distant co-speed traffic.
		{"distant", mkTrack(10000, [2]float32{50000, 0}, [2]float32{150, 0}, 10000),
			OtherTraffic},
		// Intruder directly behind and opening.
		{"receding", mkTrack(10000, [2]float32{-5000, 0}, [2]float32{-150, 0}, 10000),
			ProximateTraffic},
		// Head-on but 5000 ft above: outside the vertical gate entirely.
		{"vertically clear", mkTrack(10000, [2]float32{8000, 0}, [2]float32{-150, 0}, 15000),
			OtherTraffic},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier(cfg)
			if got := c.Classify("INT1", tc.trk, sl); got != tc.want {
				t.Errorf("got %s, expected %s", got, tc.want)
			}
		})
	}
}

// A head-on pair offset laterally by more than the horizontal miss
// distance filter never raises an advisory, even on the first tick when
// no miss-distance trend is known yet.
func TestHMDFilterWideMiss(t *testing.T) {
	cfg := DefaultConfig()
	sl, _ := cfg.LevelForAltitude(12000)
	c := NewClassifier(cfg)

	trk := mkTrack(12000, [2]float32{12000, 3000}, [2]float32{-150, 0}, 12000)
	if trk.CPADist <= cfg.HMDFilter {
		t.Fatalf("projected miss %f m should exceed the filter %f m", trk.CPADist, cfg.HMDFilter)
	}

	for tick := 0; tick < 5; tick++ {
		if got := c.Classify("INT1", trk, sl); got >= TrafficAdvisory {
			t.Fatalf("tick %d: got %s for wide lateral miss", tick, got)
		}
	}
}

// A projected miss between DMOD and the filter distance is only
// suppressed once the trend shows it is not shrinking, which takes a
// second observation.
func TestHMDFilterNeedsTrend(t *testing.T) {
	cfg := DefaultConfig()
	sl, _ := cfg.LevelForAltitude(10000)
	c := NewClassifier(cfg)

	// 2000 m projected miss: above SL6's TA DMOD (about 1850 m) but
	// below the 1.3 NM filter.
	trk := mkTrack(10000, [2]float32{10000, 2000}, [2]float32{-150, 0}, 10000)

	if got := c.Classify("INT1", trk, sl); got != TrafficAdvisory {
		t.Errorf("first tick: got %s, expected TrafficAdvisory", got)
	}
	// Identical geometry next tick: the miss is stable, so the filter
	// applies and the pair falls to proximate.
	if got := c.Classify("INT1", trk, sl); got != ProximateTraffic {
		t.Errorf("second tick: got %s, expected ProximateTraffic", got)
	}

	// Forgetting the intruder discards the trend.
	c.Forget("INT1")
	if got := c.Classify("INT1", trk, sl); got != TrafficAdvisory {
		t.Errorf("after Forget: got %s, expected TrafficAdvisory", got)
	}
}

// SL2 never produces a ResolutionCandidate no matter how dire the
// geometry.
func TestNoResolutionCandidateAtSL2(t *testing.T) {
	cfg := DefaultConfig()
	sl, _ := cfg.LevelForAltitude(800)
	c := NewClassifier(cfg)

	trk := mkTrack(800, [2]float32{2000, 0}, [2]float32{-150, 0}, 800)
	if got := c.Classify("INT1", trk, sl); got != TrafficAdvisory {
		t.Errorf("got %s, expected TrafficAdvisory", got)
	}
}
