// tcas/advisory_test.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"testing"
)

func levelOwnship(alt float32) Snapshot {
	return Snapshot{Callsign: "OWN1", Altitude: alt, TCASEquipped: true}
}

// headOnTrack is the co-altitude converging geometry most tests start
// from: both ALIM-achievable senses, no vertical motion.
func headOnTrack(tau float32) Track {
	return Track{
		Range:     300 * tau,
		RangeRate: -300,
		Tau:       tau,
		CPATime:   tau,
	}
}

func resolutionThreat(cs Callsign, trk Track) []Threat {
	return []Threat{{Callsign: cs, Class: ResolutionCandidate, Track: trk, Equipped: true}}
}

func TestCorrectiveClimbHeadOn(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())
	coord := NewCoordinationRecord()

	adv := e.Update(levelOwnship(10000), resolutionThreat("INT1", headOnTrack(27)), coord)
	if adv.Mode != ModeRA || adv.Subtype != SubtypeClimb || adv.Sense != SenseUp {
		t.Fatalf("got %s, expected a corrective Climb", adv)
	}
	if adv.Intruder != "INT1" {
		t.Errorf("advisory names %s, expected INT1", adv.Intruder)
	}

	// The issued sense must be on record for coordination.
	if s, ok := coord.Assigned("OWN1"); !ok || s != SenseUp {
		t.Errorf("coordination record has %v/%v, expected SenseUp", s, ok)
	}
}

func TestRAInhibitedNearGround(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())

	// Below the inhibit floor a resolution-level threat yields a TA
	// flagged as inhibited, never an RA.
	adv := e.Update(levelOwnship(800), resolutionThreat("INT1", headOnTrack(15)), NewCoordinationRecord())
	if adv.Mode != ModeTA || !adv.Inhibited {
		t.Fatalf("got %s, expected an inhibited TA", adv)
	}

	// On the ground there is no advisory at all.
	own := levelOwnship(800)
	own.OnGround = true
	adv = e.Update(own, resolutionThreat("INT1", headOnTrack(15)), NewCoordinationRecord())
	if adv.Mode != ModeClear {
		t.Fatalf("got %s on the ground, expected Clear", adv)
	}
}

func TestMaintainHysteresis(t *testing.T) {
	cfg := DefaultConfig()
	e := NewAdvisoryEngine(cfg)
	own := levelOwnship(10000)

	adv := e.Update(own, resolutionThreat("INT1", headOnTrack(27)), NewCoordinationRecord())
	if adv.Mode != ModeRA {
		t.Fatalf("got %s, expected an RA", adv)
	}

	// Threat recedes to TA level: the RA holds as Maintain instead of
	// clearing.
	taThreat := []Threat{{Callsign: "INT1", Class: TrafficAdvisory, Track: headOnTrack(40), Equipped: true}}
	adv = e.Update(own, taThreat, NewCoordinationRecord())
	if adv.Mode != ModeRA || adv.Subtype != SubtypeMaintain {
		t.Fatalf("got %s, expected a Maintain hold", adv)
	}

	// The hold rides out MaintainTicks more empty ticks before clearing.
	for i := 0; i < cfg.MaintainTicks; i++ {
		adv = e.Update(own, nil, NewCoordinationRecord())
		if adv.Mode != ModeRA {
			t.Fatalf("hold tick %d: got %s, expected the RA to persist", i, adv)
		}
	}
	adv = e.Update(own, nil, NewCoordinationRecord())
	if adv.Mode != ModeClear {
		t.Fatalf("got %s after the hold expired, expected Clear", adv)
	}
}

func TestInhibitFloorOverridesMaintainHold(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())

	adv := e.Update(levelOwnship(2000), resolutionThreat("INT1", headOnTrack(12)), NewCoordinationRecord())
	if adv.Mode != ModeRA {
		t.Fatalf("got %s, expected an RA", adv)
	}

	// The ownship descends below the inhibit floor while the threat
	// recedes to TA level: the hold is overridden and the advisory
	// demotes to a TA immediately, not after the hold budget.
	taThreat := []Threat{{Callsign: "INT1", Class: TrafficAdvisory, Track: headOnTrack(40), Equipped: true}}
	adv = e.Update(levelOwnship(800), taThreat, NewCoordinationRecord())
	if adv.Mode != ModeTA {
		t.Fatalf("got %s below the floor, expected at most a TA", adv)
	}

	adv = e.Update(levelOwnship(800), nil, NewCoordinationRecord())
	if adv.Mode != ModeClear {
		t.Fatalf("got %s below the floor with no threat, expected Clear", adv)
	}

	// Same descent with the threat dropping out entirely: the RA clears
	// on the spot instead of riding out the hold as Maintain.
	e = NewAdvisoryEngine(DefaultConfig())
	adv = e.Update(levelOwnship(2000), resolutionThreat("INT1", headOnTrack(12)), NewCoordinationRecord())
	if adv.Mode != ModeRA {
		t.Fatalf("got %s, expected an RA", adv)
	}
	adv = e.Update(levelOwnship(800), nil, NewCoordinationRecord())
	if adv.Mode != ModeClear {
		t.Fatalf("got %s below the floor, expected Clear", adv)
	}
}

func TestPreventiveRA(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())
	own := levelOwnship(10000)

	// 700 ft of separation already projected at closest approach: the
	// advisory restricts rather than commands.
	trk := Track{Tau: 20, CPATime: 20, RelAltitude: 700, VerticalSep: 700}
	adv := e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	if adv.Subtype != SubtypeDoNotClimb || !adv.Subtype.Preventive() {
		t.Fatalf("got %s, expected Do Not Climb", adv)
	}
	if rate, ok := adv.TargetVerticalRate(e.Cfg, 0); !ok || rate != 0 {
		t.Errorf("preventive advisory demanded rate %f for level flight", rate)
	}

	// The geometry deteriorates; the preventive advisory escalates to a
	// corrective one in the safe direction (away from the intruder).
	trk = Track{Tau: 20, CPATime: 20, RelAltitude: 300, VerticalSep: 300}
	adv = e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	if adv.Subtype != SubtypeDescend || adv.Sense != SenseDown {
		t.Fatalf("got %s, expected a corrective Descend", adv)
	}
}

func TestStrengthenThenReverseOnce(t *testing.T) {
	cfg := DefaultConfig()
	e := NewAdvisoryEngine(cfg)
	own := levelOwnship(10000)

	// Too little time for the standard rate to reach ALIM.
	trk := headOnTrack(10)
	adv := e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	if adv.Mode != ModeRA || adv.Subtype != SubtypeClimb {
		t.Fatalf("got %s, expected a Climb", adv)
	}

	for adv.TicksInRA < cfg.StrengthenTicks {
		adv = e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	}
	if adv.Subtype != SubtypeIncreaseClimb {
		t.Fatalf("got %s after %d ticks, expected Increase Climb", adv, adv.TicksInRA)
	}

	// Strengthening hasn't helped and the vertical closure is growing:
	// the sense reverses.
	worse := trk
	worse.VerticalClosure = 5
	adv = e.Update(own, resolutionThreat("INT1", worse), NewCoordinationRecord())
	if adv.Subtype != SubtypeReversalDescend || adv.Sense != SenseDown {
		t.Fatalf("got %s, expected a Reversal Descend", adv)
	}

	// A second reversal is never issued in the same encounter, even if
	// the closure keeps growing.
	worse.VerticalClosure = 10
	adv = e.Update(own, resolutionThreat("INT1", worse), NewCoordinationRecord())
	if adv.Sense != SenseDown {
		t.Fatalf("got %s, the sense must not flip twice", adv)
	}
}

func TestReengageAfterStrengthenKeepsIncrease(t *testing.T) {
	cfg := DefaultConfig()
	e := NewAdvisoryEngine(cfg)
	own := levelOwnship(10000)

	trk := headOnTrack(10)
	adv := e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	for adv.TicksInRA < cfg.StrengthenTicks {
		adv = e.Update(own, resolutionThreat("INT1", trk), NewCoordinationRecord())
	}
	if adv.Subtype != SubtypeIncreaseClimb {
		t.Fatalf("got %s, expected Increase Climb before the hold", adv)
	}

	// Threat recedes to TA level and then comes back to resolution
	// level during the hold: the strengthened rate is still being
	// demanded, so the Increase subtype must come back with it.
	taThreat := []Threat{{Callsign: "INT1", Class: TrafficAdvisory, Track: headOnTrack(40), Equipped: true}}
	adv = e.Update(own, taThreat, NewCoordinationRecord())
	if adv.Subtype != SubtypeMaintain {
		t.Fatalf("got %s, expected a Maintain hold", adv)
	}

	adv = e.Update(own, resolutionThreat("INT1", headOnTrack(27)), NewCoordinationRecord())
	if adv.Subtype != SubtypeIncreaseClimb {
		t.Fatalf("got %s after re-engaging, expected Increase Climb", adv)
	}
	if rate, ok := adv.TargetVerticalRate(cfg, 0); !ok || rate != cfg.IncreaseRate {
		t.Errorf("re-engaged advisory demands rate %f, expected increase rate %f", rate, cfg.IncreaseRate)
	}
}

func TestCoordinationTakesComplement(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())
	coord := NewCoordinationRecord()
	coord.Assign("INT1", SenseUp)

	adv := e.Update(levelOwnship(10000), resolutionThreat("INT1", headOnTrack(27)), coord)
	if adv.Sense != SenseDown || adv.Subtype != SubtypeDescend {
		t.Fatalf("got %s, expected the complementary Descend", adv)
	}
}

func TestCoordinationCrossingFallback(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())
	coord := NewCoordinationRecord()
	coord.Assign("INT1", SenseUp)

	// The intruder is 400 ft below; descending to complement its climb
	// cannot reach ALIM in time, so the advisory climbs through its
	// projected path instead.
	trk := Track{Tau: 24, CPATime: 24, RelAltitude: -400, VerticalSep: 400}
	adv := e.Update(levelOwnship(10000), resolutionThreat("INT1", trk), coord)
	if adv.Sense != SenseUp || adv.Subtype != SubtypeCrossingClimb {
		t.Fatalf("got %s, expected a Crossing Climb", adv)
	}
}

func TestUnresolvedSecondaryThreat(t *testing.T) {
	e := NewAdvisoryEngine(DefaultConfig())
	threats := []Threat{
		{Callsign: "INT1", Class: ResolutionCandidate, Track: headOnTrack(20), Equipped: true},
		{Callsign: "INT2", Class: ResolutionCandidate,
			Track: Track{Tau: 24, CPATime: 24, RelAltitude: 500, VerticalSep: 500}, Equipped: true},
	}

	adv := e.Update(levelOwnship(10000), threats, NewCoordinationRecord())
	if adv.Sense != SenseUp {
		t.Fatalf("got %s, expected SenseUp against the dominant threat", adv)
	}
	if len(adv.Unresolved) != 1 || adv.Unresolved[0] != "INT2" {
		t.Errorf("Unresolved = %v, expected [INT2]", adv.Unresolved)
	}
}

func TestTargetVerticalRate(t *testing.T) {
	cfg := DefaultConfig()

	for _, tc := range []struct {
		subtype     RASubtype
		current     float32
		want        float32
		constrained bool
	}{
		{SubtypeClimb, 0, cfg.ClimbRate, true},
		{SubtypeClimb, 30, 30, true}, // already climbing faster
		{SubtypeDescend, 0, -cfg.ClimbRate, true},
		{SubtypeIncreaseClimb, 0, cfg.IncreaseRate, true},
		{SubtypeDoNotClimb, 10, 0, true},
		{SubtypeDoNotClimb, -10, -10, true},
		{SubtypeDoNotDescend, -10, 0, true},
		{SubtypeMaintain, 12, 12, true},
		{SubtypeNone, 5, 0, false},
	} {
		adv := Advisory{Mode: ModeRA, Subtype: tc.subtype}
		rate, constrained := adv.TargetVerticalRate(cfg, tc.current)
		if constrained != tc.constrained || (constrained && rate != tc.want) {
			t.Errorf("%s at current %f: got (%f, %v), expected (%f, %v)",
				tc.subtype, tc.current, rate, constrained, tc.want, tc.constrained)
		}
	}
}
