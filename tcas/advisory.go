// tcas/advisory.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tcas-sim/tcas/math"
	"github.com/tcas-sim/tcas/util"
)

type AdvisoryMode int

const (
	ModeClear AdvisoryMode = iota
	ModeTA
	ModeRA
)

func (m AdvisoryMode) String() string {
	return []string{"Clear", "TA", "RA"}[m]
}

// Sense is the vertical direction an RA commands.
type Sense int

const (
	SenseNone Sense = iota
	SenseUp
	SenseDown
)

func (s Sense) String() string {
	return []string{"None", "Up", "Down"}[s]
}

func (s Sense) Complement() Sense {
	switch s {
	case SenseUp:
		return SenseDown
	case SenseDown:
		return SenseUp
	}
	return SenseNone
}

type RASubtype int

const (
	SubtypeNone RASubtype = iota
	SubtypeClimb
	SubtypeDescend
	SubtypeCrossingClimb
	SubtypeCrossingDescend
	SubtypeIncreaseClimb
	SubtypeIncreaseDescend
	SubtypeDoNotClimb
	SubtypeDoNotDescend
	SubtypeMaintainVS
	SubtypeReversalClimb
	SubtypeReversalDescend
	SubtypeMaintain
)

func (st RASubtype) String() string {
	return []string{"None", "Climb", "Descend", "CrossingClimb", "CrossingDescend",
		"IncreaseClimb", "IncreaseDescend", "DoNotClimb", "DoNotDescend", "MaintainVS",
		"ReversalClimb", "ReversalDescend", "Maintain"}[st]
}

// Preventive subtypes restrict the pilot's vertical rate without
// commanding a deviation from it.
func (st RASubtype) Preventive() bool {
	return st == SubtypeDoNotClimb || st == SubtypeDoNotDescend || st == SubtypeMaintainVS
}

// Advisory is the aggregated ownship advisory for one tick: at most one
// of these is active per ownship, reflecting the most severe intruder.
type Advisory struct {
	Mode      AdvisoryMode
	Subtype   RASubtype
	Sense     Sense
	Intruder  Callsign // intruder driving the advisory
	Inhibited bool     // RA suppressed by the low-altitude floor
	TicksInRA int

	// RA-level intruders whose individually-preferred sense conflicts
	// with the issued one; exposed for inspection rather than silently
	// dropped.
	Unresolved []Callsign
}

// SameGuidance reports whether two advisories give the pilot the same
// guidance, ignoring bookkeeping fields that change every tick.
func (a Advisory) SameGuidance(b Advisory) bool {
	return a.Mode == b.Mode && a.Subtype == b.Subtype && a.Sense == b.Sense &&
		a.Intruder == b.Intruder && a.Inhibited == b.Inhibited
}

func (a Advisory) String() string {
	switch a.Mode {
	case ModeClear:
		return "Clear"
	case ModeTA:
		if a.Inhibited {
			return fmt.Sprintf("TA %s (RA inhibited)", a.Intruder)
		}
		return fmt.Sprintf("TA %s", a.Intruder)
	default:
		return fmt.Sprintf("RA %s %s vs %s", a.Subtype, a.Sense, a.Intruder)
	}
}

func (a Advisory) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("mode", a.Mode.String())}
	if a.Mode == ModeRA {
		attrs = append(attrs,
			slog.String("subtype", a.Subtype.String()),
			slog.String("sense", a.Sense.String()),
			slog.Int("ticks_in_ra", a.TicksInRA))
	}
	if a.Intruder != "" {
		attrs = append(attrs, slog.String("intruder", string(a.Intruder)))
	}
	if a.Inhibited {
		attrs = append(attrs, slog.Bool("inhibited", true))
	}
	return slog.GroupValue(attrs...)
}

// TargetVerticalRate returns the vertical rate in feet/second the
// advisory asks the pilot to fly given the current rate; constrained is
// false when the advisory places no demand on the vertical rate.
func (a Advisory) TargetVerticalRate(cfg *Config, current float32) (rate float32, constrained bool) {
	switch a.Subtype {
	case SubtypeClimb, SubtypeCrossingClimb, SubtypeReversalClimb:
		return max(current, cfg.ClimbRate), true
	case SubtypeIncreaseClimb:
		return max(current, cfg.IncreaseRate), true
	case SubtypeDescend, SubtypeCrossingDescend, SubtypeReversalDescend:
		return min(current, -cfg.ClimbRate), true
	case SubtypeIncreaseDescend:
		return min(current, -cfg.IncreaseRate), true
	case SubtypeDoNotClimb:
		return min(current, 0), true
	case SubtypeDoNotDescend:
		return max(current, 0), true
	case SubtypeMaintainVS, SubtypeMaintain:
		return current, true
	}
	return 0, false
}

///////////////////////////////////////////////////////////////////////////
// AdvisoryEngine

// Threat is one intruder's assessment for the current tick, the input
// the advisory engine aggregates over.
type Threat struct {
	Callsign Callsign
	Class    ThreatClass
	Track    Track
	Equipped bool // intruder reports TCAS equipage
}

// AdvisoryEngine owns the per-ownship advisory state machine. All
// cross-tick advisory state lives here and is only mutated by Update,
// once per tick. Fields are exported so engine state serializes with
// the rest of a run snapshot.
type AdvisoryEngine struct {
	Cfg *Config `msgpack:"-" json:"-"`

	Current Advisory

	// Reversed guards the one-reversal-per-encounter rule; it resets
	// only when the advisory fully clears.
	Reversed     bool
	Strengthened bool

	// HoldTicks is the remaining maintain-hysteresis budget once the
	// driving intruder has dropped below resolution level.
	HoldTicks int

	// Previous tick's vertical closure of the driving intruder, for the
	// is-the-geometry-still-degrading reversal test.
	PrevClosure float32
	HaveClosure bool
}

func NewAdvisoryEngine(cfg *Config) *AdvisoryEngine {
	return &AdvisoryEngine{Cfg: cfg}
}

// Update advances the state machine one tick and returns the advisory
// for the ownship. threats may be in any order; the engine sorts them
// into a deterministic severity order itself.
func (e *AdvisoryEngine) Update(own Snapshot, threats []Threat, coord *CoordinationRecord) Advisory {
	slices.SortFunc(threats, func(a, b Threat) int {
		if a.Class != b.Class {
			return int(b.Class) - int(a.Class)
		}
		if c := cmp.Compare(a.Track.Tau, b.Track.Tau); c != 0 {
			return c
		}
		return cmp.Compare(a.Callsign, b.Callsign)
	})

	grounded := own.OnGround || own.Altitude < e.Cfg.GroundAltitude
	// The altitude floor is re-checked every tick; it is a condition,
	// not a latched state.
	raInhibited := grounded || own.Altitude < e.Cfg.RAInhibitAltitude

	var dominant *Threat
	if len(threats) > 0 && threats[0].Class >= TrafficAdvisory {
		dominant = &threats[0]
	}

	switch {
	case dominant == nil || grounded:
		e.updateBelowTA(raInhibited)
	case dominant.Class == ResolutionCandidate && !raInhibited:
		e.updateRA(own, dominant, threats, coord)
	default:
		e.updateTA(dominant, raInhibited, raInhibited && dominant.Class == ResolutionCandidate)
	}

	return e.Current
}

func (e *AdvisoryEngine) clear() {
	e.Current = Advisory{}
	e.Reversed = false
	e.Strengthened = false
	e.HoldTicks = 0
	e.HaveClosure = false
}

// updateBelowTA handles ticks with no TA-level threat: clear, except
// that an active RA rides out its maintain-hold budget first. The hold
// never survives the altitude floor: if the ownship has descended below
// it, the RA clears immediately.
func (e *AdvisoryEngine) updateBelowTA(raInhibited bool) {
	if e.Current.Mode == ModeRA && !raInhibited {
		if e.Current.Subtype != SubtypeMaintain {
			// The threat dropped straight out of resolution level
			// without passing through the TA envelope; the hold budget
			// still applies.
			e.Current.Subtype = SubtypeMaintain
			e.Current.TicksInRA++
			e.Current.Unresolved = nil
			e.HoldTicks = e.Cfg.MaintainTicks
			return
		}
		if e.HoldTicks > 0 {
			e.HoldTicks--
			e.Current.TicksInRA++
			e.Current.Unresolved = nil
			return
		}
	}
	e.clear()
}

// updateTA handles a TA-level dominant threat, including the case of a
// resolution-level threat whose RA is suppressed by the altitude floor.
// A maintain-hold is demoted to a plain TA the moment the ownship is
// below the floor, whatever class the threat holds.
func (e *AdvisoryEngine) updateTA(dom *Threat, raInhibited, floorInhibited bool) {
	if e.Current.Mode == ModeRA && !raInhibited {
		// Threat fell from resolution level but is still within the TA
		// envelope: hold the last commanded rate instead of clearing,
		// so the advisory doesn't chatter.
		if e.Current.Subtype != SubtypeMaintain {
			e.Current.Subtype = SubtypeMaintain
			e.HoldTicks = e.Cfg.MaintainTicks
		} else if e.HoldTicks > 0 {
			e.HoldTicks--
		}
		e.Current.TicksInRA++
		e.Current.Intruder = dom.Callsign
		e.Current.Unresolved = nil
		return
	}

	e.Current = Advisory{
		Mode:      ModeTA,
		Intruder:  dom.Callsign,
		Inhibited: floorInhibited,
	}
}

func (e *AdvisoryEngine) updateRA(own Snapshot, dom *Threat, threats []Threat, coord *CoordinationRecord) {
	tau := dom.Track.Tau
	alim := e.alimFor(own)

	sepWith := func(rate float32) float32 {
		return dom.Track.ProjectedVerticalSep(rate, own.VerticalRate, tau)
	}

	entering := e.Current.Mode != ModeRA
	reengaging := e.Current.Mode == ModeRA && e.Current.Subtype == SubtypeMaintain

	if entering {
		e.Current = Advisory{Mode: ModeRA, TicksInRA: 1}
		e.Strengthened = false
		e.HoldTicks = 0
		e.HaveClosure = false
		e.selectRA(own, dom, sepWith, alim, coord)
	} else {
		e.Current.TicksInRA++
		e.Current.Inhibited = false

		if reengaging {
			// Threat came back up to resolution level during the hold;
			// resume an advisory in the held sense. If the RA had been
			// strengthened before the hold, the Increase subtype comes
			// back with it so the label matches the demanded rate.
			e.HoldTicks = 0
			if e.Strengthened {
				e.Current.Subtype = increaseFor(e.Current.Sense)
			} else {
				e.Current.Subtype = correctiveFor(e.Current.Sense)
			}
		}

		switch {
		case e.Strengthened && !e.Reversed && e.HaveClosure &&
			dom.Track.VerticalClosure > e.PrevClosure:
			// Strengthening didn't help and the vertical geometry is
			// still degrading: flip the sense. At most once per
			// encounter.
			e.Reversed = true
			e.Current.Sense = e.Current.Sense.Complement()
			e.Current.Subtype = reversalFor(e.Current.Sense)

		case !e.Strengthened && e.Current.TicksInRA >= e.Cfg.StrengthenTicks &&
			!e.Current.Subtype.Preventive() &&
			sepWith(own.VerticalRate) < alim:
			e.Strengthened = true
			e.Current.Subtype = increaseFor(e.Current.Sense)

		case e.Current.Subtype.Preventive() && sepWith(own.VerticalRate) < alim:
			// A preventive RA whose geometry has deteriorated becomes
			// corrective.
			e.selectRA(own, dom, sepWith, alim, coord)
		}
	}

	e.Current.Intruder = dom.Callsign
	e.PrevClosure = dom.Track.VerticalClosure
	e.HaveClosure = true
	coord.Assign(own.Callsign, e.Current.Sense)

	// Any further resolution-level intruders whose preferred sense
	// opposes the issued one are surfaced, not dropped.
	e.Current.Unresolved = nil
	for i := 1; i < len(threats); i++ {
		t := &threats[i]
		if t.Class != ResolutionCandidate {
			break
		}
		if pref := e.preferredSense(own, t, alim); pref != SenseNone && pref != e.Current.Sense {
			e.Current.Unresolved = append(e.Current.Unresolved, t.Callsign)
		}
	}
}

// selectRA picks the sense and subtype for a new (or re-selected)
// resolution advisory against the dominant threat.
func (e *AdvisoryEngine) selectRA(own Snapshot, dom *Threat, sepWith func(float32) float32,
	alim float32, coord *CoordinationRecord) {
	intruderAbove := dom.Track.RelAltitude > 0
	sepUp := sepWith(e.commandedRate(SenseUp))
	sepDown := sepWith(e.commandedRate(SenseDown))

	// Coordination first: if an equipped intruder's engine has already
	// committed to a sense this tick, we must take the complement even
	// when it's not our individually best choice.
	if dom.Equipped {
		if theirs, ok := coord.Assigned(dom.Callsign); ok {
			required := theirs.Complement()
			reqSep := util.Select(required == SenseDown, sepDown, sepUp)
			if reqSep >= alim {
				e.Current.Sense = required
				e.Current.Subtype = correctiveFor(required)
			} else {
				// The complementary sense can't reach ALIM; take the
				// one that does, crossing through the intruder's
				// projected path.
				best := senseOfBetter(sepUp, sepDown)
				e.Current.Sense = best
				e.Current.Subtype = crossingFor(best)
			}
			return
		}
	}

	// Preventive: the current vertical rate already yields ALIM at
	// closest approach, so restrict rather than command.
	if sepWith(own.VerticalRate) >= alim {
		switch {
		case math.Abs(own.VerticalRate) > e.Cfg.LevelBand:
			e.Current.Subtype = SubtypeMaintainVS
			e.Current.Sense = util.Select(own.VerticalRate > 0, SenseUp, SenseDown)
		case intruderAbove:
			e.Current.Subtype = SubtypeDoNotClimb
			e.Current.Sense = SenseDown
		default:
			e.Current.Subtype = SubtypeDoNotDescend
			e.Current.Sense = SenseUp
		}
		return
	}

	achieveUp, achieveDown := sepUp >= alim, sepDown >= alim
	var sense Sense
	switch {
	case achieveUp && achieveDown:
		// Both work; prefer the smaller deviation from the current
		// vertical rate.
		devUp := math.Abs(e.Cfg.ClimbRate - own.VerticalRate)
		devDown := math.Abs(-e.Cfg.ClimbRate - own.VerticalRate)
		if devUp == devDown {
			sense = util.Select(intruderAbove, SenseDown, SenseUp)
		} else {
			sense = util.Select(devUp < devDown, SenseUp, SenseDown)
		}
	case achieveUp:
		sense = SenseUp
	case achieveDown:
		sense = SenseDown
	default:
		// Neither reaches ALIM; take whichever comes closer.
		sense = senseOfBetter(sepUp, sepDown)
	}

	e.Current.Sense = sense
	if (sense == SenseUp && intruderAbove) || (sense == SenseDown && !intruderAbove) {
		// The commanded path crosses the intruder's projected altitude.
		e.Current.Subtype = crossingFor(sense)
	} else {
		e.Current.Subtype = correctiveFor(sense)
	}
}

// preferredSense is the uncoordinated best sense against a secondary
// threat, used only to detect conflicting demands.
func (e *AdvisoryEngine) preferredSense(own Snapshot, t *Threat, alim float32) Sense {
	sepUp := t.Track.ProjectedVerticalSep(e.commandedRate(SenseUp), own.VerticalRate, t.Track.Tau)
	sepDown := t.Track.ProjectedVerticalSep(e.commandedRate(SenseDown), own.VerticalRate, t.Track.Tau)
	switch {
	case sepUp >= alim && sepDown >= alim:
		return SenseNone // either works, no conflict possible
	case sepUp >= alim:
		return SenseUp
	case sepDown >= alim:
		return SenseDown
	}
	return senseOfBetter(sepUp, sepDown)
}

func (e *AdvisoryEngine) commandedRate(s Sense) float32 {
	rate := e.Cfg.ClimbRate
	if e.Strengthened {
		rate = e.Cfg.IncreaseRate
	}
	if s == SenseDown {
		return -rate
	}
	return rate
}

// alimFor returns the ALIM for the ownship's current sensitivity level,
// falling back to the most conservative low-altitude value if the table
// lookup fails (which validation at startup should have ruled out).
func (e *AdvisoryEngine) alimFor(own Snapshot) float32 {
	if sl, err := e.Cfg.LevelForAltitude(own.Altitude); err == nil && sl.ALIM > 0 {
		return sl.ALIM
	}
	return 300
}

func correctiveFor(s Sense) RASubtype {
	if s == SenseDown {
		return SubtypeDescend
	}
	return SubtypeClimb
}

func crossingFor(s Sense) RASubtype {
	if s == SenseDown {
		return SubtypeCrossingDescend
	}
	return SubtypeCrossingClimb
}

func increaseFor(s Sense) RASubtype {
	if s == SenseDown {
		return SubtypeIncreaseDescend
	}
	return SubtypeIncreaseClimb
}

func reversalFor(s Sense) RASubtype {
	if s == SenseDown {
		return SubtypeReversalDescend
	}
	return SubtypeReversalClimb
}

func senseOfBetter(sepUp, sepDown float32) Sense {
	if sepDown > sepUp {
		return SenseDown
	}
	return SenseUp
}
