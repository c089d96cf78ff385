// sim/world.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/tcas-sim/tcas/log"
	"github.com/tcas-sim/tcas/math"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

// World owns the true aircraft states and drives the advisory pipeline
// one tick at a time: integrate motion, sense, track, classify, advise,
// distribute events. Everything in a tick runs to completion before the
// next tick is accepted; per-tick results are committed wholesale at
// the end of Step so no partial update is ever visible.
type World struct {
	Aircraft map[tcas.Callsign]*tcas.AircraftState
	Faults   map[tcas.Callsign]tcas.FaultProfile

	Config  *tcas.Config
	Tick    int
	SimTime float32 // seconds

	// PilotResponse applies each advisory's vertical-rate demand to the
	// true state, closing the loop; with it off the aircraft fly their
	// scripted profiles and the advisories are observation-only.
	PilotResponse bool

	engines     map[tcas.Callsign]*tcas.AdvisoryEngine
	classifiers map[tcas.Callsign]*tcas.Classifier

	// Aircraft currently deviating from their scripted profile in
	// response to an advisory; they ease back to level once it clears.
	responding map[tcas.Callsign]bool

	// Committed results of the previous tick, for change detection and
	// external display.
	lastClass    map[pairKey]tcas.ThreatClass
	lastAdvisory map[tcas.Callsign]tcas.Advisory

	eventStream  *tcas.EventStream
	monitor      *tcas.Monitor
	encounterLog *EncounterLog
	lg           *log.Logger
}

type pairKey struct {
	Own, Intruder tcas.Callsign
}

func NewWorld(cfg *tcas.Config, lg *log.Logger) *World {
	return &World{
		Aircraft:     make(map[tcas.Callsign]*tcas.AircraftState),
		Faults:       make(map[tcas.Callsign]tcas.FaultProfile),
		Config:       cfg,
		engines:      make(map[tcas.Callsign]*tcas.AdvisoryEngine),
		classifiers:  make(map[tcas.Callsign]*tcas.Classifier),
		responding:   make(map[tcas.Callsign]bool),
		lastClass:    make(map[pairKey]tcas.ThreatClass),
		lastAdvisory: make(map[tcas.Callsign]tcas.Advisory),
		eventStream:  tcas.NewEventStream(lg),
		monitor:      tcas.NewMonitor(cfg),
		lg:           lg,
	}
}

func (w *World) AddAircraft(ac tcas.AircraftState) error {
	if err := ac.Check(); err != nil {
		return err
	}
	if _, ok := w.Aircraft[ac.Callsign]; ok {
		return fmt.Errorf("%s: %w", ac.Callsign, tcas.ErrDuplicateCallsign)
	}
	w.Aircraft[ac.Callsign] = &ac
	w.engines[ac.Callsign] = tcas.NewAdvisoryEngine(w.Config)
	w.classifiers[ac.Callsign] = tcas.NewClassifier(w.Config)
	return nil
}

func (w *World) RemoveAircraft(cs tcas.Callsign) error {
	if _, ok := w.Aircraft[cs]; !ok {
		return fmt.Errorf("%s: %w", cs, tcas.ErrNoSuchAircraft)
	}
	delete(w.Aircraft, cs)
	delete(w.Faults, cs)
	delete(w.engines, cs)
	delete(w.classifiers, cs)
	delete(w.responding, cs)
	for _, c := range w.classifiers {
		c.Forget(cs)
	}
	return nil
}

// SetFault installs (or with a zero profile, removes) the fault profile
// applied when the given aircraft is sensed.
func (w *World) SetFault(cs tcas.Callsign, fp tcas.FaultProfile) {
	if fp.IsZero() {
		delete(w.Faults, cs)
	} else {
		w.Faults[cs] = fp
	}
}

func (w *World) Events() *tcas.EventStream {
	return w.eventStream
}

func (w *World) SafetySummary() tcas.Summary {
	return w.monitor.Summary()
}

func (w *World) SetEncounterLog(el *EncounterLog) {
	w.encounterLog = el
}

// Advisory returns the committed advisory for the given aircraft as of
// the last completed tick.
func (w *World) Advisory(cs tcas.Callsign) (tcas.Advisory, bool) {
	adv, ok := w.lastAdvisory[cs]
	return adv, ok
}

// ThreatClass returns the committed threat class of intruder as seen by
// own as of the last completed tick.
func (w *World) ThreatClass(own, intruder tcas.Callsign) tcas.ThreatClass {
	return w.lastClass[pairKey{Own: own, Intruder: intruder}]
}

// Step advances the simulation by dt seconds and runs the advisory
// pipeline for every aircraft. Aircraft whose state is malformed this
// tick are dropped from the traffic picture for the tick only; the
// pipeline continues for the rest.
func (w *World) Step(dt float32) error {
	tick := w.Tick + 1

	// Integrate true motion.
	for _, ac := range w.Aircraft {
		ac.Position = math.Add2f(ac.Position, math.Scale2f(ac.Velocity, dt))
		ac.Altitude += ac.VerticalRate * dt
	}

	// Sense: build the per-aircraft snapshots, applying fault profiles.
	// Truth also gets an unfaulted snapshot for the safety monitor.
	var pending []tcas.Event
	sensed := make(map[tcas.Callsign]tcas.Snapshot)
	truth := make(map[tcas.Callsign]tcas.Snapshot)
	for cs, ac := range w.Aircraft {
		if err := ac.Check(); err != nil {
			w.lg.Warnf("%s: dropped for this tick: %v", cs, err)
			pending = append(pending, tcas.Event{
				Type:    tcas.AircraftDroppedEvent,
				Ownship: cs,
				Tick:    tick,
				Message: err.Error(),
			})
			continue
		}
		sensed[cs] = tcas.NewSnapshot(*ac, w.Faults[cs])
		truth[cs] = tcas.NewSnapshot(*ac, tcas.FaultProfile{})
	}

	order := util.SortedMapKeys(sensed)
	coord := tcas.NewCoordinationRecord()
	newClass := make(map[pairKey]tcas.ThreatClass)
	newAdvisory := make(map[tcas.Callsign]tcas.Advisory)

	for _, own := range order {
		if !w.Aircraft[own].TCASEquipped {
			// Unequipped aircraft are visible to everyone else but run
			// no advisory pipeline of their own.
			continue
		}

		ownSnap := sensed[own]
		sl, err := w.Config.LevelForAltitude(ownSnap.Altitude)
		if err != nil {
			// The threshold table is validated at startup; a miss here
			// means the configuration is unusable.
			return err
		}

		var threats []tcas.Threat
		for _, intr := range order {
			if intr == own {
				continue
			}
			intrSnap := sensed[intr]
			trk := tcas.Relative(ownSnap, intrSnap)
			class := w.classifiers[own].Classify(intr, trk, sl)
			key := pairKey{Own: own, Intruder: intr}
			newClass[key] = class
			if class != w.lastClass[key] {
				pending = append(pending, tcas.Event{
					Type:     tcas.ThreatClassChangedEvent,
					Ownship:  own,
					Intruder: intr,
					Class:    class,
					Tick:     tick,
				})
			}
			threats = append(threats, tcas.Threat{
				Callsign: intr,
				Class:    class,
				Track:    trk,
				Equipped: intrSnap.TCASEquipped,
			})
		}

		adv := w.engines[own].Update(ownSnap, threats, coord)
		newAdvisory[own] = adv

		if last := w.lastAdvisory[own]; !adv.SameGuidance(last) {
			var t tcas.EventType
			switch {
			case adv.Mode == tcas.ModeClear:
				t = tcas.AdvisoryClearedEvent
			case last.Mode == tcas.ModeClear:
				t = tcas.AdvisoryIssuedEvent
			default:
				t = tcas.AdvisoryChangedEvent
			}
			pending = append(pending, tcas.Event{
				Type:     t,
				Ownship:  own,
				Intruder: adv.Intruder,
				Advisory: adv,
				Tick:     tick,
			})
			w.lg.Info("advisory", slog.String("ownship", string(own)), slog.Any("advisory", adv))
		}
	}

	// Safety monitoring runs on true geometry, once per unordered pair,
	// equipped or not, so a faulted altimeter can fool the advisory
	// logic but never the record of what actually happened.
	for i, own := range order {
		for _, intr := range order[i+1:] {
			trueTrk := tcas.Relative(truth[own], truth[intr])
			if w.monitor.Observe(own, intr, trueTrk) {
				pending = append(pending, tcas.Event{
					Type:     tcas.NMACEvent,
					Ownship:  own,
					Intruder: intr,
					Tick:     tick,
				})
				w.lg.Warn("NMAC", slog.String("ownship", string(own)), slog.String("intruder", string(intr)))
			}
		}
	}

	// Commit: everything from here on is the tick's published result.
	w.lastClass = newClass
	w.lastAdvisory = newAdvisory
	w.Tick = tick
	w.SimTime += dt

	if w.PilotResponse {
		for _, cs := range order {
			ac := w.Aircraft[cs]
			if rate, ok := newAdvisory[cs].TargetVerticalRate(w.Config, ac.VerticalRate); ok {
				ac.VerticalRate = rate
				w.responding[cs] = true
			} else if w.responding[cs] {
				// Ease back toward level flight after the advisory
				// clears; scripted profiles are untouched.
				ac.VerticalRate *= 0.98
				if math.Abs(ac.VerticalRate) < 0.5 {
					ac.VerticalRate = 0
					delete(w.responding, cs)
				}
			}
		}
	}

	if w.encounterLog != nil {
		for _, own := range order {
			if !w.Aircraft[own].TCASEquipped {
				continue
			}
			for _, intr := range order {
				if intr == own {
					continue
				}
				key := pairKey{Own: own, Intruder: intr}
				trk := tcas.Relative(sensed[own], sensed[intr])
				trueTrk := tcas.Relative(truth[own], truth[intr])
				nmac := trueTrk.Range < w.Config.NMACRange && trueTrk.VerticalSep < w.Config.NMACVertical
				if err := w.encounterLog.Write(w.SimTime, own, intr, trk,
					newClass[key], newAdvisory[own], nmac); err != nil {
					w.lg.Errorf("encounter log: %v", err)
				}
			}
		}
	}

	for _, ev := range pending {
		w.eventStream.Post(ev)
	}

	return nil
}
