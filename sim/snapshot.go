// sim/snapshot.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"os"

	"github.com/tcas-sim/tcas/log"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
	"github.com/vmihailenco/msgpack/v5"
)

// savedState is the serialized form of a World: everything the pipeline
// needs to resume at the same tick with identical subsequent behavior.
// The safety monitor's record is per run, not saved state; a restored
// world starts one fresh. Config is saved alongside so a snapshot is
// self-describing, and reattached to the engines and classifiers after
// decoding since they do not serialize their back-pointer.
type savedState struct {
	Config   *tcas.Config
	Tick     int
	SimTime  float32
	Response bool

	Aircraft map[tcas.Callsign]*tcas.AircraftState
	Faults   map[tcas.Callsign]tcas.FaultProfile

	Engines     map[tcas.Callsign]*tcas.AdvisoryEngine
	Classifiers map[tcas.Callsign]*tcas.Classifier
	Responding  map[tcas.Callsign]bool

	// pairKey is not a legal msgpack map key, so the committed classes
	// are flattened to entries.
	Classes      []savedClass
	LastAdvisory map[tcas.Callsign]tcas.Advisory
}

type savedClass struct {
	Own, Intruder tcas.Callsign
	Class         tcas.ThreatClass
}

// SaveState writes the world's current committed state to path.
func (w *World) SaveState(path string) error {
	sv := savedState{
		Config:       w.Config,
		Tick:         w.Tick,
		SimTime:      w.SimTime,
		Response:     w.PilotResponse,
		Aircraft:     w.Aircraft,
		Faults:       w.Faults,
		Engines:      w.engines,
		Classifiers:  w.classifiers,
		Responding:   w.responding,
		LastAdvisory: w.lastAdvisory,
	}
	for k, c := range w.lastClass {
		sv.Classes = append(sv.Classes, savedClass{Own: k.Own, Intruder: k.Intruder, Class: c})
	}

	b, err := msgpack.Marshal(sv)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// RestoreState reads a snapshot written by SaveState and returns a
// world ready to Step from the saved tick.
func RestoreState(path string, lg *log.Logger) (*World, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sv savedState
	if err := msgpack.Unmarshal(b, &sv); err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	sv.Config.Validate(&e)
	if e.HaveErrors() {
		return nil, errors.New(e.String())
	}

	w := NewWorld(sv.Config, lg)
	w.Tick = sv.Tick
	w.SimTime = sv.SimTime
	w.PilotResponse = sv.Response
	w.Aircraft = sv.Aircraft
	w.Faults = sv.Faults
	w.lastAdvisory = sv.LastAdvisory
	for _, sc := range sv.Classes {
		w.lastClass[pairKey{Own: sc.Own, Intruder: sc.Intruder}] = sc.Class
	}
	for cs, eng := range sv.Engines {
		eng.Cfg = sv.Config
		w.engines[cs] = eng
	}
	for cs, c := range sv.Classifiers {
		c.Cfg = sv.Config
		if c.PrevCPADist == nil {
			c.PrevCPADist = make(map[tcas.Callsign]float32)
		}
		w.classifiers[cs] = c
	}
	// Aircraft present in the snapshot but missing an engine (or vice
	// versa) would leave the pipeline inconsistent.
	for cs := range w.Aircraft {
		if _, ok := w.engines[cs]; !ok {
			w.engines[cs] = tcas.NewAdvisoryEngine(sv.Config)
		}
		if _, ok := w.classifiers[cs]; !ok {
			w.classifiers[cs] = tcas.NewClassifier(sv.Config)
		}
	}
	if w.lastAdvisory == nil {
		w.lastAdvisory = make(map[tcas.Callsign]tcas.Advisory)
	}
	if w.Faults == nil {
		w.Faults = make(map[tcas.Callsign]tcas.FaultProfile)
	}
	if sv.Responding != nil {
		w.responding = sv.Responding
	}

	return w, nil
}
