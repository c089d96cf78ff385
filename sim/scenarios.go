// sim/scenarios.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/brunoga/deep"
	"github.com/tcas-sim/tcas/log"
	"github.com/tcas-sim/tcas/rand"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

// Scenario is a self-contained encounter setup: initial true states
// plus any sensing faults to install. Scenarios can be built in, or
// loaded from JSON.
type Scenario struct {
	Name          string                              `json:"name"`
	Description   string                              `json:"description,omitempty"`
	Aircraft      []tcas.AircraftState                `json:"aircraft"`
	Faults        map[tcas.Callsign]tcas.FaultProfile `json:"faults,omitempty"`
	PilotResponse bool                                `json:"pilot_response"`
}

// NewWorld builds a World populated from a deep copy of the scenario,
// so repeated runs of the same Scenario value are independent.
func (s Scenario) NewWorld(cfg *tcas.Config, lg *log.Logger) (*World, error) {
	sc := deep.MustCopy(s)

	w := NewWorld(cfg, lg)
	w.PilotResponse = sc.PilotResponse
	for _, ac := range sc.Aircraft {
		if err := w.AddAircraft(ac); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
		}
	}
	for cs, fp := range sc.Faults {
		if _, ok := w.Aircraft[cs]; !ok {
			return nil, fmt.Errorf("scenario %q: fault for %s: %w", sc.Name, cs, tcas.ErrNoSuchAircraft)
		}
		w.SetFault(cs, fp)
	}
	return w, nil
}

// Perturb jitters the initial positions, altitudes, and vertical rates
// so that Monte Carlo batches explore nearby geometry. Magnitudes are
// small relative to the encounter scale.
func (s *Scenario) Perturb(r *rand.Rand) {
	for i := range s.Aircraft {
		ac := &s.Aircraft[i]
		ac.Position[0] += r.Float32n(200) // meters
		ac.Position[1] += r.Float32n(200)
		ac.Altitude += r.Float32n(100) // feet
		ac.VerticalRate += r.Float32n(2)
	}
}

// LoadScenario reads a scenario from a JSON file, reporting validation
// problems through e.
func LoadScenario(path string, e *util.ErrorLogger) (Scenario, error) {
	e.Push("File " + path)
	defer e.Pop()

	var s Scenario
	b, err := os.ReadFile(path)
	if err != nil {
		e.Error(err)
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		e.Error(err)
		return s, err
	}
	s.check(e)
	if e.HaveErrors() {
		return s, fmt.Errorf("%s: invalid scenario", path)
	}
	return s, nil
}

func (s Scenario) check(e *util.ErrorLogger) {
	if s.Name == "" {
		e.ErrorString("scenario has no name")
	}
	if len(s.Aircraft) < 2 {
		e.ErrorString("scenario needs at least two aircraft")
	}
	seen := make(map[tcas.Callsign]any)
	for _, ac := range s.Aircraft {
		e.Push(string(ac.Callsign))
		if err := ac.Check(); err != nil {
			e.Error(err)
		}
		if _, ok := seen[ac.Callsign]; ok {
			e.Error(tcas.ErrDuplicateCallsign)
		}
		seen[ac.Callsign] = nil
		e.Pop()
	}
	for cs := range s.Faults {
		if _, ok := seen[cs]; !ok {
			e.ErrorString("fault profile for unknown aircraft " + string(cs))
		}
	}
}

// BuiltinScenarios returns the canned encounters, keyed by name.
func BuiltinScenarios() map[string]Scenario {
	mk := func(name, desc string, resp bool, ac []tcas.AircraftState, faults map[tcas.Callsign]tcas.FaultProfile) Scenario {
		return Scenario{Name: name, Description: desc, Aircraft: ac, Faults: faults, PilotResponse: resp}
	}

	scenarios := []Scenario{
		mk("headon", "co-altitude head-on encounter at cruise", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{150, 0},
					Altitude: 10000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{10000, 0}, Velocity: [2]float32{-150, 0},
					Altitude: 10000, TCASEquipped: true},
			}, nil),
		mk("headon-low", "head-on below the resolution advisory inhibit floor", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{100, 0},
					Altitude: 800, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{8000, 0}, Velocity: [2]float32{-100, 0},
					Altitude: 800, TCASEquipped: true},
			}, nil),
		mk("crossing", "converging at 90 degrees, slight altitude offset", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{140, 0},
					Altitude: 18000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{9000, -9000}, Velocity: [2]float32{0, 140},
					Altitude: 18300, VerticalRate: -5, TCASEquipped: true},
			}, nil),
		mk("overtake", "slow leader overtaken from behind, third aircraft clear", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{180, 0},
					Altitude: 30000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{12000, 0}, Velocity: [2]float32{110, 0},
					Altitude: 30000, TCASEquipped: true},
				{Callsign: "FAR1", Position: [2]float32{0, 80000}, Velocity: [2]float32{150, 0},
					Altitude: 31000, TCASEquipped: true},
			}, nil),
		mk("offset", "head-on tracks with a lateral miss distance", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{150, 0},
					Altitude: 12000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{12000, 3000}, Velocity: [2]float32{-150, 0},
					Altitude: 12000, TCASEquipped: true},
			}, nil),
		mk("unequipped", "intruder without a transponder-coupled system", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{150, 0},
					Altitude: 15000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{11000, 0}, Velocity: [2]float32{-150, 0},
					Altitude: 15000, TCASEquipped: false},
			}, nil),
		mk("bad-altimeter", "intruder reporting 3900 feet below its true altitude", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{150, 0},
					Altitude: 14000, TCASEquipped: true},
				{Callsign: "INT1", Position: [2]float32{11000, 0}, Velocity: [2]float32{-150, 0},
					Altitude: 14000, TCASEquipped: true},
			},
			map[tcas.Callsign]tcas.FaultProfile{
				"INT1": {AltitudeBias: -3900},
			}),
		mk("false-alert", "altimeter bias fakes a conflict against a safely separated intruder", true,
			[]tcas.AircraftState{
				{Callsign: "OWN1", Position: [2]float32{0, 0}, Velocity: [2]float32{150, 0},
					Altitude: 14000, TCASEquipped: true},
				// True altitude 17000 ft, 3000 ft above the ownship; its
				// bad altimeter reports 14100 ft, inside the advisory
				// envelope.
				{Callsign: "INT1", Position: [2]float32{11000, 0}, Velocity: [2]float32{-150, 0},
					Altitude: 17000, TCASEquipped: true},
			},
			map[tcas.Callsign]tcas.FaultProfile{
				"INT1": {AltitudeBias: -2900},
			}),
	}

	m := make(map[string]Scenario)
	for _, s := range scenarios {
		m[s.Name] = s
	}
	return m
}
