// tcas/config.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tcas-sim/tcas/math"
	"github.com/tcas-sim/tcas/util"
)

// SensitivityLevel is one row of the altitude-banded threshold table.
// Bands are [Floor, Ceiling) in feet of ownship sensed altitude. A TauRA
// of zero means RAs are inhibited at this level (SL2).
type SensitivityLevel struct {
	Floor   float32 `json:"floor"`
	Ceiling float32 `json:"ceiling"`
	Level   int     `json:"level"`
	TauTA   float32 `json:"tau_ta"`  // seconds
	TauRA   float32 `json:"tau_ra"`  // seconds; 0 = RA inhibited
	DMODTA  float32 `json:"dmod_ta"` // meters
	DMODRA  float32 `json:"dmod_ra"` // meters
	ZTHRTA  float32 `json:"zthr_ta"` // feet
	ZTHRRA  float32 `json:"zthr_ra"` // feet
	ALIM    float32 `json:"alim"`    // feet
}

// RAPermitted reports whether this sensitivity level allows Resolution
// Advisories at all.
func (sl SensitivityLevel) RAPermitted() bool {
	return sl.TauRA > 0
}

type Config struct {
	SensitivityLevels []SensitivityLevel `json:"sensitivity_levels"`

	// All RAs are inhibited below this ownship altitude (ft AGL
	// equivalent); TAs may still be issued. Checked every tick.
	RAInhibitAltitude float32 `json:"ra_inhibit_altitude"`

	// Below this altitude the ownship is treated as on the ground and
	// issues no advisories at all.
	GroundAltitude float32 `json:"ground_altitude"`

	// Ticks after RA issuance before an under-performing RA is
	// strengthened to an Increase subtype.
	StrengthenTicks int `json:"strengthen_ticks"`

	// Minimum ticks an RA is held after the threat drops below
	// resolution level before the advisory may clear.
	MaintainTicks int `json:"maintain_ticks"`

	// Proximate-traffic thresholds: traffic inside both is shown as
	// proximate even when no advisory applies.
	ProximateRange    float32 `json:"proximate_range"`    // meters
	ProximateVertical float32 `json:"proximate_vertical"` // feet

	// Predicted horizontal misses beyond this distance never qualify
	// for TA/RA regardless of tau.
	HMDFilter float32 `json:"hmd_filter"` // meters

	// Out-of-range gate: pairs beyond any of these are classified
	// without evaluating advisory thresholds.
	ClearRange    float32 `json:"clear_range"`    // meters
	ClearTau      float32 `json:"clear_tau"`      // seconds
	ClearVertical float32 `json:"clear_vertical"` // feet

	// Vertical rates a corrective and a strengthened RA demand.
	ClimbRate    float32 `json:"climb_rate"`    // feet/second
	IncreaseRate float32 `json:"increase_rate"` // feet/second

	// Vertical rates within this band of zero are considered level
	// flight when choosing preventive subtypes.
	LevelBand float32 `json:"level_band"` // feet/second

	// Near mid-air collision thresholds for the safety monitor.
	NMACRange    float32 `json:"nmac_range"`    // meters
	NMACVertical float32 `json:"nmac_vertical"` // feet
}

// DefaultConfig returns the published TCAS II v7.1 sensitivity-level
// table and companion thresholds.
func DefaultConfig() *Config {
	nm := math.NMToMeters
	return &Config{
		SensitivityLevels: []SensitivityLevel{
			// SL2 is TA-only; RAs are inhibited near the ground.
			{Floor: 0, Ceiling: 1000, Level: 2, TauTA: 20, TauRA: 0, DMODTA: nm(0.30), DMODRA: 0, ZTHRTA: 850, ZTHRRA: 0, ALIM: 0},
			{Floor: 1000, Ceiling: 2350, Level: 3, TauTA: 25, TauRA: 15, DMODTA: nm(0.33), DMODRA: nm(0.20), ZTHRTA: 850, ZTHRRA: 600, ALIM: 300},
			{Floor: 2350, Ceiling: 5000, Level: 4, TauTA: 30, TauRA: 20, DMODTA: nm(0.48), DMODRA: nm(0.35), ZTHRTA: 850, ZTHRRA: 600, ALIM: 350},
			{Floor: 5000, Ceiling: 10000, Level: 5, TauTA: 40, TauRA: 25, DMODTA: nm(0.75), DMODRA: nm(0.55), ZTHRTA: 850, ZTHRRA: 600, ALIM: 400},
			{Floor: 10000, Ceiling: 20000, Level: 6, TauTA: 45, TauRA: 30, DMODTA: nm(1.00), DMODRA: nm(0.80), ZTHRTA: 850, ZTHRRA: 600, ALIM: 600},
			{Floor: 20000, Ceiling: 42000, Level: 7, TauTA: 48, TauRA: 35, DMODTA: nm(1.30), DMODRA: nm(1.10), ZTHRTA: 850, ZTHRRA: 700, ALIM: 700},
			{Floor: 42000, Ceiling: 999999, Level: 7, TauTA: 48, TauRA: 35, DMODTA: nm(1.30), DMODRA: nm(1.10), ZTHRTA: 1200, ZTHRRA: 800, ALIM: 800},
		},
		RAInhibitAltitude: 1000,
		GroundAltitude:    50,
		StrengthenTicks:   5,
		MaintainTicks:     4,
		ProximateRange:    nm(6),
		ProximateVertical: 1200,
		HMDFilter:         nm(1.3),
		ClearRange:        nm(13),
		ClearTau:          60,
		ClearVertical:     4000,
		ClimbRate:         25,   // 1500 fpm
		IncreaseRate:      41.7, // 2500 fpm
		LevelBand:         math.FPMToFPS(100),
		NMACRange:         nm(0.3),
		NMACVertical:      300,
	}
}

// LoadConfig reads a Config from the JSON file at the given path and
// validates it. Configuration errors are fatal at startup: without a
// usable threshold table no classification is possible.
func LoadConfig(path string, e *util.ErrorLogger) *Config {
	e.Push("File " + path)
	defer e.Pop()

	b, err := os.ReadFile(path)
	if err != nil {
		e.Error(err)
		return nil
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		e.Error(err)
		return nil
	}

	cfg.Validate(e)
	if e.HaveErrors() {
		return nil
	}
	return cfg
}

func (c *Config) Validate(e *util.ErrorLogger) {
	e.Push("TCAS config")
	defer e.Pop()

	if len(c.SensitivityLevels) == 0 {
		e.ErrorString("no sensitivity levels given")
		return
	}

	e.Push("sensitivity_levels")
	if c.SensitivityLevels[0].Floor != 0 {
		e.ErrorString("first band must start at 0 ft, got %.0f", c.SensitivityLevels[0].Floor)
	}
	for i, sl := range c.SensitivityLevels {
		if sl.Ceiling <= sl.Floor {
			e.ErrorString("band %d: ceiling %.0f not above floor %.0f", i, sl.Ceiling, sl.Floor)
		}
		if i > 0 && sl.Floor != c.SensitivityLevels[i-1].Ceiling {
			e.ErrorString("band %d: floor %.0f leaves a gap below previous ceiling %.0f",
				i, sl.Floor, c.SensitivityLevels[i-1].Ceiling)
		}
		if sl.RAPermitted() {
			if sl.TauRA >= sl.TauTA {
				e.ErrorString("band %d: RA tau %.0f not below TA tau %.0f", i, sl.TauRA, sl.TauTA)
			}
			if sl.ALIM <= 0 {
				e.ErrorString("band %d: ALIM must be positive when RAs are permitted", i)
			}
		}
	}
	e.Pop()

	if c.StrengthenTicks <= 0 {
		e.ErrorString("strengthen_ticks must be positive")
	}
	if c.MaintainTicks <= 0 {
		e.ErrorString("maintain_ticks must be positive")
	}
	if c.ClimbRate <= 0 || c.IncreaseRate <= c.ClimbRate {
		e.ErrorString("increase_rate %.1f must exceed climb_rate %.1f and both must be positive",
			c.IncreaseRate, c.ClimbRate)
	}
}

// LevelForAltitude returns the sensitivity level active for the given
// ownship sensed altitude. Selection is a pure table lookup: the same
// altitude always gives the same level.
func (c *Config) LevelForAltitude(alt float32) (SensitivityLevel, error) {
	if alt < 0 {
		alt = 0
	}
	for _, sl := range c.SensitivityLevels {
		if alt >= sl.Floor && alt < sl.Ceiling {
			return sl, nil
		}
	}
	// Above the top band: the highest level stays in effect.
	if n := len(c.SensitivityLevels); n > 0 && alt >= c.SensitivityLevels[n-1].Ceiling {
		return c.SensitivityLevels[n-1], nil
	}
	return SensitivityLevel{}, fmt.Errorf("%.0f ft: %w", alt, ErrNoSensitivityLevel)
}
