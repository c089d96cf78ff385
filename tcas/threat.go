// tcas/threat.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"github.com/tcas-sim/tcas/math"
)

// ThreatClass orders traffic by severity; higher values dominate when
// aggregating over intruders.
type ThreatClass int

const (
	OtherTraffic ThreatClass = iota
	ProximateTraffic
	TrafficAdvisory
	ResolutionCandidate
)

func (tc ThreatClass) String() string {
	return []string{"OtherTraffic", "ProximateTraffic", "TrafficAdvisory", "ResolutionCandidate"}[tc]
}

// Classifier assigns a ThreatClass to each intruder track against the
// active sensitivity level. It is almost a pure function of the current
// tick's Track; the one piece of cross-tick state is the previous
// projected miss distance per intruder, consulted by the horizontal
// miss distance filter.
type Classifier struct {
	Cfg *Config `msgpack:"-" json:"-"`

	// PrevCPADist holds last tick's projected miss distance for each
	// intruder so the filter can tell growing misses from shrinking
	// ones. Exported so a classifier survives state serialization.
	PrevCPADist map[Callsign]float32
}

func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{Cfg: cfg, PrevCPADist: make(map[Callsign]float32)}
}

// Classify applies the threshold rules in severity order, first match
// wins. The caller provides the sensitivity level active for the
// ownship's sensed altitude this tick.
func (c *Classifier) Classify(intruder Callsign, trk Track, sl SensitivityLevel) ThreatClass {
	prev, seen := c.PrevCPADist[intruder]
	c.PrevCPADist[intruder] = trk.CPADist

	if c.inAdvisoryRange(trk) {
		// The HMD filter: a pair whose predicted closest approach is
		// comfortably wide and not shrinking is not a threat no matter
		// what tau says; this keeps crossing traffic from triggering
		// spurious advisories.
		trend := seen && trk.CPADist >= prev
		hmdClear := func(dmod float32) bool {
			if trk.CPADist > c.Cfg.HMDFilter {
				return true
			}
			return trk.CPADist > dmod && trend
		}

		if sl.RAPermitted() && trk.Tau <= sl.TauRA && trk.VerticalSep <= sl.ZTHRRA &&
			!hmdClear(sl.DMODRA) {
			return ResolutionCandidate
		}
		if trk.Tau <= sl.TauTA && trk.VerticalSep <= sl.ZTHRTA && !hmdClear(sl.DMODTA) {
			return TrafficAdvisory
		}
	}

	if trk.Range <= c.Cfg.ProximateRange && trk.VerticalSep <= c.Cfg.ProximateVertical {
		return ProximateTraffic
	}
	return OtherTraffic
}

// inAdvisoryRange is the cheap out-of-range gate evaluated before any
// advisory thresholds: traffic that is far away, diverging, or well
// separated vertically can never be TA/RA this tick.
func (c *Classifier) inAdvisoryRange(trk Track) bool {
	if trk.CPADist > c.Cfg.ClearRange {
		return false
	}
	if math.IsInf(trk.Tau) || trk.Tau > c.Cfg.ClearTau {
		return false
	}
	if trk.VerticalSep > c.Cfg.ClearVertical {
		return false
	}
	if trk.CPATime < 0 {
		// Closest approach is behind us.
		return false
	}
	return true
}

// Forget drops the per-intruder trend state, e.g. when an aircraft
// leaves the traffic picture.
func (c *Classifier) Forget(intruder Callsign) {
	delete(c.PrevCPADist, intruder)
}
