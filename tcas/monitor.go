// tcas/monitor.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/tcas-sim/tcas/util"
)

// Monitor watches true (not sensed) pair geometry and accumulates
// near mid-air collision statistics for a run. It sits outside the
// advisory pipeline: advisories are computed from sensed data, while
// the monitor reports what actually happened.
type Monitor struct {
	cfg *Config

	// Ticks currently in violation, per pair, so an NMAC spanning many
	// ticks counts as one event.
	active map[[2]Callsign]bool

	Count          int     // distinct NMAC events
	ViolationTicks int     // total ticks with any pair in violation
	MinHorizontal  float32 // meters, over the whole run
	MinVertical    float32 // feet

	misses []float32 // projected miss distance per observation, meters
}

func NewMonitor(cfg *Config) *Monitor {
	return &Monitor{
		cfg:           cfg,
		active:        make(map[[2]Callsign]bool),
		MinHorizontal: float32(1e30),
		MinVertical:   float32(1e30),
	}
}

// Observe records one ownship-intruder observation for the current tick
// and reports whether the pair has just entered NMAC conditions.
func (m *Monitor) Observe(own, intr Callsign, trk Track) bool {
	if trk.Range < m.MinHorizontal {
		m.MinHorizontal = trk.Range
	}
	if trk.VerticalSep < m.MinVertical {
		m.MinVertical = trk.VerticalSep
	}
	m.misses = append(m.misses, trk.CPADist)

	// Order the pair so A-vs-B and B-vs-A land on the same key.
	key := [2]Callsign{min(own, intr), max(own, intr)}
	violating := trk.Range < m.cfg.NMACRange && trk.VerticalSep < m.cfg.NMACVertical

	entered := violating && !m.active[key]
	if entered {
		m.Count++
	}
	if violating {
		m.ViolationTicks++
	}
	m.active[key] = violating

	return entered
}

// Summary is the aggregated safety record for a run.
type Summary struct {
	NMACCount      int
	ViolationTicks int
	MinHorizontal  float32 // meters
	MinVertical    float32 // feet
	MeanMiss       float64 // meters
	MedianMiss     float64 // meters
}

func (m *Monitor) Summary() Summary {
	s := Summary{
		NMACCount:      m.Count,
		ViolationTicks: m.ViolationTicks,
		MinHorizontal:  m.MinHorizontal,
		MinVertical:    m.MinVertical,
	}
	if len(m.misses) > 0 {
		// gonum wants sorted float64s.
		sorted := util.MapSlice(m.misses, func(v float32) float64 { return float64(v) })
		slices.Sort(sorted)
		s.MeanMiss = stat.Mean(sorted, nil)
		s.MedianMiss = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return s
}

func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("nmac_count", s.NMACCount),
		slog.Int("violation_ticks", s.ViolationTicks),
		slog.Float64("min_horizontal_m", float64(s.MinHorizontal)),
		slog.Float64("min_vertical_ft", float64(s.MinVertical)),
		slog.Float64("mean_miss_m", s.MeanMiss),
		slog.Float64("median_miss_m", s.MedianMiss))
}
