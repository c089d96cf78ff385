// tcas/sensing.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"log/slog"
)

// FaultProfile describes a sensor/transponder fault to apply when an
// aircraft's state is sensed. Faults are plain configuration so the same
// snapshot path serves both faulted and unfaulted runs and a given
// profile always perturbs a given true state the same way.
type FaultProfile struct {
	AltitudeBias     float32 `json:"altitude_bias"`      // feet, added to sensed altitude
	VerticalRateBias float32 `json:"vertical_rate_bias"` // feet/second
	SuppressEquipage bool    `json:"suppress_equipage"`  // report the aircraft as non-TCAS
}

func (fp FaultProfile) IsZero() bool {
	return fp == FaultProfile{}
}

// Snapshot is the sensed view of an aircraft for one tick: the true
// state with the fault profile applied. Downstream stages (tracking,
// classification, the advisory engine) consume only Snapshots.
type Snapshot struct {
	Callsign     Callsign
	Position     [2]float32
	Velocity     [2]float32
	Altitude     float32
	VerticalRate float32
	TCASEquipped bool
	OnGround     bool
	Fault        FaultProfile
}

// NewSnapshot builds the sensed Snapshot of an aircraft. The true state
// is passed by value, so the caller's copy cannot be written even by a
// buggy fault profile.
func NewSnapshot(ac AircraftState, fp FaultProfile) Snapshot {
	return Snapshot{
		Callsign:     ac.Callsign,
		Position:     ac.Position,
		Velocity:     ac.Velocity,
		Altitude:     ac.Altitude + fp.AltitudeBias,
		VerticalRate: ac.VerticalRate + fp.VerticalRateBias,
		TCASEquipped: ac.TCASEquipped && !fp.SuppressEquipage,
		OnGround:     ac.OnGround,
		Fault:        fp,
	}
}

func (s Snapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("callsign", string(s.Callsign)),
		slog.Float64("altitude", float64(s.Altitude)),
		slog.Float64("vertical_rate", float64(s.VerticalRate)),
		slog.Bool("tcas_equipped", s.TCASEquipped),
	}
	if !s.Fault.IsZero() {
		attrs = append(attrs, slog.Any("fault", s.Fault))
	}
	return slog.GroupValue(attrs...)
}

func (fp FaultProfile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("altitude_bias", float64(fp.AltitudeBias)),
		slog.Float64("vertical_rate_bias", float64(fp.VerticalRateBias)),
		slog.Bool("suppress_equipage", fp.SuppressEquipage))
}
