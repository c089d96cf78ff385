// tcas/state.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"fmt"
	"log/slog"

	"github.com/tcas-sim/tcas/math"
)

type Callsign string

// AircraftState is the true state of an aircraft. It is owned and
// mutated by whoever is driving the simulation; the advisory pipeline
// only ever sees Snapshots derived from it via NewSnapshot, so nothing
// in this package can corrupt it.
type AircraftState struct {
	Callsign     Callsign   `json:"callsign"`
	Position     [2]float32 `json:"position"`      // meters
	Velocity     [2]float32 `json:"velocity"`      // meters/second
	Altitude     float32    `json:"altitude"`      // feet
	VerticalRate float32    `json:"vertical_rate"` // feet/second
	TCASEquipped bool       `json:"tcas_equipped"`
	OnGround     bool       `json:"on_ground"`
}

// Check reports whether the state is usable for the current tick;
// aircraft that fail are skipped, not fatal.
func (ac *AircraftState) Check() error {
	if ac.Callsign == "" {
		return ErrMissingCallsign
	}
	for _, v := range []float32{ac.Position[0], ac.Position[1], ac.Velocity[0], ac.Velocity[1],
		ac.Altitude, ac.VerticalRate} {
		if math.IsNaN(v) || math.IsInf(v) {
			return fmt.Errorf("%s: %w", ac.Callsign, ErrInvalidAircraftState)
		}
	}
	return nil
}

func (ac AircraftState) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("callsign", string(ac.Callsign)),
		slog.Any("position", ac.Position),
		slog.Any("velocity", ac.Velocity),
		slog.Float64("altitude", float64(ac.Altitude)),
		slog.Float64("vertical_rate", float64(ac.VerticalRate)),
		slog.Bool("tcas_equipped", ac.TCASEquipped))
}
