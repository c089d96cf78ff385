// tcas/errors.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"errors"
)

var (
	ErrDuplicateCallsign    = errors.New("Duplicate aircraft callsign")
	ErrInvalidAircraftState = errors.New("Invalid aircraft state")
	ErrMissingCallsign      = errors.New("Aircraft has no callsign")
	ErrNoSensitivityLevel   = errors.New("No sensitivity level for altitude")
	ErrNoSuchAircraft       = errors.New("No aircraft with that callsign")
	ErrUnknownThreatClass   = errors.New("Unknown threat class")
)
