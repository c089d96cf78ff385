// tcas/coordination.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

// CoordinationRecord tracks which vertical sense each TCAS-equipped
// aircraft has committed to during the current tick so that two engines
// never command the same direction against each other. It is rebuilt
// from scratch every tick; coordination is a pure function of this
// record rather than of one engine reaching into another.
type CoordinationRecord struct {
	assigned map[Callsign]Sense
}

func NewCoordinationRecord() *CoordinationRecord {
	return &CoordinationRecord{assigned: make(map[Callsign]Sense)}
}

// Assign records the sense the given aircraft's engine selected this
// tick. Only meaningful senses are recorded.
func (c *CoordinationRecord) Assign(cs Callsign, s Sense) {
	if s != SenseNone {
		c.assigned[cs] = s
	}
}

// Assigned returns the sense already committed by the given aircraft
// this tick, if any.
func (c *CoordinationRecord) Assigned(cs Callsign) (Sense, bool) {
	s, ok := c.assigned[cs]
	return s, ok
}
