// sim/encounterlog.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/tcas-sim/tcas/math"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

// EncounterLog records one row per ownship/intruder pair per tick, for
// offline analysis. The file is zstd-compressed CSV; a full run of a
// multi-aircraft scenario is otherwise surprisingly big.
type EncounterLog struct {
	w  *csv.Writer
	wc io.WriteCloser
}

func CreateEncounterLog(path string) (*EncounterLog, error) {
	wc, err := util.CreateZSTFile(path)
	if err != nil {
		return nil, err
	}
	el := &EncounterLog{w: csv.NewWriter(wc), wc: wc}
	if err := el.w.Write([]string{"time", "ownship", "intruder", "range_m", "range_rate_mps",
		"tau_s", "cpa_dist_m", "vertical_sep_ft", "class", "mode", "subtype", "nmac"}); err != nil {
		wc.Close()
		return nil, err
	}
	return el, nil
}

// Write appends one row. trk is the sensed geometry the advisory logic
// saw; nmac reports whether the pair was in NMAC conditions by true
// geometry this tick.
func (el *EncounterLog) Write(t float32, own, intr tcas.Callsign, trk tcas.Track,
	class tcas.ThreatClass, adv tcas.Advisory, nmac bool) error {
	f := func(v float32) string {
		if math.IsInf(v) {
			return "inf"
		}
		return strconv.FormatFloat(float64(v), 'f', 3, 32)
	}
	return el.w.Write([]string{
		f(t), string(own), string(intr),
		f(trk.Range), f(trk.RangeRate), f(trk.Tau), f(trk.CPADist), f(trk.VerticalSep),
		class.String(), adv.Mode.String(), adv.Subtype.String(),
		strconv.FormatBool(nmac),
	})
}

func (el *EncounterLog) Close() error {
	el.w.Flush()
	if err := el.w.Error(); err != nil {
		el.wc.Close()
		return err
	}
	return el.wc.Close()
}
