// sim/encounterlog_test.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/tcas-sim/tcas/math"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

func TestEncounterLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encounters.csv.zst")

	el, err := CreateEncounterLog(path)
	if err != nil {
		t.Fatal(err)
	}

	trk := tcas.Track{Range: 8000, RangeRate: -300, Tau: 26.667, CPADist: 0, VerticalSep: 0}
	adv := tcas.Advisory{Mode: tcas.ModeRA, Subtype: tcas.SubtypeClimb, Sense: tcas.SenseUp, Intruder: "INT1"}
	must(t, el.Write(4, "OWN1", "INT1", trk, tcas.ResolutionCandidate, adv, false))

	diverging := tcas.Track{Range: 5000, RangeRate: 300, Tau: math.Infinity, CPADist: 5000, VerticalSep: 500}
	must(t, el.Write(5, "OWN1", "INT1", diverging, tcas.OtherTraffic, tcas.Advisory{}, true))

	must(t, el.Close())

	b, err := util.ReadZSTFile(path)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, expected header plus 2 rows", len(recs))
	}
	if recs[0][0] != "time" || recs[1][8] != "ResolutionCandidate" || recs[1][10] != "Climb" {
		t.Errorf("unexpected contents: %v", recs[:2])
	}
	if recs[2][5] != "inf" {
		t.Errorf("diverging tau logged as %q, expected inf", recs[2][5])
	}
	if recs[1][11] != "false" || recs[2][11] != "true" {
		t.Errorf("nmac flags logged as %q, %q", recs[1][11], recs[2][11])
	}
}
