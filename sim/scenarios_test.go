// sim/scenarios_test.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tcas-sim/tcas/rand"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

func TestBuiltinScenariosConstruct(t *testing.T) {
	for name, sc := range BuiltinScenarios() {
		t.Run(name, func(t *testing.T) {
			var e util.ErrorLogger
			sc.check(&e)
			if e.HaveErrors() {
				t.Fatalf("invalid scenario:\n%s", e.String())
			}
			w, err := sc.NewWorld(tcas.DefaultConfig(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(w.Aircraft) < 2 {
				t.Errorf("only %d aircraft", len(w.Aircraft))
			}
		})
	}
}

// NewWorld copies the scenario, so mutating one world never leaks into a
// later run of the same scenario.
func TestScenarioRunsAreIndependent(t *testing.T) {
	sc := BuiltinScenarios()["headon"]

	w1, err := sc.NewWorld(tcas.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	runTicks(t, w1, 50)

	w2, err := sc.NewWorld(tcas.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if w2.Aircraft["OWN1"].Position != sc.Aircraft[0].Position {
		t.Error("second run did not start from the scenario's initial state")
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	must(t, os.WriteFile(good, []byte(`{
		"name": "custom",
		"pilot_response": true,
		"aircraft": [
			{"callsign": "A1", "position": [0, 0], "velocity": [150, 0], "altitude": 9000, "tcas_equipped": true},
			{"callsign": "B1", "position": [9000, 0], "velocity": [-150, 0], "altitude": 9000, "tcas_equipped": true}
		],
		"faults": {"B1": {"altitude_bias": -500}}
	}`), 0o644))

	var e util.ErrorLogger
	sc, err := LoadScenario(good, &e)
	if err != nil {
		t.Fatalf("%v:\n%s", err, e.String())
	}
	if sc.Name != "custom" || len(sc.Aircraft) != 2 || sc.Faults["B1"].AltitudeBias != -500 {
		t.Errorf("scenario loaded incorrectly: %+v", sc)
	}

	for name, contents := range map[string]string{
		"one-aircraft.json": `{"name": "short", "aircraft": [{"callsign": "A1", "altitude": 100}]}`,
		"unnamed.json":      `{"aircraft": [{"callsign": "A1"}, {"callsign": "B1"}]}`,
		"dup-callsign.json": `{"name": "dup", "aircraft": [{"callsign": "A1"}, {"callsign": "A1"}]}`,
		"orphan-fault.json": `{"name": "orphan", "aircraft": [{"callsign": "A1"}, {"callsign": "B1"}], "faults": {"C1": {"altitude_bias": 1}}}`,
		"not-json.json":     `{`,
	} {
		path := filepath.Join(dir, name)
		must(t, os.WriteFile(path, []byte(contents), 0o644))
		var e util.ErrorLogger
		if _, err := LoadScenario(path, &e); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestPerturbIsSeeded(t *testing.T) {
	perturbed := func(seed int64) Scenario {
		sc := BuiltinScenarios()["headon"]
		r := rand.New()
		r.Seed(seed)
		sc.Perturb(&r)
		return sc
	}

	a, b := perturbed(7), perturbed(7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different scenarios:\n%s", diff)
	}

	c := perturbed(8)
	if cmp.Diff(a, c) == "" {
		t.Error("different seeds gave identical scenarios")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
