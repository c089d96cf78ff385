// cmd/tcassim/main.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tcas-sim/tcas/log"
	"github.com/tcas-sim/tcas/rand"
	"github.com/tcas-sim/tcas/sim"
	"github.com/tcas-sim/tcas/tcas"
	"github.com/tcas-sim/tcas/util"
)

var (
	scenarioName = flag.String("scenario", "headon", "name of a built-in scenario to run")
	scenarioFile = flag.String("scenario-file", "", "JSON scenario file (overrides -scenario)")
	configFile   = flag.String("config", "", "threshold configuration file (JSON); built-in defaults if unset")
	listFlag     = flag.Bool("list", false, "list built-in scenarios and exit")
	ticks        = flag.Int("ticks", 120, "number of one-second ticks to run")
	dt           = flag.Float64("dt", 1, "seconds per tick")
	seed         = flag.Int64("seed", 0, "perturb the scenario with this random seed (0: no perturbation)")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "directory for simulation logs (default: current directory)")
	encounterLog = flag.String("encounterlog", "", "write per-pair encounter records to this zstd-compressed CSV file")
	saveStateTo  = flag.String("savestate", "", "save the final world state to this file")
	resumeFrom   = flag.String("resume", "", "resume from a saved world state instead of a scenario")
)

func main() {
	flag.Parse()

	if *listFlag {
		scenarios := sim.BuiltinScenarios()
		for _, name := range util.SortedMapKeys(scenarios) {
			fmt.Printf("%-16s %s\n", name, scenarios[name].Description)
		}
		os.Exit(0)
	}

	lg := log.New(*logLevel, *logDir)

	w, err := makeWorld(lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *encounterLog != "" {
		el, err := sim.CreateEncounterLog(*encounterLog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *encounterLog, err)
			os.Exit(1)
		}
		defer el.Close()
		w.SetEncounterLog(el)
	}

	sub := w.Events().Subscribe()
	defer sub.Unsubscribe()

	for i := 0; i < *ticks; i++ {
		if err := w.Step(float32(*dt)); err != nil {
			fmt.Fprintf(os.Stderr, "tick %d: %v\n", w.Tick, err)
			os.Exit(1)
		}
		for _, ev := range sub.Get() {
			fmt.Printf("t=%6.1f  %s\n", w.SimTime, ev.String())
		}
	}

	summary := w.SafetySummary()
	lg.Info("run complete", slog.Int("ticks", w.Tick), slog.Any("summary", summary))
	fmt.Printf("\n%d ticks, %d NMAC events, min separation %.0f m / %.0f ft\n",
		w.Tick, summary.NMACCount, summary.MinHorizontal, summary.MinVertical)

	if *saveStateTo != "" {
		if err := w.SaveState(*saveStateTo); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *saveStateTo, err)
			os.Exit(1)
		}
	}
}

func makeWorld(lg *log.Logger) (*sim.World, error) {
	if *resumeFrom != "" {
		return sim.RestoreState(*resumeFrom, lg)
	}

	var e util.ErrorLogger
	cfg := tcas.DefaultConfig()
	if *configFile != "" {
		cfg = tcas.LoadConfig(*configFile, &e)
	} else {
		cfg.Validate(&e)
	}
	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, fmt.Errorf("invalid configuration")
	}

	var sc sim.Scenario
	if *scenarioFile != "" {
		var err error
		if sc, err = sim.LoadScenario(*scenarioFile, &e); err != nil {
			e.PrintErrors(lg)
			return nil, err
		}
	} else {
		var ok bool
		if sc, ok = sim.BuiltinScenarios()[*scenarioName]; !ok {
			return nil, fmt.Errorf("%s: unknown scenario (use -list)", *scenarioName)
		}
	}

	if *seed != 0 {
		r := rand.New()
		r.Seed(*seed)
		sc.Perturb(&r)
	}

	return sc.NewWorld(cfg, lg)
}
