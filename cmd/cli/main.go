// Command cli drives dispatch runs: single scenarios, full sweeps over
// weather years and subsidy levels, and ranking of finished analyses.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"grid-dispatch/internal/analysis"
	"grid-dispatch/internal/config"
	"grid-dispatch/internal/model"
	"grid-dispatch/internal/sweep"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "sweep":
		cmdSweep(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config examples/cz-2030.yaml --pecd-year 2009 SCENARIO")
	fmt.Println("  cli sweep --config examples/cz-2030.yaml [SCENARIO ...]")
	fmt.Println("  cli rank --config examples/cz-2030.yaml")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run executes one scenario under one weather year")
	fmt.Println("  - sweep covers every configured scenario and weather year,")
	fmt.Println("    skipping runs whose output directory already exists")
	fmt.Println("  - rank compares finished scenarios by total system cost")
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "cli")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Analysis config file")
	name := fs.String("name", "", "Override the analysis name")
	commonYear := fs.Int("common-year", 0, "Calendar year of the model horizon")
	pecdYear := fs.Int("pecd-year", 2009, "Weather year to run under")
	aggregation := fs.String("aggregation-level", "", "Aggregation of countries outside the focus region: none, coarse or fine")
	coalSubsidy := fs.String("cz-coal-subsidy", "", "Per-MWh subsidy for Czech coal sources")
	optimizeCoal := fs.String("optimize-coal", "none", "Open coal capacity to capex optimization: none, cz or all")
	withReserves := fs.Bool("with-reserves", false, "Reserve 300 MW of Czech hydro capacity for balancing")
	tyndpLignite := fs.Bool("tyndp-lignite-prices", false, "Use per-country TYNDP lignite prices")
	loadSolution := fs.Bool("load-solution", false, "Reuse the stored hourly solution instead of solving")
	storeModel := fs.Bool("store-model", false, "Dump the LP problem next to the solution")
	capacitiesFrom := fs.String("load-coal-capacities-from", "", "Summary CSV (optionally PATH:SCENARIO) to pin capacities from")
	scenarioOverride := fs.String("scenario-override", "", "Rename the single configured scenario")
	_ = fs.Parse(args)

	cfg, opts := loadConfig(fs, *cfgPath, *scenarioOverride, *capacitiesFrom)
	if *name != "" {
		cfg.Analysis.Name = *name
	}
	if *commonYear != 0 {
		cfg.Analysis.CommonYear = *commonYear
	}
	if *aggregation != "" {
		cfg.Analysis.AggregationLevel = model.AggregationLevel(*aggregation)
	}
	cfg.Analysis.PecdYears = []int{*pecdYear}
	cfg.Analysis.StoreModel = cfg.Analysis.StoreModel || *storeModel
	cfg.Analysis.LoadPreviousSolution = cfg.Analysis.LoadPreviousSolution || *loadSolution

	if *coalSubsidy != "" {
		subsidy, err := strconv.ParseFloat(*coalSubsidy, 64)
		if err != nil {
			fatalf("invalid --cz-coal-subsidy %q", *coalSubsidy)
		}
		opts.CoalSubsidies = []float64{subsidy}
	}
	applyOptimizeCoal(cfg, &opts, *optimizeCoal)
	if *withReserves {
		applyReserves(cfg)
	}
	log := newLogger()
	if *tyndpLignite {
		applyTyndpLignitePrices(cfg, log)
	}

	runner := &sweep.Runner{Config: cfg, Options: opts, Logger: log}
	if err := runner.Run(); err != nil {
		fatalf("%v", err)
	}
}

func cmdSweep(args []string) {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Analysis config file")
	name := fs.String("name", "", "Override the analysis name")
	coalSubsidies := fs.String("cz-coal-subsidies", "", "Comma-separated per-MWh subsidy levels for Czech coal")
	optimizeCoal := fs.String("optimize-coal", "none", "Open coal capacity to capex optimization: none, cz or all")
	withReserves := fs.Bool("with-reserves", false, "Reserve 300 MW of Czech hydro capacity for balancing")
	tyndpLignite := fs.Bool("tyndp-lignite-prices", false, "Use per-country TYNDP lignite prices")
	capacitiesFrom := fs.String("load-coal-capacities-from", "", "Summary CSV (optionally PATH:SCENARIO) to pin capacities from")
	scenarioOverride := fs.String("scenario-override", "", "Rename the single configured scenario")
	_ = fs.Parse(args)

	cfg, opts := loadConfig(fs, *cfgPath, *scenarioOverride, *capacitiesFrom)
	if *name != "" {
		cfg.Analysis.Name = *name
	}
	if *coalSubsidies != "" {
		for _, part := range strings.Split(*coalSubsidies, ",") {
			subsidy, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				fatalf("invalid subsidy %q in --cz-coal-subsidies", part)
			}
			opts.CoalSubsidies = append(opts.CoalSubsidies, subsidy)
		}
	}
	applyOptimizeCoal(cfg, &opts, *optimizeCoal)
	if *withReserves {
		applyReserves(cfg)
	}
	log := newLogger()
	if *tyndpLignite {
		applyTyndpLignitePrices(cfg, log)
	}

	runner := &sweep.Runner{Config: cfg, Options: opts, Logger: log}
	if err := runner.Run(); err != nil {
		fatalf("%v", err)
	}
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "Analysis config file")
	summaryPath := fs.String("summary", "", "Summary CSV to rank; defaults to the analysis output")
	_ = fs.Parse(args)

	path := *summaryPath
	if path == "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			fatalf("%v", err)
		}
		path = filepath.Join(cfg.Analysis.OutputDir, cfg.Analysis.Name,
			cfg.Analysis.Name+"-complete.csv")
	}

	rows, err := analysis.LoadSummaries(path)
	if err != nil {
		fatalf("%v", err)
	}
	ranked := analysis.Rank(analysis.Summarize(rows))
	analysis.RenderTable(os.Stdout, ranked)
}

// loadConfig reads the analysis config and the shared options. Positional
// arguments select a subset of the configured scenarios.
func loadConfig(fs *flag.FlagSet, cfgPath, scenarioOverride, capacitiesFrom string) (*config.Config, sweep.Options) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if scenarioOverride != "" {
		if err := cfg.ApplyScenarioOverride(scenarioOverride); err != nil {
			fatalf("%v", err)
		}
	}

	opts := sweep.Options{Scenarios: fs.Args()}
	if capacitiesFrom != "" {
		opts.CapacitiesFrom = capacitiesFrom
		// PATH:SCENARIO picks one scenario out of a shared summary file.
		if idx := strings.LastIndex(capacitiesFrom, ":"); idx > 1 {
			opts.CapacitiesFrom = capacitiesFrom[:idx]
			opts.CapacitiesFromScenario = capacitiesFrom[idx+1:]
		}
	}
	return cfg, opts
}

// applyOptimizeCoal turns capex optimization on for the released coal
// capacity; releasing the lower bound alone would change nothing.
func applyOptimizeCoal(cfg *config.Config, opts *sweep.Options, mode string) {
	switch mode {
	case "", "none":
		return
	case "all":
		opts.OptimizeCoalAll = true
	case "cz":
		opts.OptimizeCoal = model.Czechia
	default:
		fatalf("invalid --optimize-coal %q, want none, cz or all", mode)
	}
	cfg.Analysis.OptimizeCapex = true
}

// applyTyndpLignitePrices switches every scenario to the stratified TYNDP
// lignite prices. Coarse aggregation merges countries across the price
// groups, so the stratification only applies without it.
func applyTyndpLignitePrices(cfg *config.Config, log *slog.Logger) {
	if cfg.Analysis.AggregationLevel == model.AggregationCoarse {
		log.Warn("TYNDP lignite prices need aggregation level none or fine, ignoring")
		return
	}
	for i := range cfg.Scenarios {
		cfg.Scenarios[i].TyndpLignitePrices = true
	}
}

// applyReserves holds back part of the Czech hydro fleet for ancillary
// services, the way the grid operator contracts it outside the market.
func applyReserves(cfg *config.Config) {
	for i := range cfg.Scenarios {
		if cfg.Scenarios[i].Reserves == nil {
			cfg.Scenarios[i].Reserves = map[model.Region]config.ReservesAdjustment{}
		}
		reserves := cfg.Scenarios[i].Reserves[model.Czechia]
		reserves.HydroCapacityReductionMW = 300
		cfg.Scenarios[i].Reserves[model.Czechia] = reserves
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
