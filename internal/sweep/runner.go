package sweep

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"grid-dispatch/internal/config"
	"grid-dispatch/internal/data"
	"grid-dispatch/internal/dispatch"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// Options carry the command-line knobs applied on top of the configured
// scenarios.
type Options struct {
	// Open the coal capacity of one country (or of all countries) to capex
	// optimization by dropping its lower bound to zero.
	OptimizeCoal    model.Region
	OptimizeCoalAll bool
	// Subsidy levels to sweep for Czech coal sources; empty runs each
	// scenario once without a subsidy dimension.
	CoalSubsidies []float64
	// Pin source capacities to a previous run's summary CSV.
	CapacitiesFrom         string
	CapacitiesFromScenario string
	// Restrict the run to the named scenarios; empty runs all.
	Scenarios []string
}

// Runner executes every scenario of an analysis across its weather years,
// memoizing finished runs through the output directory layout.
type Runner struct {
	Config  *config.Config
	Options Options
	Logger  *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// run is a single dispatch invocation within the sweep matrix.
type run struct {
	scenario config.Scenario
	pecdYear int
	// nil when the subsidy dimension is not swept.
	coalSubsidy *float64
}

// name is the output directory of the run, unique within the analysis.
func (u run) name() string {
	name := fmt.Sprintf("%s-pecd-%d", u.scenario.Name, u.pecdYear)
	if u.coalSubsidy != nil {
		name = fmt.Sprintf("%s-subsidy-%.0f", name, *u.coalSubsidy)
	}
	return name
}

// Run expands the sweep matrix and executes it in order, failing fast on
// the first error. Finished scenarios (their output directory exists) are
// skipped so an interrupted sweep can resume where it stopped.
func (r *Runner) Run() error {
	runs, err := r.expand()
	if err != nil {
		return err
	}
	analysisDir := filepath.Join(r.Config.Analysis.OutputDir, r.Config.Analysis.Name)
	if err := os.MkdirAll(analysisDir, 0o755); err != nil {
		return err
	}

	log := r.logger()
	start := time.Now()
	for i, u := range runs {
		runDir := filepath.Join(analysisDir, u.name())
		if _, err := os.Stat(runDir); err == nil {
			log.Info("skipping finished run", "run", u.name(), "dir", runDir)
			continue
		}
		log.Info("starting run", "run", u.name(), "number", i+1, "total", len(runs))
		if err := r.runOne(u, runDir, analysisDir); err != nil {
			return fmt.Errorf("run %s: %w", u.name(), err)
		}
	}
	log.Info("sweep finished", "runs", len(runs), "elapsed", time.Since(start))
	return nil
}

// expand builds the scenario × weather year × subsidy matrix.
func (r *Runner) expand() ([]run, error) {
	selected := map[string]bool{}
	for _, name := range r.Options.Scenarios {
		selected[name] = true
	}

	var runs []run
	for _, scenario := range r.Config.Scenarios {
		if len(selected) > 0 && !selected[scenario.Name] {
			continue
		}
		for _, pecdYear := range r.Config.Analysis.PecdYears {
			if len(r.Options.CoalSubsidies) == 0 {
				runs = append(runs, run{scenario: scenario, pecdYear: pecdYear})
				continue
			}
			for _, subsidy := range r.Options.CoalSubsidies {
				subsidy := subsidy
				runs = append(runs, run{
					scenario: scenario, pecdYear: pecdYear, coalSubsidy: &subsidy,
				})
			}
		}
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs selected")
	}
	return runs, nil
}

func (r *Runner) runOne(u run, runDir, analysisDir string) error {
	log := r.logger().With("run", u.name())
	start := time.Now()

	plan, err := u.scenario.Resolve(r.Config.Analysis.Filter.Countries)
	if err != nil {
		return err
	}
	if err := r.applyOverrides(plan, u); err != nil {
		return err
	}

	builder := &Builder{
		Loader:      data.NewPecdLoader(r.Config.Analysis.DataDir),
		CommonYear:  r.Config.Analysis.CommonYear,
		Filter:      r.Config.Analysis.Filter,
		Aggregation: r.Config.Analysis.AggregationLevel,
		Logger:      log,
	}
	grids, err := builder.Build(plan, u.pecdYear)
	if err != nil {
		return err
	}

	optimization := &dispatch.Optimization{
		Grids:                   grids.Grids,
		Interconnectors:         grids.Interconnectors,
		FlexibleBasic:           grids.FlexibleBasic,
		Reserves:                grids.Reserves,
		OptimizeCapex:           r.Config.Analysis.OptimizeCapex,
		OptimizeRampUpCosts:     r.Config.Analysis.OptimizeRampUpCosts,
		IncludeTransmissionLoss: r.Config.Analysis.TransmissionLossInPrice,
		Solver:                  r.Config.Analysis.Solver,
		OutDir:                  runDir,
		StoreModel:              r.Config.Analysis.StoreModel,
		LoadPrevious:            r.Config.Analysis.LoadPreviousSolution,
		Logger:                  log,
	}
	result, err := optimization.Run()
	if err != nil {
		return err
	}
	log.Info("run solved", "objective_eur", result.ObjectiveEUR,
		"solver", result.SolverName, "elapsed", time.Since(start))

	// The stored stats survive an aborted sweep, so append after every run.
	if !r.Config.Analysis.LoadPreviousSolution {
		if err := r.appendStats(u, result, analysisDir); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) applyOverrides(plan *config.Plan, u run) error {
	if u.coalSubsidy != nil {
		if err := plan.ApplyCoalSubsidy(model.Czechia, *u.coalSubsidy); err != nil {
			return err
		}
	}
	if r.Config.Analysis.OptimizeCapex {
		switch {
		case r.Options.OptimizeCoalAll:
			if err := plan.ReleaseCoalCapacity(""); err != nil {
				return err
			}
		case r.Options.OptimizeCoal != "":
			if err := plan.ReleaseCoalCapacity(r.Options.OptimizeCoal); err != nil {
				return err
			}
		}
	}
	if r.Options.CapacitiesFrom != "" {
		err := plan.ApplyCapacitiesFromSummary(
			r.Options.CapacitiesFrom, r.Options.CapacitiesFromScenario, model.Czechia)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) appendStats(u run, result *dispatch.Result, analysisDir string) error {
	var rows []grid.StatRow
	for _, region := range sortedRegions(result.Grids) {
		rows = append(rows, grid.ComputeStats(u.name(), result.Grids[region])...)
	}
	path := filepath.Join(analysisDir, r.Config.Analysis.Name+"-complete.csv")
	if err := data.AppendSummary(path, rows); err != nil {
		return err
	}
	return nil
}

func sortedRegions(grids map[model.Region]*grid.CountryGrid) []model.Region {
	regions := make([]model.Region, 0, len(grids))
	for region := range grids {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}
