package dispatch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/lp"
	"grid-dispatch/internal/model"
)

// reindexMaxBackfill fills holes in an hourly series from the next valid
// value, but only across short gaps (e.g. the missing hour of a DST switch).
const reindexMaxBackfill = 4

// Optimization sets up and solves the joint dispatch problem of a set of
// interconnected country grids.
type Optimization struct {
	Grids           map[model.Region]*grid.CountryGrid
	Interconnectors model.Interconnectors
	FlexibleBasic   map[model.Region]map[model.BasicSourceType]model.FlexibleBasicSource
	Reserves        map[model.Region]*model.Reserves

	OptimizeCapex           bool
	OptimizeRampUpCosts     bool
	IncludeTransmissionLoss bool

	// Solver to use; the default fallback order applies when empty.
	Solver string
	// Directory where the per-country solution CSVs land.
	OutDir string
	// StoreModel additionally dumps the problem as OutDir/model.lp.
	StoreModel bool
	// LoadPrevious re-reads a stored solution from OutDir instead of
	// solving. The grid parameters must match the run that produced it.
	LoadPrevious bool

	Logger *slog.Logger
}

// Result of a solved dispatch problem.
type Result struct {
	Grids        map[model.Region]*grid.CountryGrid
	ObjectiveEUR float64
	SolverName   string
	Elapsed      time.Duration
}

func (o *Optimization) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Optimization) regions() []model.Region {
	regions := make([]model.Region, 0, len(o.Grids))
	for region := range o.Grids {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

// alignGrids reindexes every grid onto the union of all hourly indexes so
// that the per-hour constraints line up across countries.
func (o *Optimization) alignGrids() []time.Time {
	indexes := make([][]time.Time, 0, len(o.Grids))
	for _, g := range o.Grids {
		indexes = append(indexes, g.Data.Index())
	}
	union := grid.UnionIndex(indexes...)
	for _, g := range o.Grids {
		if g.Data.Len() != len(union) {
			g.Data = g.Data.Reindex(union, reindexMaxBackfill)
		}
	}
	return union
}

// flowVariables registers one hourly flow variable per interconnector
// between two modelled countries and returns them indexed from both ends.
func (o *Optimization) flowVariables(m *lp.Model, steps int) (
	outflow, inflow map[model.Region]map[model.Region][]lp.Var) {
	outflow = map[model.Region]map[model.Region][]lp.Var{}
	inflow = map[model.Region]map[model.Region][]lp.Var{}

	for _, from := range o.regions() {
		for _, to := range o.regions() {
			link, ok := o.Interconnectors.ConnectionsFrom(from)[to]
			if !ok || link.CapacityMW == 0 {
				continue
			}
			flow := m.AddVars(
				fmt.Sprintf("flow_MW_%s_%s", from, to), steps, 0, link.CapacityMW, 0)
			if outflow[from] == nil {
				outflow[from] = map[model.Region][]lp.Var{}
			}
			if inflow[to] == nil {
				inflow[to] = map[model.Region][]lp.Var{}
			}
			outflow[from][to] = flow
			inflow[to][from] = flow
		}
	}
	return outflow, inflow
}

func (o *Optimization) buildProblems(m *lp.Model) (
	map[model.Region]*CountryProblem, error) {
	o.alignGrids()
	steps := 0
	for _, g := range o.Grids {
		steps = g.Data.Len()
		break
	}

	outflow, inflow := o.flowVariables(m, steps)

	problems := map[model.Region]*CountryProblem{}
	for _, region := range o.regions() {
		losses := map[model.Region]float64{}
		for from, link := range o.Interconnectors.ConnectionsTo(region) {
			losses[from] = link.Loss
		}
		problem := &CountryProblem{
			Grid:                o.Grids[region],
			FlexibleBasic:       o.FlexibleBasic[region],
			Reserves:            o.Reserves[region],
			OptimizeCapex:       o.OptimizeCapex,
			OptimizeRampUpCosts: o.OptimizeRampUpCosts,
		}
		if err := problem.Build(m, outflow[region], inflow[region], losses); err != nil {
			return nil, fmt.Errorf("building problem for %s: %w", region, err)
		}
		problems[region] = problem
	}
	return problems, nil
}

// Run builds the joint problem, writes the LP file, solves, and extracts the
// hourly solution back into the grids.
func (o *Optimization) Run() (*Result, error) {
	log := o.logger()
	start := time.Now()

	if o.LoadPrevious {
		if err := LoadSolution(o.OutDir, o.Grids); err != nil {
			return nil, err
		}
		log.Info("loaded previous solution", "dir", o.OutDir)
		return &Result{Grids: o.Grids, Elapsed: time.Since(start)}, nil
	}

	m := lp.NewModel("grid_dispatch")
	problems, err := o.buildProblems(m)
	if err != nil {
		return nil, err
	}
	log.Info("dispatch problem built",
		"countries", len(problems), "vars", m.NumVars(), "rows", m.NumRows())

	if o.StoreModel && o.OutDir != "" {
		if err := o.writeModel(m); err != nil {
			return nil, err
		}
	}

	solution, err := lp.Solve(m, o.Solver)
	if err != nil {
		return nil, fmt.Errorf("solving dispatch problem: %w", err)
	}
	if !solution.IsOptimal() {
		return nil, fmt.Errorf("dispatch problem ended %s", solution.Status)
	}
	log.Info("dispatch problem solved",
		"objective_eur", solution.Objective, "elapsed", time.Since(start))

	for region, problem := range problems {
		extractor := solutionExtractor{problem: problem, solution: solution}
		if err := extractor.apply(); err != nil {
			return nil, fmt.Errorf("extracting solution for %s: %w", region, err)
		}
	}
	if err := EstimateSpotPrices(o.Grids, o.Interconnectors,
		o.IncludeTransmissionLoss); err != nil {
		return nil, err
	}

	if o.OutDir != "" {
		if err := StoreSolution(o.OutDir, o.Grids); err != nil {
			return nil, err
		}
	}
	return &Result{
		Grids:        o.Grids,
		ObjectiveEUR: solution.Objective,
		SolverName:   solution.Solver,
		Elapsed:      time.Since(start),
	}, nil
}

func (o *Optimization) writeModel(m *lp.Model) error {
	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(o.OutDir, "model.lp")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer f.Close()
	if err := lp.WriteLP(f, m); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
