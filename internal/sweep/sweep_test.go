package sweep

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/config"
	"grid-dispatch/internal/data"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

type demandRow struct {
	Country string  `parquet:"country"`
	Year    int32   `parquet:"year"`
	Month   int32   `parquet:"month"`
	Day     int32   `parquet:"day"`
	Hour    int32   `parquet:"hour"`
	DemMW   float64 `parquet:"dem_MW"`
}

type capacityFactorRow struct {
	Country string  `parquet:"country"`
	Year    int32   `parquet:"year"`
	Month   int32   `parquet:"month"`
	Day     int32   `parquet:"day"`
	Hour    int32   `parquet:"hour"`
	CF      float64 `parquet:"cf"`
}

type inflowRow struct {
	Country    string  `parquet:"country"`
	Year       int32   `parquet:"year"`
	Week       int32   `parquet:"Week"`
	Technology string  `parquet:"technology"`
	InflowGWh  float64 `parquet:"inflow_GWh"`
}

func writeParquet[T any](t *testing.T, path string, rows []T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	w := parquet.NewGenericWriter[T](f)
	_, err = w.Write(rows)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

const (
	testWeatherYear = 1995
	testCommonYear  = 2025
)

// writeTestData lays out a PECD data directory with flat Czech demand, a
// constant solar and onshore capacity factor and one week of hydro inflows.
func writeTestData(t *testing.T, dataDir string, demandMW float64) {
	t.Helper()
	pecdDir := filepath.Join(dataDir, "pecd")

	hours := data.HourlyIndex(testCommonYear)
	demand := make([]demandRow, 0, len(hours))
	factors := make([]capacityFactorRow, 0, len(hours))
	for _, ts := range hours {
		demand = append(demand, demandRow{
			Country: "CZ", Year: testWeatherYear,
			Month: int32(ts.Month()), Day: int32(ts.Day()), Hour: int32(ts.Hour() + 1),
			DemMW: demandMW,
		})
		factors = append(factors, capacityFactorRow{
			Country: "CZ", Year: testWeatherYear,
			Month: int32(ts.Month()), Day: int32(ts.Day()), Hour: int32(ts.Hour() + 1),
			CF: 0.5,
		})
	}
	writeParquet(t, filepath.Join(pecdDir,
		fmt.Sprintf("PECD-country-demand_national_estimates-%d.parquet", data.DefaultTargetYear)),
		demand)
	writeParquet(t, filepath.Join(pecdDir,
		fmt.Sprintf("PECD-ERAA2023-LFSolarPV-%d.parquet", data.DefaultTargetYear)), factors)
	writeParquet(t, filepath.Join(pecdDir,
		fmt.Sprintf("PECD-ERAA2023-Wind_Onshore-%d.parquet", data.DefaultTargetYear)), factors)

	writeParquet(t, filepath.Join(pecdDir,
		fmt.Sprintf("PECD-ERAA2023-reservoir+pumped-inflows-%d.parquet", data.DefaultTargetYear)),
		[]inflowRow{
			{Country: "CZ", Year: testWeatherYear, Week: 1,
				Technology: "reservoir", InflowGWh: 16.8},
		})
	writeParquet(t, filepath.Join(pecdDir,
		fmt.Sprintf("PECD-ERAA2023-RoR+pondage-inflows-%d.parquet", data.DefaultTargetYear)),
		[]inflowRow{
			{Country: "CZ", Year: testWeatherYear, Week: 1,
				Technology: "ror", InflowGWh: 16.8},
		})
}

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	return &config.Config{
		Analysis: config.Analysis{
			Name:             "cz-mini",
			CommonYear:       testCommonYear,
			PecdYears:        []int{testWeatherYear},
			AggregationLevel: model.AggregationNone,
			Filter: config.Filter{
				Countries: []model.Region{model.Czechia},
				Days:      []string{"2025-01-01"},
			},
			DataDir:   dataDir,
			OutputDir: filepath.Join(t.TempDir(), "output"),
		},
		Scenarios: []config.Scenario{{Name: "baseline", Year: 2025}},
	}
}

func TestBuilderBuildsCountryGrid(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, dataDir, 6000)

	plan, err := config.Scenario{Name: "baseline", Year: 2025}.
		Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)

	builder := &Builder{
		Loader:     data.NewPecdLoader(dataDir),
		CommonYear: testCommonYear,
	}
	grids, err := builder.Build(plan, testWeatherYear)
	require.NoError(t, err)

	g := grids.Grids[model.Czechia]
	require.NotNil(t, g)
	assert.Equal(t, data.HoursInYear(testCommonYear), g.Data.Len())

	// Demand is scaled by the Czech load calibration factor.
	assert.InDelta(t, 6000*0.9, g.Data.Column(grid.KeyLoad)[0], 1e-9)

	// Solar follows the capacity factor, nuclear runs flat.
	assert.InDelta(t, 0.5*3500, g.Data.Column(grid.BasicKey(model.Solar))[12], 1e-9)
	assert.InDelta(t, 4047, g.Data.Column(grid.BasicKey(model.Nuclear))[12], 1e-9)

	// One week of reservoir inflow spread into hourly megawatts.
	inflow := g.Data.Column(grid.KeyHydroInflowReservoir)
	require.NotNil(t, inflow)
	assert.InDelta(t, 100.0, inflow[0], 1e-9)
	assert.InDelta(t, 0.0, inflow[len(inflow)-1], 1e-9)

	// Nuclear flexibility travels alongside the grid.
	_, ok := grids.FlexibleBasic[model.Czechia][model.Nuclear]
	assert.True(t, ok)
}

func TestBuilderAppliesDayFilter(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, dataDir, 6000)

	plan, err := config.Scenario{Name: "baseline", Year: 2025}.
		Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)

	builder := &Builder{
		Loader:     data.NewPecdLoader(dataDir),
		CommonYear: testCommonYear,
		Filter:     config.Filter{Days: []string{"2025-01-01", "2025-01-02"}},
	}
	grids, err := builder.Build(plan, testWeatherYear)
	require.NoError(t, err)
	assert.Equal(t, 48, grids.Grids[model.Czechia].Data.Len())
}

func TestBuilderWeekSampling(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, dataDir, 6000)

	plan, err := config.Scenario{Name: "baseline", Year: 2025}.
		Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)

	builder := &Builder{
		Loader:     data.NewPecdLoader(dataDir),
		CommonYear: testCommonYear,
		Filter:     config.Filter{WeekSampling: 4},
	}
	grids, err := builder.Build(plan, testWeatherYear)
	require.NoError(t, err)

	kept := grids.Grids[model.Czechia].Data.Len()
	assert.Less(t, kept, data.HoursInYear(testCommonYear)/3)
	assert.Greater(t, kept, 0)
	// Day 1 falls into the first sampled week, day 8 does not.
	assert.Equal(t, time.January, grids.Grids[model.Czechia].Data.Index()[0].Month())
}

func TestRunnerExpandsSweepMatrix(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Analysis.PecdYears = []int{1995, 2009}
	r := &Runner{Config: cfg, Options: Options{CoalSubsidies: []float64{0, 50}}}

	runs, err := r.expand()
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Equal(t, "baseline-pecd-1995-subsidy-0", runs[0].name())
	assert.Equal(t, "baseline-pecd-2009-subsidy-50", runs[3].name())

	r.Options.Scenarios = []string{"missing"}
	_, err = r.expand()
	assert.Error(t, err)
}

func TestRunnerRunsAndMemoizes(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, dataDir, 6000)
	cfg := testConfig(t, dataDir)
	r := &Runner{Config: cfg}

	require.NoError(t, r.Run())

	runDir := filepath.Join(cfg.Analysis.OutputDir, "cz-mini", "baseline-pecd-1995")
	solution := filepath.Join(runDir, "CZ.csv")
	_, err := os.Stat(solution)
	require.NoError(t, err)

	summary := filepath.Join(cfg.Analysis.OutputDir, "cz-mini", "cz-mini-complete.csv")
	f, err := os.Open(summary)
	require.NoError(t, err)
	defer f.Close()
	rows, err := data.ReadSummary(f)
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
	for _, row := range rows {
		assert.Equal(t, "baseline-pecd-1995", row.Name)
	}
	_, err = os.Stat(filepath.Join(cfg.Analysis.OutputDir, "cz-mini", "cz-mini-complete-pivot.csv"))
	require.NoError(t, err)

	// A finished run is skipped: the stored solution stays untouched.
	before, err := os.Stat(solution)
	require.NoError(t, err)
	require.NoError(t, r.Run())
	after, err := os.Stat(solution)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestRunnerFailsFastOnMissingData(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	r := &Runner{Config: cfg}
	assert.Error(t, r.Run())
}

func TestRunnerAppliesCoalSubsidy(t *testing.T) {
	dataDir := t.TempDir()
	writeTestData(t, dataDir, 6000)
	cfg := testConfig(t, dataDir)
	subsidy := 40.0
	r := &Runner{Config: cfg, Options: Options{CoalSubsidies: []float64{subsidy}}}

	plan, err := cfg.Scenarios[0].Resolve(cfg.Analysis.Filter.Countries)
	require.NoError(t, err)
	require.NoError(t, r.applyOverrides(plan, run{
		scenario: cfg.Scenarios[0], pecdYear: testWeatherYear, coalSubsidy: &subsidy,
	}))
	found := false
	for _, source := range plan.Countries[model.Czechia].FlexibleSources {
		if source.Type.IsCoal() {
			found = true
			assert.Equal(t, subsidy, source.SubsidyPerMWhEUR)
		}
	}
	assert.True(t, found)
}
