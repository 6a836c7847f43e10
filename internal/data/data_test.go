package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

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

func TestHoursInYear(t *testing.T) {
	assert.Equal(t, 8760, HoursInYear(2025))
	assert.Equal(t, 8784, HoursInYear(2024))
}

func TestHourPositionDropsLeapDay(t *testing.T) {
	assert.Equal(t, 0, hourPosition(2025, 1, 1, 1))
	assert.Equal(t, 24, hourPosition(2025, 1, 2, 1))
	// Feb 29 does not exist in 2025.
	assert.Equal(t, -1, hourPosition(2025, 2, 29, 1))
	assert.Equal(t, (31+28)*24, hourPosition(2024, 2, 29, 1))
}

func TestPecdWeeksStartAtOne(t *testing.T) {
	// 2025 begins on a Wednesday, so the partial first week is week 1 and
	// Monday Jan 6 opens week 2.
	weeks := pecdWeeks(2025)
	assert.Equal(t, int32(1), weeks[0])
	assert.Equal(t, int32(1), weeks[5*24-1])
	assert.Equal(t, int32(2), weeks[5*24])
	assert.Equal(t, int32(53), weeks[len(weeks)-1])
}

func TestDemandTransformRoundTrip(t *testing.T) {
	dir := t.TempDir()
	csv := strings.Join([]string{
		"country,month,day,hour,1995,1996",
		"CZ,1,1,1,7000,7100",
		"CZ,1,1,2,6800,6900",
	}, "\n")

	path := filepath.Join(dir, "pecd",
		"PECD-country-demand_national_estimates-2025.parquet")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, TransformDemandEstimates(strings.NewReader(csv), out))
	require.NoError(t, out.Close())

	loader := NewPecdLoader(dir)
	demand, err := loader.Demand(model.Czechia, 1995, 2025)
	require.NoError(t, err)
	require.Len(t, demand, 8760)
	assert.Equal(t, 7000.0, demand[0])
	assert.Equal(t, 6800.0, demand[1])
	assert.Zero(t, demand[2])

	demand, err = loader.Demand(model.Czechia, 1996, 2025)
	require.NoError(t, err)
	assert.Equal(t, 7100.0, demand[0])
}

func TestDemandRejectsUnknownWeatherYear(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "pecd",
		"PECD-country-demand_national_estimates-2025.parquet"),
		[]demandRow{{Country: "CZ", Year: 1995, Month: 1, Day: 1, Hour: 1, DemMW: 7000}})

	loader := NewPecdLoader(dir)
	_, err := loader.Demand(model.Czechia, 2003, 2025)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PECD year 2003 unavailable")
}

func TestDemandMissingCountryIsNil(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "pecd",
		"PECD-country-demand_national_estimates-2025.parquet"),
		[]demandRow{{Country: "CZ", Year: 1995, Month: 1, Day: 1, Hour: 1, DemMW: 7000}})

	loader := NewPecdLoader(dir)
	demand, err := loader.Demand(model.Poland, 1995, 2025)
	require.NoError(t, err)
	assert.Nil(t, demand)
}

func TestCapacityFactorsSelectWeatherYear(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "pecd", "PECD-ERAA2023-LFSolarPV-2025.parquet"),
		[]capacityFactorRow{
			{Country: "CZ", Year: 1995, Month: 1, Day: 1, Hour: 1, CF: 0.1},
			{Country: "CZ", Year: 1996, Month: 1, Day: 1, Hour: 1, CF: 0.4},
			{Country: "UK", Year: 1995, Month: 1, Day: 1, Hour: 1, CF: 0.2},
		})

	loader := NewPecdLoader(dir)
	cf, err := loader.CapacityFactors(model.Solar, model.Czechia, 1995, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0.1, cf[0])

	// Great Britain maps onto the "UK" code in PECD files.
	cf, err = loader.CapacityFactors(model.Solar, model.GreatBritain, 1995, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0.2, cf[0])

	_, err = loader.CapacityFactors(model.Nuclear, model.Czechia, 1995, 2025)
	assert.Error(t, err)
}

func TestHydroInflowsSpreadWeeklyEnergy(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, filepath.Join(dir, "pecd",
		"PECD-ERAA2023-reservoir+pumped-inflows-2025.parquet"),
		[]inflowRow{
			{Country: "CZ", Year: 1995, Week: 1, Technology: "reservoir", InflowGWh: 16.8},
			{Country: "CZ", Year: 1995, Week: 1, Technology: "pumped_closed", InflowGWh: 99},
		})
	writeParquet(t, filepath.Join(dir, "pecd",
		"PECD-ERAA2023-RoR+pondage-inflows-2025.parquet"),
		[]inflowRow{
			{Country: "CZ", Year: 1995, Week: 1, Technology: "ror", InflowGWh: 1.68},
		})

	loader := NewPecdLoader(dir)
	inflows, err := loader.HydroInflows(model.Czechia, 1995, 2025)
	require.NoError(t, err)

	// 16.8 GWh over a week averages to 100 MW.
	reservoir := inflows[grid.KeyHydroInflowReservoir]
	require.NotNil(t, reservoir)
	assert.InDelta(t, 100, reservoir[0], 1e-9)
	assert.Zero(t, reservoir[len(reservoir)-1])

	ror := inflows[grid.KeyHydroInflowRoR]
	require.NotNil(t, ror)
	assert.InDelta(t, 10, ror[0], 1e-9)

	// Closed pumped hydro has no inflows.
	assert.NotContains(t, inflows, "pumped_closed")
}

func TestLoadSummaryCapacities(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	csv := strings.Join([]string{
		"name,region,season,source,stat,val",
		"phase-out-2033,CZ,Y,coal,capacity_GW,4.5",
		"phase-out-2033,CZ,Y,ccgt,capacity_GW,1.2",
		"phase-out-2033,CZ,S,coal,capacity_GW,4.5",
		"phase-out-2033,CZ,Y,coal,production_TWh,20",
		"phase-out-2033,DE,Y,coal,capacity_GW,30",
		"baseline,CZ,Y,coal,capacity_GW,9",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	capacities, err := LoadSummaryCapacities(path, "phase-out-2033", model.Czechia)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"coal": 4.5, "ccgt": 1.2}, capacities)

	_, err = LoadSummaryCapacities(path, "missing", model.Czechia)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "missing" not present`)
}

func TestAppendSummaryAndPivot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "analysis-complete.csv")

	first := []grid.StatRow{
		{Name: "a", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "coal", Stat: grid.StatCapacityGW, Val: 3.5},
		{Name: "a", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "solar", Stat: grid.StatCapacityGW, Val: 7},
	}
	require.NoError(t, AppendSummary(path, first))

	second := []grid.StatRow{
		{Name: "b", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "coal", Stat: grid.StatCapacityGW, Val: 0},
	}
	require.NoError(t, AppendSummary(path, second))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := ReadSummary(f)
	require.NoError(t, err)
	// Appending keeps the earlier scenario's rows.
	require.Len(t, rows, 3)
	assert.Equal(t, "a", rows[0].Name)
	assert.Equal(t, "b", rows[2].Name)

	pivot, err := os.ReadFile(filepath.Join(dir, "analysis-complete-pivot.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(pivot)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,region,season,stat,coal,solar", lines[0])
	assert.Equal(t, "a,CZ,Y,capacity_GW,3.5,7", lines[1])
	assert.Equal(t, "b,CZ,Y,capacity_GW,0,", lines[2])
}

func TestLoadSummaryCapacitiesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	rows := []grid.StatRow{
		{Name: "optimized", Region: model.Czechia, Season: grid.SeasonYear,
			Source: "lignite", Stat: grid.StatCapacityGW, Val: 1.2},
	}
	require.NoError(t, AppendSummary(path, rows))

	capacities, err := LoadSummaryCapacities(path, "optimized", model.Czechia)
	require.NoError(t, err)
	assert.Equal(t, 1.2, capacities["lignite"])
}
