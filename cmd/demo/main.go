package main

import (
	"flag"
	"fmt"
	"math"
	"time"

	"grid-dispatch/internal/config"
	"grid-dispatch/internal/dispatch"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// Demo:
// - Build a two-country model with synthetic demand and solar curves
// - Solve the joint hourly dispatch
// - Print the first day of the solution to show how the pieces fit together
func main() {
	hours := flag.Int("hours", 48, "Number of hours to model")
	outCSV := flag.String("out", "", "Optional directory to write per-country solution CSVs")
	flag.Parse()

	costs, err := config.InputCostsByName(config.DefaultInputCosts)
	if err != nil {
		panic(err)
	}

	index := hourlyIndex(*hours)
	grids := map[model.Region]*grid.CountryGrid{
		model.Czechia: czechGrid(index, costs),
		model.Germany: germanGrid(index, costs),
	}

	interconnectors := model.NewInterconnectors()
	interconnectors.Set(model.Czechia, model.Germany,
		model.Interconnector{CapacityMW: 2000, Loss: 0.02})
	interconnectors.Set(model.Germany, model.Czechia,
		model.Interconnector{CapacityMW: 1500, Loss: 0.02})

	optimization := &dispatch.Optimization{
		Grids:           grids,
		Interconnectors: interconnectors,
		OutDir:          *outCSV,
	}
	result, err := optimization.Run()
	if err != nil {
		panic(err)
	}

	fmt.Printf("Solved %d hours with %s: objective %.0f EUR\n\n",
		*hours, result.SolverName, result.ObjectiveEUR)

	cz := result.Grids[model.Czechia]
	fmt.Printf("%-17s %8s %8s %8s %8s %8s %8s\n",
		"hour", "load", "solar", "nuclear", "lignite", "net_imp", "price")
	for i := 0; i < min(24, cz.Data.Len()); i++ {
		fmt.Printf("%-17s %8.0f %8.0f %8.0f %8.0f %8.0f %8.2f\n",
			cz.Data.Index()[i].Format("2006-01-02 15:04"),
			column(cz, grid.KeyLoad)[i],
			column(cz, grid.KeySolar)[i],
			column(cz, grid.KeyNuclear)[i],
			column(cz, grid.FlexibleKey(model.Lignite))[i],
			column(cz, grid.KeyNetImport)[i],
			column(cz, grid.KeyPrice)[i],
		)
	}

	fmt.Println()
	for _, row := range grid.ComputeStats("demo", cz) {
		if row.Season != grid.SeasonYear || row.Stat != grid.StatProductionTWh {
			continue
		}
		fmt.Printf("%s production: %.3f TWh\n", row.Source, row.Val)
	}

	if *outCSV != "" {
		fmt.Printf("\nWrote solution CSVs to %s\n", *outCSV)
	}
}

func hourlyIndex(hours int) []time.Time {
	index := make([]time.Time, hours)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range index {
		index[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return index
}

// czechGrid carries nuclear baseload, a solar curve, dispatchable lignite
// and a pumped hydro storage.
func czechGrid(index []time.Time, costs config.InputCosts) *grid.CountryGrid {
	frame := grid.NewFrame(index)
	load := frame.Ensure(grid.KeyLoad)
	solar := frame.Ensure(grid.KeySolar)
	nuclear := frame.Ensure(grid.KeyNuclear)
	for i, ts := range index {
		load[i] = 7000 + 1500*dayShape(ts)
		solar[i] = 3000 * solarShape(ts)
		nuclear[i] = 4000
	}

	lignite, err := config.NewFlexibleSource(model.Lignite, costs, 3500, 0)
	if err != nil {
		panic(err)
	}
	return &grid.CountryGrid{
		Country: model.Czechia,
		Data:    frame,
		BasicSources: map[model.BasicSourceType]model.Source{
			model.Solar:   config.NewBasicSource(model.Solar, 3000, 0),
			model.Nuclear: config.NewBasicSource(model.Nuclear, 4000, 4000),
		},
		FlexibleSources: []model.FlexibleSource{lignite},
		Storage: []model.Storage{
			config.NewStorage(model.StoragePumped, 1100, 1050, 5500),
		},
		NumYears: 1,
	}
}

// germanGrid pairs a large wind fleet with gas so that exports to the
// Czech grid become worthwhile in windy hours.
func germanGrid(index []time.Time, costs config.InputCosts) *grid.CountryGrid {
	frame := grid.NewFrame(index)
	load := frame.Ensure(grid.KeyLoad)
	wind := frame.Ensure(grid.KeyWindOnshore)
	for i, ts := range index {
		load[i] = 55000 + 10000*dayShape(ts)
		wind[i] = 30000 * windShape(ts)
	}

	ccgt, err := config.NewFlexibleSource(model.GasCCGT, costs, 30000, 0)
	if err != nil {
		panic(err)
	}
	return &grid.CountryGrid{
		Country: model.Germany,
		Data:    frame,
		BasicSources: map[model.BasicSourceType]model.Source{
			model.Onshore: config.NewBasicSource(model.Onshore, 30000, 0),
		},
		FlexibleSources: []model.FlexibleSource{ccgt},
		NumYears:        1,
	}
}

// dayShape peaks in the evening and bottoms out at night.
func dayShape(ts time.Time) float64 {
	return math.Sin(2 * math.Pi * float64(ts.Hour()-6) / 24)
}

// solarShape is a daylight half-sine between 6:00 and 18:00.
func solarShape(ts time.Time) float64 {
	h := float64(ts.Hour())
	if h < 6 || h > 18 {
		return 0
	}
	return math.Sin(math.Pi * (h - 6) / 12)
}

// windShape drifts slowly over a two-day period.
func windShape(ts time.Time) float64 {
	return 0.5 + 0.4*math.Sin(2*math.Pi*float64(ts.Hour()+24*ts.Day())/48)
}

func column(g *grid.CountryGrid, name string) []float64 {
	if col := g.Data.Column(name); col != nil {
		return col
	}
	return make([]float64, g.Data.Len())
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
