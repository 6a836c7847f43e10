package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

func hourlyIndex(start string, hours int) []time.Time {
	t0, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	index := make([]time.Time, hours)
	for i := range index {
		index[i] = t0.Add(time.Duration(i) * time.Hour)
	}
	return index
}

func freeEconomics(variableCost float64) model.Economics {
	return model.Economics{
		ConstructionTimeYears:  1,
		LifetimeYears:          30,
		DiscountRate:           1.07,
		VariableCostsPerMWhEUR: variableCost,
	}
}

func gasSource(capacityMW, variableCost float64) model.FlexibleSource {
	return model.FlexibleSource{
		Type:          model.GasCCGT,
		CapacityMW:    capacityMW,
		MinCapacityMW: capacityMW,
		RampRate:      1,
		Economics:     freeEconomics(variableCost),
	}
}

func singleCountryGrid(load, solar []float64) *grid.CountryGrid {
	frame := grid.NewFrame(hourlyIndex("2025-01-01T00:00:00Z", len(load)))
	frame.Set(grid.KeyLoad, load)
	frame.Set(grid.KeySolar, solar)
	return &grid.CountryGrid{
		Country: model.Czechia,
		Data:    frame,
		BasicSources: map[model.BasicSourceType]model.Source{
			model.Solar: {
				Type:          model.Solar,
				CapacityMW:    10,
				MinCapacityMW: 10,
				Renewable:     true,
				Economics:     freeEconomics(0),
			},
		},
		FlexibleSources: []model.FlexibleSource{gasSource(100, 10)},
		NumYears:        1,
	}
}

func TestRunDispatchesCheapestSources(t *testing.T) {
	grids := map[model.Region]*grid.CountryGrid{
		model.Czechia: singleCountryGrid(
			[]float64{10, 20, 30}, []float64{5, 5, 5}),
	}
	o := &Optimization{
		Grids:           grids,
		Interconnectors: model.NewInterconnectors(),
	}
	result, err := o.Run()
	require.NoError(t, err)

	// Gas covers whatever solar cannot, at 10 EUR/MWh.
	assert.InDelta(t, 450, result.ObjectiveEUR, 1e-6)

	data := grids[model.Czechia].Data
	gas := data.Column(grid.FlexibleKey(model.GasCCGT))
	require.NotNil(t, gas)
	assert.InDeltaSlice(t, []float64{5, 15, 25}, gas, 1e-6)

	assert.InDeltaSlice(t, []float64{10, 20, 30}, data.Column(grid.KeyTotal), 1e-6)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, data.Column(grid.KeyCurtailment), 1e-6)
	assert.True(t, grids[model.Czechia].Complete)
}

func TestRunStoresAndReloadsSolution(t *testing.T) {
	dir := t.TempDir()
	grids := map[model.Region]*grid.CountryGrid{
		model.Czechia: singleCountryGrid(
			[]float64{10, 20, 30}, []float64{5, 5, 5}),
	}
	o := &Optimization{
		Grids:           grids,
		Interconnectors: model.NewInterconnectors(),
		OutDir:          dir,
	}
	_, err := o.Run()
	require.NoError(t, err)
	require.True(t, HasSolution(dir, []model.Region{model.Czechia}))

	restored := map[model.Region]*grid.CountryGrid{
		model.Czechia: singleCountryGrid(
			[]float64{10, 20, 30}, []float64{5, 5, 5}),
	}
	require.NoError(t, LoadSolution(dir, restored))

	data := restored[model.Czechia].Data
	assert.InDeltaSlice(t,
		grids[model.Czechia].Data.Column(grid.FlexibleKey(model.GasCCGT)),
		data.Column(grid.FlexibleKey(model.GasCCGT)), 1e-9)
	assert.Len(t, restored[model.Czechia].PriceType, 3)
	assert.True(t, restored[model.Czechia].Complete)
}

func TestRunImportsFromCheaperNeighbour(t *testing.T) {
	cheap := singleCountryGrid([]float64{0, 0}, []float64{0, 0})
	cheap.Country = model.Germany
	cheap.FlexibleSources = []model.FlexibleSource{gasSource(100, 5)}

	dear := singleCountryGrid([]float64{15, 15}, []float64{0, 0})
	dear.FlexibleSources = []model.FlexibleSource{gasSource(100, 50)}

	interconnectors := model.NewInterconnectors()
	interconnectors.Set(model.Germany, model.Czechia,
		model.Interconnector{CapacityMW: 10})

	grids := map[model.Region]*grid.CountryGrid{
		model.Germany: cheap,
		model.Czechia: dear,
	}
	o := &Optimization{Grids: grids, Interconnectors: interconnectors}
	result, err := o.Run()
	require.NoError(t, err)

	// Per hour: 10 MW imported at 5 EUR plus the 1 EUR interconnector
	// fee, the remaining 5 MW at 50 EUR locally.
	assert.InDelta(t, 2*(10*5+10*1+5*50), result.ObjectiveEUR, 1e-6)

	imports := dear.Data.Column(grid.ImportKey(model.Germany))
	require.NotNil(t, imports)
	assert.InDeltaSlice(t, []float64{10, 10}, imports, 1e-6)

	exports := cheap.Data.Column(grid.ExportKey(model.Czechia))
	require.NotNil(t, exports)
	assert.InDeltaSlice(t, []float64{10, 10}, exports, 1e-6)

	assert.InDeltaSlice(t, []float64{-10, -10},
		cheap.Data.Column(grid.KeyNetImport), 1e-6)
	assert.InDeltaSlice(t, []float64{10, 10},
		dear.Data.Column(grid.KeyNetImport), 1e-6)
}

func TestRunShiftsSolarThroughStorage(t *testing.T) {
	g := singleCountryGrid([]float64{0, 10}, []float64{10, 0})

	battery := model.NewStorage(model.StorageLiIon, model.UseElectricity)
	battery.CapacityMW = 10
	battery.MinCapacityMW = 10
	battery.CapacityMWCharging = 10
	battery.MinCapacityMWCharging = 10
	battery.MaxEnergyMWh = 10
	battery.Economics = freeEconomics(0)
	g.Storage = []model.Storage{battery}
	// Backup so expensive that only storage makes the problem cheap.
	g.FlexibleSources = []model.FlexibleSource{gasSource(100, 1000)}

	grids := map[model.Region]*grid.CountryGrid{model.Czechia: g}
	o := &Optimization{Grids: grids, Interconnectors: model.NewInterconnectors()}
	result, err := o.Run()
	require.NoError(t, err)

	assert.InDelta(t, 0, result.ObjectiveEUR, 1e-6)
	assert.InDeltaSlice(t, []float64{10, 0},
		g.Data.Column(grid.ChargingKey(model.StorageLiIon)), 1e-6)
	assert.InDeltaSlice(t, []float64{0, 10},
		g.Data.Column(grid.DischargingKey(model.StorageLiIon)), 1e-6)
	assert.InDeltaSlice(t, []float64{0, 10}, g.Data.Column(grid.KeyTotal), 1e-6)
}

func TestRunOptimizesCoalPhaseOut(t *testing.T) {
	// A coal fleet with yearly fixed costs and nothing to serve should be
	// retired entirely under capacity optimization.
	g := singleCountryGrid([]float64{5, 5}, []float64{10, 10})
	coal := gasSource(100, 30)
	coal.Type = model.CoalHard
	coal.MinCapacityMW = 0
	coal.Economics.FixedOMCostsPerKWEUR = 50
	g.FlexibleSources = []model.FlexibleSource{coal}

	grids := map[model.Region]*grid.CountryGrid{model.Czechia: g}
	o := &Optimization{
		Grids:           grids,
		Interconnectors: model.NewInterconnectors(),
		OptimizeCapex:   true,
	}
	_, err := o.Run()
	require.NoError(t, err)

	// The installed factor collapses to zero and with it the capacity.
	assert.InDelta(t, 0, g.FlexibleSources[0].CapacityMW, 1e-6)
}

func TestBuildFailsOnEmptyGrid(t *testing.T) {
	g := singleCountryGrid(nil, nil)
	grids := map[model.Region]*grid.CountryGrid{model.Czechia: g}
	o := &Optimization{Grids: grids, Interconnectors: model.NewInterconnectors()}
	_, err := o.Run()
	assert.Error(t, err)
}
