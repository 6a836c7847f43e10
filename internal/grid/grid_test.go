package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/model"
)

func testEconomics(variableCost float64) model.Economics {
	return model.Economics{
		ConstructionTimeYears:  1,
		LifetimeYears:          30,
		VariableCostsPerMWhEUR: variableCost,
		DiscountRate:           1.07,
	}
}

func testGrid(region model.Region, load, price []float64) *CountryGrid {
	index := hourlyIndex(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), len(load))
	f := NewFrame(index)
	copy(f.Ensure(KeyLoad), load)
	copy(f.Ensure(KeyPrice), price)
	return &CountryGrid{
		Country: region,
		Data:    f,
		BasicSources: map[model.BasicSourceType]model.Source{
			model.Nuclear: {Type: model.Nuclear, CapacityMW: 1000,
				Economics: testEconomics(10)},
		},
		NumYears: 1,
	}
}

func TestGridAddAveragesPriceByLoad(t *testing.T) {
	a := testGrid(model.Czechia, []float64{1000, 1000}, []float64{100, 100})
	b := testGrid(model.Germany, []float64{3000, 1000}, []float64{20, 50})

	sum, err := a.Add(b)
	require.NoError(t, err)

	assert.Equal(t, []float64{4000, 2000}, sum.Data.Column(KeyLoad))
	// Weighted 1:3 and 1:1 respectively.
	assert.InDelta(t, 40, sum.Data.Column(KeyPrice)[0], 1e-9)
	assert.InDelta(t, 75, sum.Data.Column(KeyPrice)[1], 1e-9)

	assert.InDelta(t, 2000, sum.BasicSources[model.Nuclear].CapacityMW, 1e-9)
	assert.Equal(t, model.JoinRegions(model.Czechia, model.Germany), sum.Country)
}

func TestGridAddRejectsCompleteGrid(t *testing.T) {
	a := testGrid(model.Czechia, []float64{1}, []float64{1})
	b := testGrid(model.Germany, []float64{1}, []float64{1})
	b.Complete = true

	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestAggregateGrids(t *testing.T) {
	grids := map[model.Region]*CountryGrid{
		model.Czechia: testGrid(model.Czechia, []float64{1000}, []float64{50}),
		model.Germany: testGrid(model.Germany, []float64{2000}, []float64{80}),
	}

	out, err := AggregateGrids(grids, false)
	require.NoError(t, err)
	require.Len(t, out, 3)

	total := out[model.JoinRegions(model.Czechia, model.Germany)]
	require.NotNil(t, total)
	assert.True(t, total.Complete)
	assert.Equal(t, []float64{3000}, total.Data.Column(KeyLoad))

	onlyTotal, err := AggregateGrids(grids, true)
	require.NoError(t, err)
	assert.Len(t, onlyTotal, 1)
}

func TestFilterGrids(t *testing.T) {
	grids := map[model.Region]*CountryGrid{
		model.Czechia: testGrid(model.Czechia, []float64{1}, []float64{1}),
		model.Germany: testGrid(model.Germany, []float64{1}, []float64{1}),
	}
	out := FilterGrids(grids, func(r model.Region) bool { return r == model.Czechia })
	require.Len(t, out, 1)
	assert.Contains(t, out, model.Czechia)
}
