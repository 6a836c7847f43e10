package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatedZones(t *testing.T) {
	zones, err := AggregatedZones(Iberia)
	require.NoError(t, err)
	assert.ElementsMatch(t, []Region{Spain, Portugal}, zones)

	_, err = AggregatedZones(Czechia)
	assert.Error(t, err)
}

func TestAggregateFor(t *testing.T) {
	// Central Europe stays atomic on the coarse level.
	assert.Equal(t, Czechia, AggregateFor(AggregationCoarse, Czechia))
	assert.Equal(t, Germany, AggregateFor(AggregationCoarse, Germany))

	// The periphery collapses.
	assert.Equal(t, Iberia, AggregateFor(AggregationCoarse, Spain))
	assert.Equal(t, Nordics, AggregateFor(AggregationCoarse, Sweden))
	assert.Equal(t, West, AggregateFor(AggregationCoarse, France))

	// No aggregation keeps everything atomic.
	assert.Equal(t, Spain, AggregateFor(AggregationNone, Spain))
}

func TestInterconnectorsAggregate(t *testing.T) {
	ic := NewInterconnectors()
	ic.Set(Czechia, Germany, Interconnector{CapacityMW: 2100, Loss: 0.02})
	ic.Set(Germany, Czechia, Interconnector{CapacityMW: 1500, Loss: 0.02})
	ic.Set(Spain, Portugal, Interconnector{CapacityMW: 3000, Loss: 0.02})
	ic.Set(Spain, France, Interconnector{CapacityMW: 2800, Loss: 0.02})
	ic.Set(Portugal, France, Interconnector{CapacityMW: 500, Loss: 0.03})

	agg := ic.Aggregate(AggregationCoarse)

	// Intra-aggregate link disappears.
	_, ok := agg.FromTo[Iberia][Iberia]
	assert.False(t, ok)

	// Parallel links onto the same aggregate pair sum up, worst loss wins.
	link := agg.FromTo[Iberia][West]
	assert.Equal(t, 3300.0, link.CapacityMW)
	assert.Equal(t, 0.03, link.Loss)

	// Unaggregated links survive unchanged.
	assert.Equal(t, 2100.0, agg.FromTo[Czechia][Germany].CapacityMW)
}

func TestInterconnectorsPrune(t *testing.T) {
	ic := NewInterconnectors()
	ic.Set(Czechia, Germany, Interconnector{CapacityMW: 2100})
	ic.Set(Czechia, Austria, Interconnector{CapacityMW: 800})

	pruned := ic.Prune(map[Region]bool{Czechia: true, Germany: true})
	assert.Len(t, pruned.ConnectionsFrom(Czechia), 1)
	assert.Equal(t, 2100.0, pruned.FromTo[Czechia][Germany].CapacityMW)
}

func TestConnectionsTo(t *testing.T) {
	ic := NewInterconnectors()
	ic.Set(Czechia, Germany, Interconnector{CapacityMW: 2100})
	ic.Set(Poland, Germany, Interconnector{CapacityMW: 2500})

	in := ic.ConnectionsTo(Germany)
	assert.Len(t, in, 2)
	assert.Equal(t, 2500.0, in[Poland].CapacityMW)
}
