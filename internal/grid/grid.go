package grid

import (
	"fmt"
	"sort"

	"grid-dispatch/internal/model"
)

// CountryGrid bundles the hourly data of one region with the sources that
// produced it. NumYears is the number of weather years chained in the frame.
type CountryGrid struct {
	Country         model.Region
	Data            *Frame
	PriceType       []string
	BasicSources    map[model.BasicSourceType]model.Source
	FlexibleSources []model.FlexibleSource
	Storage         []model.Storage
	NumYears        int
	// Complete marks the sum of all grids in the model.
	Complete bool
}

// Add merges two country grids into an aggregate. Hourly columns are summed
// (all are absolute MW values) except prices, which are averaged weighted by
// load, export and import volumes respectively.
func (g *CountryGrid) Add(other *CountryGrid) (*CountryGrid, error) {
	if g.Complete || other.Complete {
		return nil, fmt.Errorf("cannot add the complete grid to another grid")
	}
	if g.NumYears != other.NumYears {
		return nil, fmt.Errorf("grids span %d and %d years", g.NumYears, other.NumYears)
	}

	data, err := g.Data.AddWithFill(other.Data)
	if err != nil {
		return nil, err
	}

	if g.Data.Has(KeyPrice) && other.Data.Has(KeyPrice) {
		weightedAverage(data.Ensure(KeyPrice),
			g.Data.Column(KeyPrice), g.Data.Column(KeyLoad),
			other.Data.Column(KeyPrice), other.Data.Column(KeyLoad), 0)
	}
	if g.Data.Has(KeyPriceImport) && other.Data.Has(KeyPriceImport) {
		// For aggregates the absolute flows may cancel out, in which case
		// the price is set to zero.
		weightedAverage(data.Ensure(KeyPriceExport),
			g.Data.Column(KeyPriceExport), g.Data.Column(KeyExport),
			other.Data.Column(KeyPriceExport), other.Data.Column(KeyExport), 0)
		weightedAverage(data.Ensure(KeyPriceImport),
			g.Data.Column(KeyPriceImport), g.Data.Column(KeyImport),
			other.Data.Column(KeyPriceImport), other.Data.Column(KeyImport), 0)
	}

	basic := map[model.BasicSourceType]model.Source{}
	for t, s := range g.BasicSources {
		basic[t] = s
	}
	for t, s := range other.BasicSources {
		if existing, ok := basic[t]; ok {
			merged, err := existing.Add(s)
			if err != nil {
				return nil, err
			}
			basic[t] = merged
		} else {
			basic[t] = s
		}
	}

	flexible, err := mergeFlexible(g.FlexibleSources, other.FlexibleSources)
	if err != nil {
		return nil, err
	}
	storage, err := mergeStorage(g.Storage, other.Storage)
	if err != nil {
		return nil, err
	}

	return &CountryGrid{
		Country:         model.JoinRegions(g.Country, other.Country),
		Data:            data,
		BasicSources:    basic,
		FlexibleSources: flexible,
		Storage:         storage,
		NumYears:        g.NumYears,
	}, nil
}

func weightedAverage(dst, a, aw, b, bw []float64, fallback float64) {
	for i := range dst {
		totalWeight := aw[i] + bw[i]
		if totalWeight == 0 {
			dst[i] = fallback
			continue
		}
		dst[i] = (a[i]*aw[i] + b[i]*bw[i]) / totalWeight
	}
}

func mergeFlexible(a, b []model.FlexibleSource) ([]model.FlexibleSource, error) {
	byType := map[model.FlexibleSourceType]model.FlexibleSource{}
	order := []model.FlexibleSourceType{}
	for _, s := range append(append([]model.FlexibleSource{}, a...), b...) {
		if existing, ok := byType[s.Type]; ok {
			merged, err := existing.Add(s)
			if err != nil {
				return nil, err
			}
			byType[s.Type] = merged
			continue
		}
		byType[s.Type] = s
		order = append(order, s.Type)
	}
	out := make([]model.FlexibleSource, len(order))
	for i, t := range order {
		out[i] = byType[t]
	}
	return out, nil
}

func mergeStorage(a, b []model.Storage) ([]model.Storage, error) {
	byType := map[model.StorageType]model.Storage{}
	order := []model.StorageType{}
	for _, s := range append(append([]model.Storage{}, a...), b...) {
		if existing, ok := byType[s.Type]; ok {
			merged, err := existing.Add(s)
			if err != nil {
				return nil, err
			}
			byType[s.Type] = merged
			continue
		}
		byType[s.Type] = s
		order = append(order, s.Type)
	}
	out := make([]model.Storage, len(order))
	for i, t := range order {
		out[i] = byType[t]
	}
	return out, nil
}

// AggregateGrids prepends the sum of all grids to the map. With onlyAggregate
// the individual grids are dropped and just the total remains.
func AggregateGrids(grids map[model.Region]*CountryGrid,
	onlyAggregate bool) (map[model.Region]*CountryGrid, error) {
	if len(grids) <= 1 {
		return grids, nil
	}

	regions := make([]model.Region, 0, len(grids))
	for region := range grids {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	var total *CountryGrid
	for _, region := range regions {
		if total == nil {
			clone := *grids[region]
			total = &clone
			continue
		}
		sum, err := total.Add(grids[region])
		if err != nil {
			return nil, fmt.Errorf("aggregating %s: %w", region, err)
		}
		total = sum
	}
	total.Complete = true

	out := map[model.Region]*CountryGrid{total.Country: total}
	if onlyAggregate {
		return out, nil
	}
	for region, grid := range grids {
		out[region] = grid
	}
	return out, nil
}

// FilterGrids keeps only the selected regions.
func FilterGrids(grids map[model.Region]*CountryGrid,
	keep func(model.Region) bool) map[model.Region]*CountryGrid {
	out := map[model.Region]*CountryGrid{}
	for region, grid := range grids {
		if keep(region) {
			out[region] = grid
		}
	}
	return out
}
