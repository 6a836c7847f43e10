package grid

import (
	"fmt"
	"sort"

	"grid-dispatch/internal/model"
)

// ExportFlow walks the realized interconnector flows of one hour so that
// exporting regions are visited, and priced, before the regions importing
// from them.
type ExportFlow struct {
	interconnectors model.Interconnectors
	grids           map[model.Region]*CountryGrid
	// Gross up import prices by the transmission loss of the link. This
	// does not match the optimized flows but anticipates a market that
	// values transit.
	IncludeTransmissionLoss bool
}

func NewExportFlow(interconnectors model.Interconnectors,
	grids map[model.Region]*CountryGrid) *ExportFlow {
	return &ExportFlow{interconnectors: interconnectors, grids: grids}
}

func (f *ExportFlow) value(country model.Region, key string, row int) float64 {
	col := f.grids[country].Data.Column(key)
	if col == nil {
		return 0
	}
	return col[row]
}

func (f *ExportFlow) regions() []model.Region {
	out := make([]model.Region, 0, len(f.grids))
	for region := range f.grids {
		out = append(out, region)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// realImporters returns the neighbours importing from the country this hour.
func (f *ExportFlow) realImporters(country model.Region, row int) map[model.Region]bool {
	importers := map[model.Region]bool{}
	for to, link := range f.interconnectors.ConnectionsFrom(country) {
		if link.CapacityMW > 0 && f.value(country, ExportKey(to), row) > 0 {
			importers[to] = true
		}
	}
	return importers
}

// realExporters returns the neighbours exporting to the country this hour.
func (f *ExportFlow) realExporters(country model.Region, row int) map[model.Region]bool {
	exporters := map[model.Region]bool{}
	for from, link := range f.interconnectors.ConnectionsTo(country) {
		if link.CapacityMW > 0 && f.value(country, ImportKey(from), row) > 0 {
			exporters[from] = true
		}
	}
	return exporters
}

// Order returns the regions sorted so that each country comes after all of
// its exporters this hour. Errors on a cycle of flows, which the
// optimization should never produce.
func (f *ExportFlow) Order(row int) ([]model.Region, error) {
	processed := map[model.Region]bool{}
	inCandidates := map[model.Region]bool{}
	order := []model.Region{}
	candidates := []model.Region{}

	// Seed with the countries that import nothing this hour.
	for _, country := range f.regions() {
		if f.value(country, KeyImport, row) < SmallThreshold {
			candidates = append(candidates, country)
			inCandidates[country] = true
		}
	}

	for len(candidates) > 0 {
		ready := []model.Region{}
		for _, country := range candidates {
			allProcessed := true
			for exporter := range f.realExporters(country, row) {
				if !processed[exporter] {
					allProcessed = false
					break
				}
			}
			if allProcessed {
				ready = append(ready, country)
			}
		}
		if len(ready) == 0 {
			return nil, fmt.Errorf("cyclic export flows at row %d", row)
		}

		for _, country := range ready {
			processed[country] = true
			order = append(order, country)
			for i, c := range candidates {
				if c == country {
					candidates = append(candidates[:i], candidates[i+1:]...)
					break
				}
			}
			for to, link := range f.interconnectors.ConnectionsFrom(country) {
				if link.CapacityMW == 0 || processed[to] || inCandidates[to] {
					continue
				}
				if _, ok := f.grids[to]; !ok {
					continue
				}
				candidates = append(candidates, to)
				inCandidates[to] = true
			}
		}
	}
	return order, nil
}

// ExportPrice of a country is the maximum import price among its importing
// neighbours this hour.
func (f *ExportFlow) ExportPrice(country model.Region, row int) float64 {
	price := 0.0
	for importer := range f.realImporters(country, row) {
		if p := f.value(importer, KeyPriceImport, row); p > price {
			price = p
		}
	}
	return price
}

// ImportPrice of a country is the maximum spot price among its exporting
// neighbours, plus the interconnector capacity fee already included in the
// optimization.
func (f *ExportFlow) ImportPrice(country model.Region, row int) float64 {
	price := 0.0
	for exporter := range f.realExporters(country, row) {
		p := f.value(exporter, KeyPrice, row)
		if f.IncludeTransmissionLoss {
			loss := f.interconnectors.ConnectionsFrom(exporter)[country].Loss
			p /= 1 - loss
		}
		if p > price {
			price = p
		}
	}
	return price + model.OutflowCapacityCostEURPerMWh
}
