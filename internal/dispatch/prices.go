package dispatch

import (
	"fmt"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// EstimateSpotPrices annotates every grid with hourly spot price estimates.
// Countries are visited in export-flow order so that an importer sees the
// prices of the regions it imports from. A final pass lifts prices in hours
// where charging storage outbids local generation.
func EstimateSpotPrices(grids map[model.Region]*grid.CountryGrid,
	interconnectors model.Interconnectors, transmissionLossInPrice bool) error {
	steps := 0
	estimators := map[model.Region]*grid.SpotPriceEstimator{}
	for region, g := range grids {
		estimators[region] = grid.NewSpotPriceEstimator(g)
		steps = g.Data.Len()
	}

	flow := grid.NewExportFlow(interconnectors, grids)
	flow.IncludeTransmissionLoss = transmissionLossInPrice

	priceTypes := map[model.Region][]string{}
	for region := range grids {
		priceTypes[region] = make([]string, steps)
	}

	for t := 0; t < steps; t++ {
		order, err := flow.Order(t)
		if err != nil {
			return fmt.Errorf("estimating prices in hour %d: %w", t, err)
		}
		for _, region := range order {
			g := grids[region]
			importPrice := flow.ImportPrice(region, t)
			price, priceType := estimators[region].EstimatePrice(t, importPrice)
			g.Data.Ensure(grid.KeyPrice)[t] = price
			g.Data.Ensure(grid.KeyPriceImport)[t] = importPrice
			priceTypes[region][t] = priceType
		}
		// Export prices need the spot prices of all importers, so this
		// pass runs after the whole order is priced.
		for region, g := range grids {
			g.Data.Ensure(grid.KeyPriceExport)[t] = flow.ExportPrice(region, t)
		}
	}

	for region, g := range grids {
		estimator := estimators[region]
		margins := estimator.StorageAverageMargins()
		prices := g.Data.Ensure(grid.KeyPrice)
		for t := 0; t < steps; t++ {
			price, priceType := estimator.EstimatePriceWithCharging(
				t, prices[t], priceTypes[region][t], margins)
			prices[t] = price
			priceTypes[region][t] = priceType
		}
		g.PriceType = priceTypes[region]
	}
	return nil
}
