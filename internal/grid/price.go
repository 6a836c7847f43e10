package grid

import (
	"grid-dispatch/internal/model"
)

// Heuristic ask prices for hydro, based on the Norwegian market where hydro
// dominates and is often exported. Run-of-river has no regulation capability
// and never sets the price.
const (
	flexibleHydroAskPriceEUR   = 20.0
	inflexibleHydroAskPriceEUR = 0.0
	// Floor on what demand-side storage pays for excess renewables.
	minimumStoragePriceEUR = 5.0
	// Ceiling on what storage is willing to pay for excess electricity.
	storageChargingMaxPriceEUR = 5.0
)

// SpotPriceEstimator derives an hourly marginal price estimate from a solved
// country grid: the most expensive source that is actually producing sets
// the price, unless curtailment or excess forces it down.
type SpotPriceEstimator struct {
	grid *CountryGrid
}

func NewSpotPriceEstimator(g *CountryGrid) *SpotPriceEstimator {
	return &SpotPriceEstimator{grid: g}
}

func (e *SpotPriceEstimator) hasCurtailment(row int) bool {
	col := e.grid.Data.Column(KeyCurtailment)
	return col != nil && col[row] > SmallThreshold
}

// hasExcess approximates a zero-price hour: nuclear plus hydro cover the
// whole residual load.
func (e *SpotPriceEstimator) hasExcess(row int) bool {
	nuclear := e.columnValue(KeyNuclear, row)
	hydro := e.columnValue(KeyHydro, row)
	residual := e.columnValue(KeyResidual, row)
	return nuclear+hydro-residual > SmallThreshold
}

func (e *SpotPriceEstimator) columnValue(key string, row int) float64 {
	col := e.grid.Data.Column(key)
	if col == nil {
		return 0
	}
	return col[row]
}

// maybeUpdate replaces the current price when the candidate source is
// producing in this hour and asks more.
func (e *SpotPriceEstimator) maybeUpdate(row int, price float64, key string,
	candidatePrice float64, candidateKey string) (float64, string) {
	if e.columnValue(candidateKey, row) > SmallThreshold && candidatePrice > price {
		return candidatePrice, candidateKey
	}
	return price, key
}

// EstimatePrice returns the price estimate of one hour and the column key of
// the price-setting source.
func (e *SpotPriceEstimator) EstimatePrice(row int, importPrice float64) (float64, string) {
	// Non-negligible curtailment means the price collapses to zero.
	if e.hasCurtailment(row) {
		return 0, KeyCurtailment
	}
	// Under excess the demand side dictates the price.
	if e.hasExcess(row) {
		return minimumStoragePriceEUR, "Charging_min"
	}

	price, key := 0.0, KeyCurtailment
	price, key = e.maybeUpdate(row, price, key, importPrice, KeyNetImport)

	minFlexiblePrice := 0.0
	for i, source := range e.grid.FlexibleSources {
		cost := source.Economics.VariableCostsPerMWhEUR
		if i == 0 || cost < minFlexiblePrice {
			minFlexiblePrice = cost
		}
	}

	for t, source := range e.grid.BasicSources {
		price, key = e.maybeUpdate(row, price, key,
			source.Economics.VariableCostsPerMWhEUR, BasicKey(t))
	}
	for _, source := range e.grid.FlexibleSources {
		price, key = e.maybeUpdate(row, price, key,
			source.Economics.VariableCostsPerMWhEUR, FlexibleKey(source.Type))
	}

	for _, storage := range e.grid.Storage {
		if storage.Use != model.UseElectricity {
			continue
		}
		var ask float64
		switch storage.Type {
		case model.StorageRunOfRiver:
			ask = inflexibleHydroAskPriceEUR
		case model.StoragePumpedOpen, model.StorageReservoir:
			ask = flexibleHydroAskPriceEUR
		default:
			// Storage discharging asks at the cheapest flexible cost and
			// earns its margin from the higher closing price.
			ask = minFlexiblePrice
		}
		// Storage that buys its energy instead of charging (e.g. imported
		// hydrogen) asks at least its purchase cost.
		if storage.CapacityMWCharging == 0 && storage.CostSellBuyPerMWhEUR > 0 {
			buyCost := storage.CostSellBuyPerMWhEUR / storage.DischargingEfficiency
			if buyCost > ask {
				ask = buyCost
			}
		}
		price, key = e.maybeUpdate(row, price, key, ask, DischargingKey(storage.Type))
	}
	return price, key
}

// EstimatePriceWithCharging lifts the estimate when charging storage is
// willing to pay more than the current price; the bid is the average
// realized margin of that storage technology capped at a fixed ceiling.
func (e *SpotPriceEstimator) EstimatePriceWithCharging(row int, price float64,
	key string, margins map[model.StorageType]float64) (float64, string) {
	if e.hasCurtailment(row) {
		return price, key
	}

	// The cheapest actively charging storage makes the bid.
	minBid, minKey := 0.0, ""
	for _, storage := range e.grid.Storage {
		if storage.Use != model.UseElectricity {
			continue
		}
		chargingKey := ChargingKey(storage.Type)
		if e.columnValue(chargingKey, row) <= SmallThreshold {
			continue
		}
		bid := margins[storage.Type]
		if bid < 0 {
			bid = 0
		}
		if minKey == "" || bid < minBid {
			minBid, minKey = bid, chargingKey
		}
	}
	if minKey != "" && minBid > price {
		return minBid, minKey
	}
	return price, key
}

// StorageAverageMargins computes the realized margin per discharged MWh of
// each storage technology, capped at the charging price ceiling.
func (e *SpotPriceEstimator) StorageAverageMargins() map[model.StorageType]float64 {
	margins := map[model.StorageType]float64{}
	price := e.grid.Data.Column(KeyPrice)
	for _, storage := range e.grid.Storage {
		if storage.Use != model.UseElectricity {
			continue
		}
		discharging := e.grid.Data.Column(DischargingKey(storage.Type))
		totalMWh := 0.0
		sellEUR := 0.0
		for i, v := range discharging {
			totalMWh += v
			if price != nil {
				sellEUR += price[i] * v
			}
		}
		if totalMWh == 0 {
			margins[storage.Type] = 0
			continue
		}
		perMWh := sellEUR / totalMWh
		roundTrip := storage.ChargingEfficiency * storage.DischargingEfficiency
		margin := (perMWh - storage.Economics.VariableCostsPerMWhEUR) * roundTrip
		if margin > storageChargingMaxPriceEUR {
			margin = storageChargingMaxPriceEUR
		}
		margins[storage.Type] = margin
	}
	return margins
}
