package grid

import (
	"math"
	"sort"

	"grid-dispatch/internal/model"
)

// Season selects the part of the year a statistic covers.
type Season string

const (
	SeasonYear   Season = "Y"
	SeasonSummer Season = "S"
	SeasonWinter Season = "W"
)

var seasons = []Season{SeasonYear, SeasonSummer, SeasonWinter}

// StatType identifies one yearly statistic in the long-form output.
type StatType string

const (
	StatCapacityGW         StatType = "capacity_GW"
	StatCapacityChargingGW StatType = "capacity_charging_GW"

	StatLoadTWh        StatType = "load_TWh"
	StatImportTWh      StatType = "import_TWh"
	StatExportTWh      StatType = "export_TWh"
	StatNetImportTWh   StatType = "net_import_TWh"
	StatCurtailmentTWh StatType = "curtailment_TWh"

	StatProductionTWh   StatType = "production_TWh"
	StatDischargedTWh   StatType = "discharged_TWh"
	StatChargedTWh      StatType = "charged_TWh"
	StatInflowTWh       StatType = "inflow_TWh"
	StatProductionHours StatType = "production_hours"

	StatCapexMnEURPerYear      StatType = "capex_mn_EUR_per_yr"
	StatOpexMnEUR              StatType = "opex_mn_EUR"
	StatWholesaleExpensesMnEUR StatType = "wholesale_expenses_mn_EUR"
	StatWholesaleRevenuesMnEUR StatType = "wholesale_revenues_mn_EUR"
	StatAvgConsumerPrice       StatType = "avg_consumer_price_EUR_per_MWh"
	StatAvgProducerPrice       StatType = "avg_producer_price_EUR_per_MWh"

	StatCapacityFactor StatType = "capacity_factor"
	StatEmissionsMtCO2 StatType = "emissions_MtCO2"
)

// Pseudo-sources for aggregate rows.
const (
	SourceTotal        = "TOTAL"
	SourceImportExport = "IMPORT_EXPORT"
)

// StatRow is one record of the long-form statistics CSV.
type StatRow struct {
	Name   string
	Region model.Region
	Season Season
	Source string
	Stat   StatType
	Val    float64
}

const twhInMWh = 1_000_000

// ComputeStats derives the yearly, summer and winter statistics of one
// country grid: volumes, economics, capacity factors and emissions per
// source plus grid-level totals.
func ComputeStats(name string, g *CountryGrid) []StatRow {
	b := &statsBuilder{name: name, grid: g}
	frames := map[Season]*Frame{
		SeasonYear:   g.Data,
		SeasonSummer: g.Data.SummerSlice(),
		SeasonWinter: g.Data.WinterSlice(),
	}

	b.computeInstalled()
	for _, season := range seasons {
		df := frames[season]
		b.computeVolumes(season, df)
		b.computeProduction(season, df)
		b.computeProductionHours(season, df)
		b.computeCosts(season, df)
		b.computeCapacityFactor(season, float64(df.Len())/float64(g.NumYears))
		b.computeEmissions(season)
		b.computeAveragePrices(season, df)
	}
	return b.rows
}

type statsBuilder struct {
	name string
	grid *CountryGrid
	rows []StatRow
}

func (b *statsBuilder) store(season Season, source string, stat StatType, val float64) {
	b.rows = append(b.rows, StatRow{
		Name: b.name, Region: b.grid.Country,
		Season: season, Source: source, Stat: stat, Val: val,
	})
}

func (b *statsBuilder) lookup(season Season, source string, stat StatType) (float64, bool) {
	for _, row := range b.rows {
		if row.Season == season && row.Source == source && row.Stat == stat {
			return row.Val, true
		}
	}
	return 0, false
}

func (b *statsBuilder) sumPerYear(season Season, stat StatType) float64 {
	total := 0.0
	for _, row := range b.rows {
		if row.Season == season && row.Stat == stat && row.Source != SourceTotal {
			total += row.Val
		}
	}
	return total
}

func (b *statsBuilder) computeInstalled() {
	for _, source := range b.basicSources() {
		b.store(SeasonYear, string(source.Type), StatCapacityGW, source.CapacityMW/1000)
	}
	for _, source := range b.grid.FlexibleSources {
		if source.Virtual {
			continue
		}
		b.store(SeasonYear, string(source.Type), StatCapacityGW, source.CapacityMW/1000)
	}
	for _, storage := range b.grid.Storage {
		if storage.CapacityMWCharging != storage.CapacityMW {
			b.store(SeasonYear, string(storage.Type), StatCapacityChargingGW,
				storage.CapacityMWCharging/1000)
		}
		b.store(SeasonYear, string(storage.Type), StatCapacityGW, storage.CapacityMW/1000)
	}
	b.store(SeasonYear, SourceTotal, StatCapacityGW,
		b.sumPerYear(SeasonYear, StatCapacityGW))
}

func (b *statsBuilder) computeVolumes(season Season, df *Frame) {
	perYear := func(total float64) float64 { return total / twhInMWh / float64(b.grid.NumYears) }

	b.store(season, SourceTotal, StatLoadTWh, perYear(df.Sum(KeyLoad)))

	curtailment := 0.0
	for _, v := range df.Column(KeyCurtailment) {
		if v > 0 {
			curtailment += v
		}
	}
	b.store(season, SourceTotal, StatCurtailmentTWh, perYear(curtailment))

	importTWh := perYear(df.Sum(KeyImport))
	exportTWh := perYear(df.Sum(KeyExport))
	b.store(season, SourceTotal, StatImportTWh, importTWh)
	b.store(season, SourceTotal, StatExportTWh, exportTWh)
	b.store(season, SourceTotal, StatNetImportTWh, importTWh-exportTWh)
}

func (b *statsBuilder) computeProduction(season Season, df *Frame) {
	perYear := func(total float64) float64 { return total / twhInMWh / float64(b.grid.NumYears) }

	for _, source := range b.basicSources() {
		b.store(season, string(source.Type), StatProductionTWh,
			perYear(df.Sum(BasicKey(source.Type))))
	}
	for _, source := range b.grid.FlexibleSources {
		b.store(season, string(source.Type), StatProductionTWh,
			perYear(df.Sum(FlexibleKey(source.Type))))
	}
	for _, storage := range b.grid.Storage {
		discharged := perYear(df.Sum(DischargingKey(storage.Type)))
		b.store(season, string(storage.Type), StatProductionTWh, discharged)
		b.store(season, string(storage.Type), StatDischargedTWh, discharged)
		b.store(season, string(storage.Type), StatChargedTWh,
			perYear(df.Sum(ChargingKey(storage.Type))))
		if storage.InflowKey != "" {
			b.store(season, string(storage.Type), StatInflowTWh,
				perYear(df.Sum(storage.InflowKey)))
		}
	}

	b.store(season, SourceTotal, StatProductionTWh, b.sumPerYear(season, StatProductionTWh))
	b.store(season, SourceTotal, StatDischargedTWh, b.sumPerYear(season, StatDischargedTWh))
	b.store(season, SourceTotal, StatChargedTWh, b.sumPerYear(season, StatChargedTWh))
}

func (b *statsBuilder) computeProductionHours(season Season, df *Frame) {
	countHours := func(key string) float64 {
		hours := 0
		for _, v := range df.Column(key) {
			if v > SmallThreshold {
				hours++
			}
		}
		return float64(hours)
	}
	for _, source := range b.grid.FlexibleSources {
		b.store(season, string(source.Type), StatProductionHours,
			countHours(FlexibleKey(source.Type)))
	}
	for _, storage := range b.grid.Storage {
		b.store(season, string(storage.Type), StatProductionHours,
			countHours(DischargingKey(storage.Type)))
	}
}

// priceWeightedSum returns sum(price * column) in millions of EUR per year.
func (b *statsBuilder) priceWeightedSum(df *Frame, key string) float64 {
	price := df.Column(KeyPrice)
	col := df.Column(key)
	if price == nil || col == nil {
		return 0
	}
	total := 0.0
	for i, v := range col {
		total += price[i] * v
	}
	return total / 1e6 / float64(b.grid.NumYears)
}

func (b *statsBuilder) rampUpCostsMnEUR(df *Frame, key string, costPerMWEUR float64) float64 {
	ramp := df.Column(RampUpKey(key))
	if ramp == nil {
		return 0
	}
	total := 0.0
	for _, v := range ramp {
		total += v * costPerMWEUR
	}
	return total / 1e6
}

func (b *statsBuilder) computeCosts(season Season, df *Frame) {
	for _, source := range b.basicSources() {
		key := BasicKey(source.Type)
		totalMWh := df.Sum(key)
		capex := source.Economics.CapexPerYearEUR(source.CapacityMW) / 1e6
		opex := source.Economics.VariableCostsPerMWhEUR * totalMWh / 1e6
		b.store(season, string(source.Type), StatCapexMnEURPerYear, capex)
		b.store(season, string(source.Type), StatOpexMnEUR, opex)
		b.store(season, string(source.Type), StatWholesaleRevenuesMnEUR,
			b.priceWeightedSum(df, key))
	}

	for _, source := range b.grid.FlexibleSources {
		if source.Virtual {
			continue
		}
		key := FlexibleKey(source.Type)
		totalMWh := df.Sum(key)
		capex := source.Economics.CapexPerYearEUR(source.CapacityMW) / 1e6
		opex := source.Economics.VariableCostsPerMWhEUR * totalMWh / 1e6
		opex += b.rampUpCostsMnEUR(df, key, source.RampUpCostPerMWEUR)
		b.store(season, string(source.Type), StatCapexMnEURPerYear, capex)
		b.store(season, string(source.Type), StatOpexMnEUR, opex)
		b.store(season, string(source.Type), StatWholesaleRevenuesMnEUR,
			b.priceWeightedSum(df, key))
	}

	for _, storage := range b.grid.Storage {
		if storage.Use != model.UseElectricity {
			continue
		}
		capex := storage.Economics.CapexPerYearEUR(storage.CapacityMW) / 1e6
		opex := storage.Economics.VariableCostsPerMWhEUR *
			df.Sum(DischargingKey(storage.Type)) / 1e6

		// Ending above the target final state earns the sell price, ending
		// below costs it. Credit or charge that against OPEX.
		if soc := df.Column(StateOfChargeKey(storage.Type)); len(soc) > 0 {
			extra := soc[len(soc)-1] - storage.FinalEnergyMWh
			opex -= extra * storage.CostSellBuyPerMWhEUR / 1e6 / float64(b.grid.NumYears)
		}

		b.store(season, string(storage.Type), StatCapexMnEURPerYear, capex)
		b.store(season, string(storage.Type), StatOpexMnEUR, opex)
		b.store(season, string(storage.Type), StatWholesaleExpensesMnEUR,
			b.priceWeightedSum(df, ChargingKey(storage.Type)))
		b.store(season, string(storage.Type), StatWholesaleRevenuesMnEUR,
			b.priceWeightedSum(df, DischargingKey(storage.Type)))
	}

	b.computeImportExportCosts(season, df)
}

func (b *statsBuilder) computeImportExportCosts(season Season, df *Frame) {
	netImport := df.Column(KeyNetImport)
	priceExport := df.Column(KeyPriceExport)
	priceImport := df.Column(KeyPriceImport)
	exports := df.Column(KeyExport)
	if netImport == nil || priceExport == nil || priceImport == nil || exports == nil {
		return
	}

	divisor := 1e6 * float64(b.grid.NumYears)
	revenues, expenses := 0.0, 0.0
	for i, net := range netImport {
		if net < 0 {
			revenues += -net * priceExport[i]
		} else {
			expenses += net * priceImport[i]
		}
		// The exporting party pays the interconnector capacity fee.
		revenues -= exports[i] * model.OutflowCapacityCostEURPerMWh
	}
	b.store(season, SourceImportExport, StatWholesaleRevenuesMnEUR, revenues/divisor)
	b.store(season, SourceImportExport, StatWholesaleExpensesMnEUR, expenses/divisor)
}

func (b *statsBuilder) computeCapacityFactor(season Season, totalHours float64) {
	if totalHours == 0 {
		return
	}
	for _, row := range b.rows {
		if row.Season != SeasonYear || row.Stat != StatCapacityGW || row.Val == 0 {
			continue
		}
		production, ok := b.lookup(season, row.Source, StatProductionTWh)
		if !ok {
			continue
		}
		factor := production * 1000 / (row.Val * totalHours)
		b.store(season, row.Source, StatCapacityFactor, factor)
	}
}

func (b *statsBuilder) computeEmissions(season Season) {
	intensity := map[string]float64{}
	for _, source := range b.basicSources() {
		intensity[string(source.Type)] = source.CO2TPerMWh
	}
	for _, source := range b.grid.FlexibleSources {
		intensity[string(source.Type)] = source.CO2TPerMWh
	}

	total := 0.0
	for _, row := range b.rows {
		if row.Season != season || row.Stat != StatProductionTWh || row.Source == SourceTotal {
			continue
		}
		co2PerMWh, ok := intensity[row.Source]
		if !ok {
			continue
		}
		// t per MWh equals Mt per TWh.
		mt := row.Val * co2PerMWh
		b.store(season, row.Source, StatEmissionsMtCO2, mt)
		total += mt
	}
	b.store(season, SourceTotal, StatEmissionsMtCO2, total)
}

func (b *statsBuilder) computeAveragePrices(season Season, df *Frame) {
	price := df.Column(KeyPrice)
	if price == nil {
		return
	}
	if avg, ok := weightedMean(price, df.Column(KeyLoad)); ok {
		b.store(season, SourceTotal, StatAvgConsumerPrice, avg)
	}
	if avg, ok := weightedMean(price, df.Column(KeyProduction)); ok {
		b.store(season, SourceTotal, StatAvgProducerPrice, avg)
	}
}

func weightedMean(values, weights []float64) (float64, bool) {
	if weights == nil || len(values) != len(weights) {
		return 0, false
	}
	sum, weight := 0.0, 0.0
	for i, v := range values {
		sum += v * weights[i]
		weight += weights[i]
	}
	if weight == 0 || math.IsNaN(sum) {
		return 0, false
	}
	return sum / weight, true
}

// basicSources returns the map values in a stable order.
func (b *statsBuilder) basicSources() []model.Source {
	types := make([]model.BasicSourceType, 0, len(b.grid.BasicSources))
	for t := range b.grid.BasicSources {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	out := make([]model.Source, len(types))
	for i, t := range types {
		out[i] = b.grid.BasicSources[t]
	}
	return out
}
