package config

import (
	"fmt"
	"sort"

	"grid-dispatch/internal/model"
)

// countryDefaults is the built-in fleet of one country at one target year.
// Capacities are net output in MW, already derated for self-consumption.
type countryDefaults struct {
	// Uniform scaling of the hourly demand curve.
	LoadFactor float64
	Basic      map[model.BasicSourceType]float64
	// Part of the nuclear fleet that can modulate below its schedule.
	NuclearFlexibilityMW float64
	Flexible             map[model.FlexibleSourceType]float64
	Storage              []storageDefaults
}

type storageDefaults struct {
	Type          model.StorageType
	DischargingMW float64
	ChargingMW    float64
	MaxEnergyMWh  float64
}

// Nuclear fleets keep at least this share of nominal output when turned down.
const nuclearMinOutputRatio = 0.3

const nuclearRampRate = 0.5

// Wear plus extra fuel for a hot unit, per PEMMDB figures.
const nuclearRampUpCostPerMWEUR = 26

// Capacity of the virtual loss-of-load source, large enough to absorb any
// shortage.
const lossOfLoadCapacityMW = 100_000

// countryLibrary holds default fleets keyed by region and target year. A
// scenario year picks the closest library year at or below it. The set
// covers the central European neighbourhood modelled by the coal phase-out
// studies.
//
// Conventional capacities follow national statistics circa each target year
// with derating for net output. Battery and renewable buildout for 2030
// follows stated national plans.
var countryLibrary = map[model.Region]map[int]countryDefaults{
	model.Czechia: {
		2025: {
			LoadFactor: 0.9,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   3500,
				model.Onshore: 340,
				model.Nuclear: 4047,
			},
			NuclearFlexibilityMW: 140,
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        855,
				model.Lignite:         3476,
				model.LigniteBackpres: 2885,
				model.GasCCGT:         823,
				model.GasOCGT:         495,
				model.GasCHP:          760,
				model.Biomass:         549,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 1156, 1102, 6000},
				{model.StorageReservoir, 730, 0, 120_000},
				{model.StorageRunOfRiver, 380, 0, 0},
				{model.StorageLiIon, 43, 43, 45},
			},
		},
		2030: {
			LoadFactor: 0.9,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   10_100,
				model.Onshore: 800,
				model.Nuclear: 4047,
			},
			NuclearFlexibilityMW: 140,
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        855,
				model.Lignite:         3476,
				model.LigniteBackpres: 2885,
				model.GasCCGT:         823,
				model.GasOCGT:         495,
				model.GasCHP:          1500,
				model.Biomass:         640,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 1156, 1102, 6000},
				{model.StorageReservoir, 730, 0, 120_000},
				{model.StorageRunOfRiver, 380, 0, 0},
				{model.StorageLiIon, 300, 300, 600},
			},
		},
	},
	model.Germany: {
		2025: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:    90_000,
				model.Onshore:  62_000,
				model.Offshore: 9200,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        12_900,
				model.Lignite:         14_700,
				model.LigniteBackpres: 1300,
				model.GasCCGT:         25_000,
				model.GasOCGT:         3200,
				model.GasCHP:          10_500,
				model.Biomass:         9000,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 8094, 7963, 40_000},
				{model.StorageReservoir, 1300, 0, 230_000},
				{model.StorageRunOfRiver, 3900, 0, 0},
				{model.StorageLiIon, 1700, 1700, 2500},
			},
		},
		2030: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:    160_000,
				model.Onshore:  90_000,
				model.Offshore: 25_000,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        6000,
				model.Lignite:         9000,
				model.LigniteBackpres: 900,
				model.GasCCGT:         32_000,
				model.GasOCGT:         5000,
				model.GasCHP:          12_000,
				model.Biomass:         8500,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 8094, 7963, 40_000},
				{model.StorageReservoir, 1300, 0, 230_000},
				{model.StorageRunOfRiver, 3900, 0, 0},
				{model.StorageLiIon, 10_000, 10_000, 20_000},
				{model.StorageHydrogen, 1000, 2000, 500_000},
			},
		},
	},
	model.Austria: {
		2025: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   3300,
				model.Onshore: 3600,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.GasCCGT: 4000,
				model.GasCHP:  1200,
				model.Biomass: 540,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 3400, 3400, 30_000},
				{model.StoragePumpedOpen, 2196, 2196, 1_300_000},
				{model.StorageReservoir, 2770, 0, 1_100_000},
				{model.StorageRunOfRiver, 5900, 0, 0},
			},
		},
		2030: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   8000,
				model.Onshore: 5500,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.GasCCGT: 4000,
				model.GasCHP:  1200,
				model.Biomass: 540,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 3400, 3400, 30_000},
				{model.StoragePumpedOpen, 2196, 2196, 1_300_000},
				{model.StorageReservoir, 2770, 0, 1_100_000},
				{model.StorageRunOfRiver, 5900, 0, 0},
				{model.StorageLiIon, 700, 700, 1400},
			},
		},
	},
	model.Slovakia: {
		2025: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   530,
				model.Nuclear: 2300,
			},
			NuclearFlexibilityMW: 0,
			Flexible: map[model.FlexibleSourceType]float64{
				model.GasCCGT: 1000,
				model.GasCHP:  300,
				model.Biomass: 220,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 926, 828, 4000},
				{model.StorageReservoir, 830, 0, 220_000},
				{model.StorageRunOfRiver, 800, 0, 0},
			},
		},
		2030: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   1200,
				model.Onshore: 100,
				model.Nuclear: 2700,
			},
			NuclearFlexibilityMW: 0,
			Flexible: map[model.FlexibleSourceType]float64{
				model.GasCCGT: 1000,
				model.GasCHP:  300,
				model.Biomass: 220,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 926, 828, 4000},
				{model.StorageReservoir, 830, 0, 220_000},
				{model.StorageRunOfRiver, 800, 0, 0},
				{model.StorageLiIon, 100, 100, 200},
			},
		},
	},
	model.Poland: {
		2025: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:   17_000,
				model.Onshore: 9500,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        17_800,
				model.Lignite:         6900,
				model.LigniteBackpres: 900,
				model.GasCCGT:         4500,
				model.GasOCGT:         1000,
				model.GasCHP:          2500,
				model.Biomass:         1000,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 1550, 1658, 7600},
				{model.StorageReservoir, 380, 0, 60_000},
				{model.StorageRunOfRiver, 400, 0, 0},
				{model.StorageLiIon, 200, 200, 400},
			},
		},
		2030: {
			LoadFactor: 1,
			Basic: map[model.BasicSourceType]float64{
				model.Solar:    27_000,
				model.Onshore:  14_000,
				model.Offshore: 5900,
			},
			Flexible: map[model.FlexibleSourceType]float64{
				model.CoalHard:        14_000,
				model.Lignite:         5500,
				model.LigniteBackpres: 700,
				model.GasCCGT:         9000,
				model.GasOCGT:         2000,
				model.GasCHP:          3000,
				model.Biomass:         1300,
			},
			Storage: []storageDefaults{
				{model.StoragePumped, 1550, 1658, 7600},
				{model.StorageReservoir, 380, 0, 60_000},
				{model.StorageRunOfRiver, 400, 0, 0},
				{model.StorageLiIon, 1500, 1500, 3000},
			},
		},
	},
}

// LibraryRegions lists the countries with built-in defaults, sorted.
func LibraryRegions() []model.Region {
	regions := make([]model.Region, 0, len(countryLibrary))
	for region := range countryLibrary {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

// libraryDefaults picks the fleet of the closest library year at or below
// the scenario year.
func libraryDefaults(region model.Region, year int) (countryDefaults, error) {
	years, ok := countryLibrary[region]
	if !ok {
		return countryDefaults{}, fmt.Errorf("no fleet defaults for country %s", region)
	}
	best := 0
	for libraryYear := range years {
		if libraryYear <= year && libraryYear > best {
			best = libraryYear
		}
	}
	if best == 0 {
		return countryDefaults{}, fmt.Errorf(
			"no fleet defaults for country %s at year %d", region, year)
	}
	return years[best], nil
}

const interconnectorLoss = 0.02

type linkDefaults struct {
	from, to   model.Region
	capacityMW float64
	symmetric  bool
}

// Current net transfer capacities plus the stated-policy buildout for 2030,
// per the EMBER New Generation dataset.
var interconnectorLibrary = map[int][]linkDefaults{
	2025: {
		{model.Czechia, model.Germany, 2100, false},
		{model.Czechia, model.Austria, 800, false},
		{model.Czechia, model.Slovakia, 1800, false},
		{model.Czechia, model.Poland, 600, false},
		{model.Germany, model.Czechia, 1500, false},
		{model.Germany, model.Poland, 500, false},
		{model.Germany, model.Austria, 5000, true},
		{model.Austria, model.Czechia, 900, false},
		{model.Slovakia, model.Czechia, 1100, false},
		{model.Slovakia, model.Poland, 1000, true},
		{model.Poland, model.Germany, 2500, false},
		{model.Poland, model.Czechia, 800, false},
	},
	2030: {
		{model.Czechia, model.Germany, 2100, false},
		{model.Czechia, model.Austria, 900, true},
		{model.Czechia, model.Slovakia, 1800, false},
		{model.Czechia, model.Poland, 600, false},
		{model.Germany, model.Czechia, 1500, false},
		{model.Germany, model.Poland, 3500, false},
		{model.Germany, model.Austria, 5400, true},
		{model.Slovakia, model.Czechia, 1100, false},
		{model.Slovakia, model.Poland, 1000, true},
		{model.Poland, model.Germany, 3000, false},
		{model.Poland, model.Czechia, 800, false},
	},
}

// libraryInterconnectors builds the directed link set for the closest
// library year at or below the scenario year.
func libraryInterconnectors(year int) (model.Interconnectors, error) {
	best := 0
	for libraryYear := range interconnectorLibrary {
		if libraryYear <= year && libraryYear > best {
			best = libraryYear
		}
	}
	if best == 0 {
		return model.Interconnectors{}, fmt.Errorf("no interconnector defaults at year %d", year)
	}
	links := model.NewInterconnectors()
	for _, link := range interconnectorLibrary[best] {
		links.Set(link.from, link.to,
			model.Interconnector{CapacityMW: link.capacityMW, Loss: interconnectorLoss})
		if link.symmetric {
			links.Set(link.to, link.from,
				model.Interconnector{CapacityMW: link.capacityMW, Loss: interconnectorLoss})
		}
	}
	return links, nil
}
