package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"grid-dispatch/internal/model"
)

// InputCosts holds fuel and emission allowance prices. Fuel prices are per
// MWh of lower heating value; the technology catalog converts them to
// variable costs per MWh of electricity via plant efficiencies.
type InputCosts struct {
	EmissionPricePerTEUR float64
	LignitePerMWhEUR     float64
	HardCoalPerMWhEUR    float64
	FossilGasPerMWhEUR   float64
	BiomassPerMWhEUR     float64
}

// DefaultInputCosts names the profile used when a scenario does not pick
// one.
const DefaultInputCosts = "2025"

// Price profiles. The 2025 numbers follow TTF and API2 Rotterdam futures
// around mid 2024; the cheap-ETS variants model a collapsed allowance
// market.
var inputCostProfiles = map[string]InputCosts{
	"2025": {
		EmissionPricePerTEUR: 100,
		LignitePerMWhEUR:     5.04,
		HardCoalPerMWhEUR:    120 / 8.141,
		FossilGasPerMWhEUR:   35,
		BiomassPerMWhEUR:     27,
	},
	"2025-cheap-ets": {
		EmissionPricePerTEUR: 60,
		LignitePerMWhEUR:     5.04,
		HardCoalPerMWhEUR:    120 / 8.141,
		FossilGasPerMWhEUR:   35,
		BiomassPerMWhEUR:     27,
	},
	"2030": {
		EmissionPricePerTEUR: 120,
		LignitePerMWhEUR:     10,
		HardCoalPerMWhEUR:    120 / 8.141,
		FossilGasPerMWhEUR:   25,
		BiomassPerMWhEUR:     9,
	},
	"2030-cheap-ets": {
		EmissionPricePerTEUR: 40,
		LignitePerMWhEUR:     10,
		HardCoalPerMWhEUR:    120 / 8.141,
		FossilGasPerMWhEUR:   25,
		BiomassPerMWhEUR:     9,
	},
}

// defaultProfileFor picks the profile matching the scenario's target year,
// falling back to the default profile for years without one.
func defaultProfileFor(year int) string {
	name := strconv.Itoa(year)
	if _, ok := inputCostProfiles[name]; ok {
		return name
	}
	return DefaultInputCosts
}

// Lignite prices stratified by mining region, EUR per MWh of lower
// heating value. Source: ENTSO-E TYNDP 2022 Scenario Building Guidelines,
// April 2022.
var tyndpLignitePrices = map[model.Region]float64{
	model.Bulgaria:       5.04,
	model.Czechia:        5.04,
	model.NorthMacedonia: 5.04,

	model.BosniaHerzegovina: 6.48,
	model.Germany:           6.48,
	model.GreatBritain:      6.48,
	model.Ireland:           6.48,
	model.Montenegro:        6.48,
	model.Poland:            6.48,
	model.Serbia:            6.48,
	model.Slovakia:          6.48,

	model.Hungary:  8.53,
	model.Romania:  8.53,
	model.Slovenia: 8.53,

	model.Greece: 11.16,
}

// TyndpLignitePrice returns the TYNDP lignite price for a country, if one
// is defined. Countries without domestic lignite keep the profile price.
func TyndpLignitePrice(region model.Region) (float64, bool) {
	price, ok := tyndpLignitePrices[region]
	return price, ok
}

// InputCostsByName looks up a price profile.
func InputCostsByName(name string) (InputCosts, error) {
	costs, ok := inputCostProfiles[name]
	if !ok {
		names := make([]string, 0, len(inputCostProfiles))
		for n := range inputCostProfiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return InputCosts{}, fmt.Errorf("input costs profile %q not defined, choose one of %s",
			name, strings.Join(names, ", "))
	}
	return costs, nil
}
