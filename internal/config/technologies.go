package config

import (
	"fmt"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// flexibleTechnology describes a dispatchable technology independently of
// fuel prices. Variable costs are derived from an InputCosts profile.
type flexibleTechnology struct {
	// Electrical efficiency against the fuel's lower heating value.
	EfficiencyEl float64
	// Emissions per MWh of produced electricity.
	CO2TPerMWh float64
	Fuel       func(InputCosts) float64
	// Other variable costs per MWh of electricity (consumables, start-up
	// wear averaged out).
	VariableOMPerMWhEUR float64

	OvernightCostsPerKWEUR float64
	FixedOMCostsPerKWEUR   float64
	ConstructionTimeYears  int
	LifetimeYears          int

	RampRate           float64
	RampUpCostPerMWEUR float64
}

// The discount rate is expressed as 1 + r, as the annuity math expects.
const discountRate = 1.07

// Zero capex for existing coal plants so that continued operation is not
// penalized by sunk investment costs.
var flexibleTechnologies = map[model.FlexibleSourceType]flexibleTechnology{
	model.CoalHard: {
		EfficiencyEl:         0.40,
		CO2TPerMWh:           0.846,
		Fuel:                 func(c InputCosts) float64 { return c.HardCoalPerMWhEUR },
		VariableOMPerMWhEUR:  3.5,
		FixedOMCostsPerKWEUR: 35,
		LifetimeYears:        45,
		RampRate:             0.3,
		RampUpCostPerMWEUR:   40,
	},
	model.Lignite: {
		EfficiencyEl:         0.40,
		CO2TPerMWh:           1.0,
		Fuel:                 func(c InputCosts) float64 { return c.LignitePerMWhEUR },
		VariableOMPerMWhEUR:  3.5,
		FixedOMCostsPerKWEUR: 40,
		LifetimeYears:        45,
		RampRate:             0.25,
		RampUpCostPerMWEUR:   45,
	},
	// Backpressure CHP lignite. Low electrical efficiency, most of the
	// energy goes to heat, and the heat obligation keeps it running.
	model.LigniteBackpres: {
		EfficiencyEl:         0.20,
		CO2TPerMWh:           1.1,
		Fuel:                 func(c InputCosts) float64 { return c.LignitePerMWhEUR },
		VariableOMPerMWhEUR:  3.5,
		FixedOMCostsPerKWEUR: 40,
		LifetimeYears:        45,
		RampRate:             0.2,
		RampUpCostPerMWEUR:   45,
	},
	model.GasCCGT: {
		EfficiencyEl:           0.56,
		CO2TPerMWh:             0.37,
		Fuel:                   func(c InputCosts) float64 { return c.FossilGasPerMWhEUR },
		VariableOMPerMWhEUR:    2,
		OvernightCostsPerKWEUR: 900,
		FixedOMCostsPerKWEUR:   20,
		ConstructionTimeYears:  3,
		LifetimeYears:          30,
		RampRate:               0.5,
		RampUpCostPerMWEUR:     25,
	},
	model.GasOCGT: {
		EfficiencyEl:           0.40,
		CO2TPerMWh:             0.52,
		Fuel:                   func(c InputCosts) float64 { return c.FossilGasPerMWhEUR },
		VariableOMPerMWhEUR:    3,
		OvernightCostsPerKWEUR: 450,
		FixedOMCostsPerKWEUR:   12,
		ConstructionTimeYears:  2,
		LifetimeYears:          30,
		RampRate:               1,
	},
	model.GasCHP: {
		EfficiencyEl:           0.45,
		CO2TPerMWh:             0.45,
		Fuel:                   func(c InputCosts) float64 { return c.FossilGasPerMWhEUR },
		VariableOMPerMWhEUR:    2.5,
		OvernightCostsPerKWEUR: 1000,
		FixedOMCostsPerKWEUR:   25,
		ConstructionTimeYears:  2,
		LifetimeYears:          30,
		RampRate:               0.4,
		RampUpCostPerMWEUR:     20,
	},
	model.Biomass: {
		EfficiencyEl:         0.30,
		Fuel:                 func(c InputCosts) float64 { return c.BiomassPerMWhEUR },
		VariableOMPerMWhEUR:  4,
		FixedOMCostsPerKWEUR: 50,
		LifetimeYears:        30,
		RampRate:             0.3,
		RampUpCostPerMWEUR:   30,
	},
}

// lossOfLoadCostPerMWhEUR prices unserved energy far above any generator so
// that shortages appear explicitly instead of making the problem infeasible.
const lossOfLoadCostPerMWhEUR = 10_000

// NewFlexibleSource instantiates a technology under a price profile.
func NewFlexibleSource(t model.FlexibleSourceType, costs InputCosts,
	capacityMW, minCapacityMW float64) (model.FlexibleSource, error) {
	if t == model.LossOfLoad {
		return model.FlexibleSource{
			Type:       t,
			CapacityMW: capacityMW,
			RampRate:   1,
			Virtual:    true,
			Economics: model.Economics{
				VariableCostsPerMWhEUR: lossOfLoadCostPerMWhEUR,
				LifetimeYears:          1,
				DiscountRate:           discountRate,
			},
		}, nil
	}
	tech, ok := flexibleTechnologies[t]
	if !ok {
		return model.FlexibleSource{}, fmt.Errorf("unknown flexible technology %q", t)
	}
	variable := tech.Fuel(costs)/tech.EfficiencyEl +
		tech.CO2TPerMWh*costs.EmissionPricePerTEUR +
		tech.VariableOMPerMWhEUR
	construction := tech.ConstructionTimeYears
	if construction == 0 {
		construction = 1
	}
	return model.FlexibleSource{
		Type:               t,
		CapacityMW:         capacityMW,
		MinCapacityMW:      minCapacityMW,
		RampRate:           tech.RampRate,
		RampUpCostPerMWEUR: tech.RampUpCostPerMWEUR,
		CO2TPerMWh:         tech.CO2TPerMWh,
		Economics: model.Economics{
			OvernightCostsPerKWEUR: tech.OvernightCostsPerKWEUR,
			FixedOMCostsPerKWEUR:   tech.FixedOMCostsPerKWEUR,
			VariableCostsPerMWhEUR: variable,
			ConstructionTimeYears:  construction,
			LifetimeYears:          tech.LifetimeYears,
			DiscountRate:           discountRate,
		},
	}, nil
}

// basicEconomics returns the fixed-cost parameters of weather-driven and
// baseload sources. Their variable costs are negligible except for nuclear
// fuel.
func basicEconomics(t model.BasicSourceType) model.Economics {
	switch t {
	case model.Solar:
		return model.Economics{
			OvernightCostsPerKWEUR: 600,
			FixedOMCostsPerKWEUR:   12,
			ConstructionTimeYears:  1,
			LifetimeYears:          25,
			DiscountRate:           discountRate,
		}
	case model.Onshore:
		return model.Economics{
			OvernightCostsPerKWEUR: 1300,
			FixedOMCostsPerKWEUR:   30,
			ConstructionTimeYears:  2,
			LifetimeYears:          25,
			DiscountRate:           discountRate,
		}
	case model.Offshore:
		return model.Economics{
			OvernightCostsPerKWEUR: 2500,
			FixedOMCostsPerKWEUR:   60,
			ConstructionTimeYears:  3,
			LifetimeYears:          25,
			DiscountRate:           discountRate,
		}
	case model.Nuclear:
		return model.Economics{
			OvernightCostsPerKWEUR: 9000,
			FixedOMCostsPerKWEUR:   100,
			VariableCostsPerMWhEUR: 10,
			ConstructionTimeYears:  10,
			LifetimeYears:          60,
			DiscountRate:           discountRate,
		}
	case model.Hydro, model.Wind:
		return model.Economics{
			FixedOMCostsPerKWEUR:  20,
			ConstructionTimeYears: 1,
			LifetimeYears:         60,
			DiscountRate:          discountRate,
		}
	}
	return model.Economics{
		ConstructionTimeYears: 1,
		LifetimeYears:         30,
		DiscountRate:          discountRate,
	}
}

// NewBasicSource builds a basic source with library economics.
func NewBasicSource(t model.BasicSourceType, capacityMW, minCapacityMW float64) model.Source {
	return model.Source{
		Type:          t,
		CapacityMW:    capacityMW,
		MinCapacityMW: minCapacityMW,
		Renewable:     t != model.Nuclear,
		Economics:     basicEconomics(t),
	}
}

// NewStorage instantiates a storage fleet of the given technology with
// library efficiencies, loss rates and inflow wiring.
func NewStorage(t model.StorageType, dischargingMW, chargingMW, maxEnergyMWh float64) model.Storage {
	s := model.NewStorage(t, model.UseElectricity)
	s.CapacityMW = dischargingMW
	s.MinCapacityMW = dischargingMW
	s.CapacityMWCharging = chargingMW
	s.MinCapacityMWCharging = chargingMW
	s.MaxEnergyMWh = maxEnergyMWh
	s.Economics = model.Economics{
		ConstructionTimeYears: 1,
		LifetimeYears:         40,
		DiscountRate:          discountRate,
	}

	switch t {
	case model.StoragePumped:
		s.ChargingEfficiency = 0.85
		s.DischargingEfficiency = 0.9
		s.InitialEnergyMWh = maxEnergyMWh / 2
		s.FinalEnergyMWh = maxEnergyMWh / 2
		s.CostSellBuyPerMWhEUR = 50
	case model.StoragePumpedOpen:
		s.ChargingEfficiency = 0.85
		s.DischargingEfficiency = 0.9
		s.InflowKey = grid.KeyHydroInflowPumpedOpen
		s.InitialEnergyMWh = maxEnergyMWh / 2
		s.FinalEnergyMWh = maxEnergyMWh / 2
		s.CostSellBuyPerMWhEUR = 50
	case model.StorageReservoir:
		s.DischargingEfficiency = 1
		s.InflowKey = grid.KeyHydroInflowReservoir
		s.InitialEnergyMWh = maxEnergyMWh / 2
		s.FinalEnergyMWh = maxEnergyMWh / 2
		s.MinFinalEnergyMWh = maxEnergyMWh / 4
		s.CostSellBuyPerMWhEUR = 20
	case model.StorageRunOfRiver:
		s.DischargingEfficiency = 1
		s.InflowKey = grid.KeyHydroInflowRoR
		s.InflowMinDischargeRatio = 0.9
	case model.StoragePondage:
		s.DischargingEfficiency = 1
		s.InflowKey = grid.KeyHydroInflowPondage
		s.InflowMinDischargeRatio = 0.5
	case model.StorageLiIon, model.StorageLiIon4h:
		s.ChargingEfficiency = 0.96
		s.DischargingEfficiency = 0.96
		s.LossRatePerDay = 0.001
		s.Economics.OvernightCostsPerKWEUR = 300
		s.Economics.LifetimeYears = 15
		// Batteries must end the day where they started to avoid
		// free energy at the horizon boundary.
		s.MidnightEnergyMWh = maxEnergyMWh / 2
		s.InitialEnergyMWh = maxEnergyMWh / 2
		s.FinalEnergyMWh = maxEnergyMWh / 2
		s.CostSellBuyPerMWhEUR = 80
	case model.StorageHydrogen:
		// Electrolysis charging is built independently of the turbines.
		s.SeparateCharging = true
		s.ChargingEfficiency = 0.65
		s.DischargingEfficiency = 0.5
		s.FinalEnergyMWh = maxEnergyMWh / 10
		s.CostSellBuyPerMWhEUR = 90
	case model.StorageDSR:
		s.Use = model.UseDemandFlexibility
		s.ChargingEfficiency = 1
		s.DischargingEfficiency = 1
		s.MidnightEnergyMWh = maxEnergyMWh / 2
		s.InitialEnergyMWh = maxEnergyMWh / 2
		s.FinalEnergyMWh = maxEnergyMWh / 2
	}
	return s
}
