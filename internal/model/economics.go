package model

import (
	"errors"
	"math"
)

// Economics bundles the financing and operating cost parameters of a source.
// Units:
// - overnight and fixed O&M costs: EUR per kW
// - variable costs: EUR per MWh (fuel, carbon price, variable O&M)
// - discount rate: multiplicative factor, e.g. 1.08 for 8 %
type Economics struct {
	OvernightCostsPerKWEUR      float64
	DecommissioningCostPerKWEUR float64
	ConstructionTimeYears       int
	LifetimeYears               int
	DecommissioningTimeYears    int
	FixedOMCostsPerKWEUR        float64
	VariableCostsPerMWhEUR      float64
	DiscountRate                float64
}

func (e Economics) Validate() error {
	if e.ConstructionTimeYears <= 0 {
		return errors.New("ConstructionTimeYears must be > 0")
	}
	if e.LifetimeYears <= 0 {
		return errors.New("LifetimeYears must be > 0")
	}
	if e.DecommissioningTimeYears < 0 {
		return errors.New("DecommissioningTimeYears must be >= 0")
	}
	if e.DiscountRate < 1 {
		return errors.New("DiscountRate must be a factor >= 1 (e.g. 1.08)")
	}
	if e.OvernightCostsPerKWEUR < 0 || e.FixedOMCostsPerKWEUR < 0 {
		return errors.New("costs must be >= 0")
	}
	return nil
}

// discountedActivityYears sums the discounted length of an activity of
// `years` duration that starts `delay` years from now.
func discountedActivityYears(discountRate, delay, years float64) float64 {
	pow := math.Pow(discountRate, -delay)
	if years > 100 {
		// Approximate the tail by an infinite series.
		return pow / (1 - 1/discountRate)
	}
	sum := 0.0
	for remaining := years; remaining > 0; remaining-- {
		if remaining < 1 {
			sum += remaining * pow
			break
		}
		sum += pow
		pow /= discountRate
	}
	return sum
}

// InvestmentCostsPerYearEUR returns the annualized investment cost of
// `capacityMW` of this source: overnight and decommissioning costs spread
// over the discounted lifetime.
func (e Economics) InvestmentCostsPerYearEUR(capacityMW float64) float64 {
	if e.OvernightCostsPerKWEUR == 0 && e.DecommissioningCostPerKWEUR == 0 {
		return 0
	}
	// Capital is needed for half a year on average in the first year.
	const initialDelay = 0.5
	construction := discountedActivityYears(
		e.DiscountRate, initialDelay, float64(e.ConstructionTimeYears))
	lifetime := discountedActivityYears(
		e.DiscountRate, initialDelay+float64(e.ConstructionTimeYears), float64(e.LifetimeYears))
	decommissioning := 0.0
	if e.DecommissioningTimeYears > 0 {
		decommissioning = discountedActivityYears(
			e.DiscountRate,
			initialDelay+float64(e.ConstructionTimeYears)+float64(e.LifetimeYears),
			float64(e.DecommissioningTimeYears))
	}

	constructionPerKW := construction * e.OvernightCostsPerKWEUR / float64(e.ConstructionTimeYears)
	decommissioningPerKW := 0.0
	if e.DecommissioningTimeYears > 0 {
		decommissioningPerKW = decommissioning *
			e.DecommissioningCostPerKWEUR / float64(e.DecommissioningTimeYears)
	}

	capacityKW := capacityMW * 1000
	return capacityKW * (constructionPerKW + decommissioningPerKW) / lifetime
}

// CapexPerYearEUR is the total yearly fixed cost of `capacityMW`: annualized
// investment plus fixed O&M.
func (e Economics) CapexPerYearEUR(capacityMW float64) float64 {
	capacityKW := capacityMW * 1000
	return e.InvestmentCostsPerYearEUR(capacityMW) + capacityKW*e.FixedOMCostsPerKWEUR
}
