package analysis

import (
	"math"
	"sort"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// PriceProfile summarizes the hourly electricity price series of one
// region in a solved run. StorageValue is the revenue upper bound for a
// canonical 1 MW storage with the given number of hours of energy,
// useful for judging how much flexibility a scenario still rewards.
type PriceProfile struct {
	Region model.Region
	Hours  int

	MinPrice  float64
	MaxPrice  float64
	MeanPrice float64
	P05Price  float64
	P95Price  float64

	SpreadP95P05 float64

	// Revenue in EUR of a lossless 1 MW battery with StorageHours MWh
	// of energy that charges and discharges at the perfect moments.
	StorageHours          int
	StorageValueEURPerMW  float64
	ZeroPriceHoursPerYear float64
}

// ComputePriceProfile reads the price column of a solved country grid.
// storageHours sizes the canonical battery of the storage value bound.
func ComputePriceProfile(g *grid.CountryGrid, storageHours int) PriceProfile {
	p := PriceProfile{Region: g.Country, StorageHours: storageHours}
	prices := g.Data.Column(grid.KeyPrice)
	if len(prices) == 0 {
		return p
	}
	p.Hours = len(prices)

	sum := 0.0
	zero := 0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, len(prices))
	copy(vals, prices)
	for _, v := range prices {
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		if v <= 0 {
			zero++
		}
	}
	sort.Float64s(vals)
	p.MinPrice = minv
	p.MaxPrice = maxv
	p.MeanPrice = sum / float64(len(vals))
	p.P05Price = percentileSorted(vals, 0.05)
	p.P95Price = percentileSorted(vals, 0.95)
	p.SpreadP95P05 = p.P95Price - p.P05Price
	p.ZeroPriceHoursPerYear = float64(zero) / float64(g.NumYears)

	p.StorageValueEURPerMW = storageValueBound(prices, storageHours)
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// storageValueBound runs a dynamic program over the hourly prices. The
// state of charge moves in whole MWh steps since power is 1 MW and the
// series is hourly, so the state space stays tiny.
func storageValueBound(prices []float64, storageHours int) float64 {
	if len(prices) == 0 || storageHours < 1 {
		return 0
	}
	nStates := storageHours + 1
	negInf := -1e100
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}
	// Start half full, rounded down.
	dp[storageHours/2] = 0

	for _, price := range prices {
		for i := range next {
			next[i] = negInf
		}
		for soc := 0; soc < nStates; soc++ {
			if dp[soc] <= negInf/2 {
				continue
			}
			// Hold.
			if dp[soc] > next[soc] {
				next[soc] = dp[soc]
			}
			// Charge 1 MWh at the current price.
			if soc < storageHours && dp[soc]-price > next[soc+1] {
				next[soc+1] = dp[soc] - price
			}
			// Discharge 1 MWh at the current price.
			if soc > 0 && dp[soc]+price > next[soc-1] {
				next[soc-1] = dp[soc] + price
			}
		}
		dp, next = next, dp
	}

	best := negInf
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	if best <= negInf/2 {
		return 0
	}
	return best
}
