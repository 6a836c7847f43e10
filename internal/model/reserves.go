package model

import "errors"

// Reserves captures the implicit modelling of balancing reserves for one
// country. Upward reserves are held back as spare hydro discharging
// capacity; downward activation is approximated by a uniform load increase.
type Reserves struct {
	// Spare hydro discharging capacity that must remain available in every
	// hour.
	HydroCapacityReductionMW float64
	// Uniform addition to the hourly load.
	AdditionalLoadMW float64
}

func (r Reserves) Validate() error {
	if r.HydroCapacityReductionMW < 0 || r.AdditionalLoadMW < 0 {
		return errors.New("reserve requirements must be >= 0")
	}
	return nil
}
