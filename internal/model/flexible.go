package model

import (
	"errors"
	"fmt"
)

// ProductionConstraint caps the total energy a flexible source may produce
// over the whole modelled period. Exactly one of the fields is set.
type ProductionConstraint struct {
	// Maximum average capacity factor over the period (0..1).
	MaxCapacityFactor float64
	// Maximum total production in TWh per modelled year.
	MaxTotalTWh float64
}

// FlexibleSource is a dispatchable source: its hourly production between 0
// and CapacityMW is a decision variable.
type FlexibleSource struct {
	Type FlexibleSourceType
	// Installed capacity, may be decreased by capacity optimization down to
	// MinCapacityMW.
	CapacityMW    float64
	MinCapacityMW float64
	// Hourly ramp limit as a fraction of CapacityMW; 1 means unconstrained.
	RampRate           float64
	RampUpCostPerMWEUR float64
	CO2TPerMWh         float64
	Economics          Economics
	// Operating subsidy netted against variable costs in the objective
	// (statistics still use the gross variable cost).
	SubsidyPerMWhEUR float64
	// Virtual sources (loss of load) are excluded from capex and plots.
	Virtual    bool
	Constraint *ProductionConstraint
}

func (s FlexibleSource) Validate() error {
	if s.CapacityMW < 0 {
		return errors.New("CapacityMW must be >= 0")
	}
	if s.MinCapacityMW < 0 || s.MinCapacityMW > s.CapacityMW {
		return errors.New("MinCapacityMW must satisfy 0 <= MinCapacityMW <= CapacityMW")
	}
	if s.RampRate <= 0 || s.RampRate > 1 {
		return errors.New("RampRate must be in (0, 1]")
	}
	if s.Constraint != nil {
		c := s.Constraint
		if (c.MaxCapacityFactor != 0) == (c.MaxTotalTWh != 0) {
			return errors.New("exactly one of MaxCapacityFactor and MaxTotalTWh must be set")
		}
		if c.MaxCapacityFactor < 0 || c.MaxCapacityFactor > 1 {
			return errors.New("MaxCapacityFactor must be in [0, 1]")
		}
		if c.MaxTotalTWh < 0 {
			return errors.New("MaxTotalTWh must be >= 0")
		}
	}
	if err := s.Economics.Validate(); err != nil {
		return fmt.Errorf("economics for %s: %w", s.Type, err)
	}
	return nil
}

// VariableCostsPerMWhEUR is the net hourly cost used in the objective:
// gross variable cost minus any operating subsidy.
func (s FlexibleSource) VariableCostsPerMWhEUR() float64 {
	return s.Economics.VariableCostsPerMWhEUR - s.SubsidyPerMWhEUR
}

// MaxRampMW is the absolute hourly ramp limit.
func (s FlexibleSource) MaxRampMW() float64 {
	return s.RampRate * s.CapacityMW
}

// Add merges two flexible sources of the same type for region aggregation.
func (s FlexibleSource) Add(other FlexibleSource) (FlexibleSource, error) {
	if s.Type != other.Type {
		return FlexibleSource{}, fmt.Errorf("cannot add source %s to %s", other.Type, s.Type)
	}
	out := s
	out.CapacityMW += other.CapacityMW
	out.MinCapacityMW += other.MinCapacityMW
	return out, nil
}
