package model

import (
	"errors"
	"fmt"
)

// Source describes a basic source: installed capacity plus economics. Hourly
// production follows a fixed curve scaled by the installed factor chosen by
// the optimization (between MinCapacityMW/CapacityMW and 1).
type Source struct {
	Type BasicSourceType
	// The default installed capacity, may be decreased by capacity
	// optimization down to MinCapacityMW.
	CapacityMW    float64
	MinCapacityMW float64
	// Renewable per the EU classification, only used in statistics.
	Renewable bool
	// Virtual sources (e.g. loss of load) help meet constraints but are
	// excluded from plots and summary production stats.
	Virtual bool
	// Carbon intensity, used for statistics and variable cost composition.
	CO2TPerMWh float64
	Economics  Economics
}

func (s Source) Validate() error {
	if s.CapacityMW < 0 {
		return errors.New("CapacityMW must be >= 0")
	}
	if s.MinCapacityMW < 0 || s.MinCapacityMW > s.CapacityMW {
		return errors.New("MinCapacityMW must satisfy 0 <= MinCapacityMW <= CapacityMW")
	}
	if s.CO2TPerMWh < 0 {
		return errors.New("CO2TPerMWh must be >= 0")
	}
	if err := s.Economics.Validate(); err != nil {
		return fmt.Errorf("economics for %s: %w", s.Type, err)
	}
	return nil
}

// Add merges two sources of the same type for region aggregation. Capacities
// sum; cost parameters are taken from the receiver (they are expected to
// match within one scenario).
func (s Source) Add(other Source) (Source, error) {
	if s.Type != other.Type {
		return Source{}, fmt.Errorf("cannot add source %s to %s", other.Type, s.Type)
	}
	out := s
	out.CapacityMW += other.CapacityMW
	out.MinCapacityMW += other.MinCapacityMW
	return out, nil
}

// FlexibleBasicSource is a basic source whose production may additionally be
// decreased below its fixed curve, within limits. This models coal and
// nuclear plants that follow a historical schedule but may be turned down.
type FlexibleBasicSource struct {
	Source

	// Maximum decrease below the fixed curve, scaled by the current output
	// ratio of the fixed curve (a fleet at 50 % output can only shed half of
	// its nominal flexibility).
	MaxDecreaseMW float64
	// Floor below which production never sinks unless the fixed curve itself
	// is lower.
	MinProductionMW float64
	// Hourly ramp limit as a fraction of CapacityMW.
	RampRate float64
	// Fixed cost of increasing output by 1 MW.
	RampUpCostPerMWEUR float64
}

// TrulyFlexible reports whether the source has any room to deviate from its
// fixed curve, i.e. whether it needs decision variables at all.
func (s FlexibleBasicSource) TrulyFlexible() bool {
	return s.MaxDecreaseMW > 0 && s.MinProductionMW < s.CapacityMW
}

func (s FlexibleBasicSource) Validate() error {
	if err := s.Source.Validate(); err != nil {
		return err
	}
	if s.MaxDecreaseMW < 0 {
		return errors.New("MaxDecreaseMW must be >= 0")
	}
	if s.MinProductionMW < 0 {
		return errors.New("MinProductionMW must be >= 0")
	}
	if s.RampRate <= 0 || s.RampRate > 1 {
		return errors.New("RampRate must be in (0, 1]")
	}
	return nil
}

// MaxRampMW is the absolute hourly ramp limit.
func (s FlexibleBasicSource) MaxRampMW() float64 {
	return s.RampRate * s.CapacityMW
}
