// Package config declares the YAML shape of an analysis run and resolves
// scenarios against the built-in parameter library into model entities.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"grid-dispatch/internal/model"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Analysis  Analysis   `yaml:"analysis"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// Analysis holds run-wide settings shared by all scenarios.
type Analysis struct {
	Name       string `yaml:"name"`
	CommonYear int    `yaml:"common_year"`
	// Weather years to run each scenario under.
	PecdYears        []int                  `yaml:"pecd_years"`
	AggregationLevel model.AggregationLevel `yaml:"aggregation_level"`

	OptimizeCapex       bool `yaml:"optimize_capex"`
	OptimizeRampUpCosts bool `yaml:"optimize_ramp_up_costs"`
	// Solver name; empty selects the default fallback order.
	Solver                  string `yaml:"solver"`
	StoreModel              bool   `yaml:"store_model"`
	LoadPreviousSolution    bool   `yaml:"load_previous_solution"`
	TransmissionLossInPrice bool   `yaml:"transmission_loss_in_price"`

	Filter Filter `yaml:"filter"`

	DataDir   string `yaml:"data_dir"`
	OutputDir string `yaml:"output_dir"`
}

// Filter restricts which hours and countries enter the optimization.
type Filter struct {
	Countries []model.Region `yaml:"countries"`
	// Keep one week out of every N; zero keeps the whole year.
	WeekSampling int `yaml:"week_sampling"`
	// Explicit days to keep, "2018-06-11" style. Mutually exclusive
	// with WeekSampling.
	Days []string `yaml:"days"`
}

// Scenario configures one model run as adjustments on top of the parameter
// library defaults for its target year.
type Scenario struct {
	Name string `yaml:"name"`
	Year int    `yaml:"year"`
	// Input cost profile name; empty selects the default profile.
	InputCosts string `yaml:"input_costs"`
	// Replace the profile lignite price with the TYNDP per-country
	// prices wherever one is defined.
	TyndpLignitePrices bool                               `yaml:"tyndp_lignite_prices"`
	Countries          map[model.Region]CountryAdjustment `yaml:"countries"`
	// Reserve requirements per country, applied when the run enables
	// reserves.
	Reserves map[model.Region]ReservesAdjustment `yaml:"reserves"`
}

// CountryAdjustment overrides library defaults for one country. Pointer
// fields distinguish "not set" from an explicit zero, which phase-out
// scenarios need.
type CountryAdjustment struct {
	LoadFactor       *float64 `yaml:"load_factor"`
	AdditionalLoadMW *float64 `yaml:"additional_load_mw"`

	BasicSources    map[model.BasicSourceType]SourceAdjustment    `yaml:"basic_sources"`
	FlexibleSources map[model.FlexibleSourceType]SourceAdjustment `yaml:"flexible_sources"`
	Storage         map[model.StorageType]StorageAdjustment       `yaml:"storage"`
}

type SourceAdjustment struct {
	CapacityMW    *float64 `yaml:"capacity_mw"`
	MinCapacityMW *float64 `yaml:"min_capacity_mw"`
	// Operating subsidy netted against variable costs. Only meaningful
	// for flexible sources.
	SubsidyPerMWhEUR *float64 `yaml:"subsidy_eur_per_mwh"`
	// Cap on average utilization over the model horizon.
	MaxCapacityFactor *float64 `yaml:"max_capacity_factor"`
	MaxTotalTWh       *float64 `yaml:"max_total_twh"`
}

type StorageAdjustment struct {
	CapacityMW         *float64 `yaml:"capacity_mw"`
	CapacityMWCharging *float64 `yaml:"capacity_mw_charging"`
	MaxEnergyMWh       *float64 `yaml:"max_energy_mwh"`
}

type ReservesAdjustment struct {
	HydroCapacityReductionMW float64 `yaml:"hydro_capacity_reduction_mw"`
	AdditionalLoadMW         float64 `yaml:"additional_load_mw"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.CommonYear == 0 {
		c.Analysis.CommonYear = 2025
	}
	if c.Analysis.AggregationLevel == "" {
		c.Analysis.AggregationLevel = model.AggregationNone
	}
	if c.Analysis.DataDir == "" {
		c.Analysis.DataDir = "data"
	}
	if c.Analysis.OutputDir == "" {
		c.Analysis.OutputDir = "output"
	}
}

func (c *Config) Validate() error {
	if c.Analysis.Name == "" {
		return errors.New("analysis.name is required")
	}
	if len(c.Scenarios) == 0 {
		return errors.New("at least one scenario is required")
	}
	if len(c.Analysis.PecdYears) == 0 {
		return errors.New("analysis.pecd_years is required")
	}
	if c.Analysis.Filter.WeekSampling != 0 && len(c.Analysis.Filter.Days) > 0 {
		return errors.New("filter.week_sampling and filter.days are mutually exclusive")
	}
	seen := map[string]bool{}
	for _, scenario := range c.Scenarios {
		if scenario.Name == "" {
			return errors.New("scenario name is required")
		}
		if seen[scenario.Name] {
			return fmt.Errorf("duplicate scenario name %q", scenario.Name)
		}
		seen[scenario.Name] = true
		if scenario.Year == 0 {
			return fmt.Errorf("scenario %q: year is required", scenario.Name)
		}
		if scenario.InputCosts != "" {
			if _, err := InputCostsByName(scenario.InputCosts); err != nil {
				return fmt.Errorf("scenario %q: %w", scenario.Name, err)
			}
		}
	}
	return nil
}
