package config

import (
	"fmt"
	"sort"

	"grid-dispatch/internal/model"
)

// Plan is a fully resolved scenario: library defaults for the target year
// with the scenario adjustments merged in, expressed as model entities.
type Plan struct {
	Name       string
	Year       int
	InputCosts InputCosts

	Countries       map[model.Region]*CountryPlan
	Interconnectors model.Interconnectors
}

// CountryPlan is the resolved fleet and demand shape of one country.
type CountryPlan struct {
	LoadFactor       float64
	AdditionalLoadMW float64

	BasicSources    map[model.BasicSourceType]model.Source
	FlexibleBasic   map[model.BasicSourceType]model.FlexibleBasicSource
	FlexibleSources []model.FlexibleSource
	Storage         []model.Storage
	Reserves        *model.Reserves
}

// Maximum allowed annual capacity factors. Thermal plants do not run
// through outages and maintenance windows.
const (
	fossilMaxCapacityFactor    = 0.85
	bioenergyMaxCapacityFactor = 0.8
)

// Regions returns the modelled countries, sorted.
func (p *Plan) Regions() []model.Region {
	regions := make([]model.Region, 0, len(p.Countries))
	for region := range p.Countries {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}

// Resolve materializes the scenario for the given countries. An empty
// country list selects every country the library covers.
func (s Scenario) Resolve(countries []model.Region) (*Plan, error) {
	name := s.InputCosts
	if name == "" {
		name = defaultProfileFor(s.Year)
	}
	costs, err := InputCostsByName(name)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	if len(countries) == 0 {
		countries = LibraryRegions()
	}

	plan := &Plan{
		Name:       s.Name,
		Year:       s.Year,
		InputCosts: costs,
		Countries:  map[model.Region]*CountryPlan{},
	}
	for _, region := range countries {
		country, err := resolveCountry(region, s, costs)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		plan.Countries[region] = country
	}

	links, err := libraryInterconnectors(s.Year)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	modelled := map[model.Region]bool{}
	for region := range plan.Countries {
		modelled[region] = true
	}
	plan.Interconnectors = links.Prune(modelled)

	return plan, nil
}

func resolveCountry(region model.Region, s Scenario, costs InputCosts) (*CountryPlan, error) {
	defaults, err := libraryDefaults(region, s.Year)
	if err != nil {
		return nil, err
	}
	adjustment := s.Countries[region]

	if s.TyndpLignitePrices {
		if price, ok := TyndpLignitePrice(region); ok {
			costs.LignitePerMWhEUR = price
		}
	}

	country := &CountryPlan{
		LoadFactor:    defaults.LoadFactor,
		BasicSources:  map[model.BasicSourceType]model.Source{},
		FlexibleBasic: map[model.BasicSourceType]model.FlexibleBasicSource{},
	}
	if adjustment.LoadFactor != nil {
		country.LoadFactor = *adjustment.LoadFactor
	}
	if adjustment.AdditionalLoadMW != nil {
		country.AdditionalLoadMW = *adjustment.AdditionalLoadMW
	}

	if err := resolveBasicSources(country, defaults, adjustment); err != nil {
		return nil, fmt.Errorf("country %s: %w", region, err)
	}
	if err := resolveFlexibleSources(country, defaults, adjustment, costs); err != nil {
		return nil, fmt.Errorf("country %s: %w", region, err)
	}
	if err := resolveStorage(country, defaults, adjustment); err != nil {
		return nil, fmt.Errorf("country %s: %w", region, err)
	}

	if reserves, ok := s.Reserves[region]; ok {
		country.Reserves = &model.Reserves{
			HydroCapacityReductionMW: reserves.HydroCapacityReductionMW,
			AdditionalLoadMW:         reserves.AdditionalLoadMW,
		}
	}
	return country, nil
}

func resolveBasicSources(country *CountryPlan, defaults countryDefaults,
	adjustment CountryAdjustment) error {
	types := map[model.BasicSourceType]bool{}
	for t := range defaults.Basic {
		types[t] = true
	}
	for t, adj := range adjustment.BasicSources {
		// An economics-only adjustment of an absent source is ignored,
		// in line with how capacity adjustments merge everywhere else.
		if types[t] || adj.CapacityMW != nil {
			types[t] = true
		}
	}

	for t := range types {
		capacity := defaults.Basic[t]
		minCapacity := capacity
		if adj, ok := adjustment.BasicSources[t]; ok {
			if adj.CapacityMW != nil {
				capacity = *adj.CapacityMW
				minCapacity = capacity
			}
			if adj.MinCapacityMW != nil {
				minCapacity = *adj.MinCapacityMW
			}
		}
		source := NewBasicSource(t, capacity, minCapacity)
		if err := source.Validate(); err != nil {
			return err
		}

		if t == model.Nuclear && defaults.NuclearFlexibilityMW > 0 {
			country.FlexibleBasic[t] = model.FlexibleBasicSource{
				Source:             source,
				MaxDecreaseMW:      defaults.NuclearFlexibilityMW,
				MinProductionMW:    nuclearMinOutputRatio * capacity,
				RampRate:           nuclearRampRate,
				RampUpCostPerMWEUR: nuclearRampUpCostPerMWEUR,
			}
		}
		country.BasicSources[t] = source
	}
	return nil
}

func resolveFlexibleSources(country *CountryPlan, defaults countryDefaults,
	adjustment CountryAdjustment, costs InputCosts) error {
	types := map[model.FlexibleSourceType]bool{}
	for t := range defaults.Flexible {
		types[t] = true
	}
	for t, adj := range adjustment.FlexibleSources {
		if types[t] || adj.CapacityMW != nil {
			types[t] = true
		}
	}

	ordered := make([]model.FlexibleSourceType, 0, len(types))
	for t := range types {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, t := range ordered {
		capacity := defaults.Flexible[t]
		minCapacity := capacity
		adj, adjusted := adjustment.FlexibleSources[t]
		if adjusted {
			if adj.CapacityMW != nil {
				capacity = *adj.CapacityMW
				minCapacity = capacity
			}
			if adj.MinCapacityMW != nil {
				minCapacity = *adj.MinCapacityMW
			}
		}
		source, err := NewFlexibleSource(t, costs, capacity, minCapacity)
		if err != nil {
			return err
		}
		source.Constraint = defaultProductionConstraint(t)
		if adjusted {
			if adj.SubsidyPerMWhEUR != nil {
				source.SubsidyPerMWhEUR = *adj.SubsidyPerMWhEUR
			}
			if adj.MaxCapacityFactor != nil {
				source.Constraint = &model.ProductionConstraint{
					MaxCapacityFactor: *adj.MaxCapacityFactor,
				}
			}
			if adj.MaxTotalTWh != nil {
				source.Constraint = &model.ProductionConstraint{MaxTotalTWh: *adj.MaxTotalTWh}
			}
		}
		if err := source.Validate(); err != nil {
			return err
		}
		country.FlexibleSources = append(country.FlexibleSources, source)
	}

	// Unserved energy shows up as an explicit, expensive virtual source
	// instead of making the problem infeasible.
	lossOfLoad, err := NewFlexibleSource(model.LossOfLoad, costs, lossOfLoadCapacityMW, 0)
	if err != nil {
		return err
	}
	country.FlexibleSources = append(country.FlexibleSources, lossOfLoad)
	return nil
}

func defaultProductionConstraint(t model.FlexibleSourceType) *model.ProductionConstraint {
	switch {
	case t.IsCoal(), t == model.GasCCGT, t == model.GasOCGT, t == model.GasCHP:
		return &model.ProductionConstraint{MaxCapacityFactor: fossilMaxCapacityFactor}
	case t == model.Biomass:
		return &model.ProductionConstraint{MaxCapacityFactor: bioenergyMaxCapacityFactor}
	}
	return nil
}

func resolveStorage(country *CountryPlan, defaults countryDefaults,
	adjustment CountryAdjustment) error {
	for _, params := range defaults.Storage {
		storage := NewStorage(params.Type,
			params.DischargingMW, params.ChargingMW, params.MaxEnergyMWh)
		if adj, ok := adjustment.Storage[params.Type]; ok {
			if adj.CapacityMW != nil {
				storage.CapacityMW = *adj.CapacityMW
				storage.MinCapacityMW = *adj.CapacityMW
				// Charging tracks discharging unless set on its own.
				if adj.CapacityMWCharging == nil && storage.CapacityMWCharging > 0 {
					storage.CapacityMWCharging = *adj.CapacityMW
					storage.MinCapacityMWCharging = *adj.CapacityMW
				}
			}
			if adj.CapacityMWCharging != nil {
				storage.CapacityMWCharging = *adj.CapacityMWCharging
				storage.MinCapacityMWCharging = *adj.CapacityMWCharging
			}
			if adj.MaxEnergyMWh != nil {
				scaleStorageEnergy(&storage, *adj.MaxEnergyMWh)
			}
		}
		if err := storage.Validate(); err != nil {
			return fmt.Errorf("storage %s: %w", params.Type, err)
		}
		country.Storage = append(country.Storage, storage)
	}
	return nil
}

// scaleStorageEnergy moves the volume-derived state targets along with the
// new volume so that e.g. a doubled battery still starts half full.
func scaleStorageEnergy(storage *model.Storage, maxEnergyMWh float64) {
	ratio := 0.0
	if storage.MaxEnergyMWh > 0 {
		ratio = maxEnergyMWh / storage.MaxEnergyMWh
	}
	storage.MaxEnergyMWh = maxEnergyMWh
	storage.InitialEnergyMWh *= ratio
	storage.FinalEnergyMWh *= ratio
	storage.MinFinalEnergyMWh *= ratio
	if storage.MidnightEnergyMWh > 0 {
		storage.MidnightEnergyMWh *= ratio
	}
}
