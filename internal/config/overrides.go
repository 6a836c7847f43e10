package config

import (
	"fmt"

	"grid-dispatch/internal/data"
	"grid-dispatch/internal/model"
)

// ApplyCoalSubsidy grants an operating subsidy to every coal-fired flexible
// source of the country, netted against variable costs in the objective.
func (p *Plan) ApplyCoalSubsidy(region model.Region, subsidyPerMWhEUR float64) error {
	country, ok := p.Countries[region]
	if !ok {
		return fmt.Errorf("country %s is not part of scenario %q", region, p.Name)
	}
	for i := range country.FlexibleSources {
		if country.FlexibleSources[i].Type.IsCoal() {
			country.FlexibleSources[i].SubsidyPerMWhEUR = subsidyPerMWhEUR
		}
	}
	return nil
}

// ReleaseCoalCapacity opens coal capacity to capex optimization by dropping
// its lower bound to zero, either in one country or across all of them.
func (p *Plan) ReleaseCoalCapacity(region model.Region) error {
	if region == "" {
		for _, country := range p.Countries {
			releaseCoal(country)
		}
		return nil
	}
	country, ok := p.Countries[region]
	if !ok {
		return fmt.Errorf("country %s is not part of scenario %q", region, p.Name)
	}
	releaseCoal(country)
	return nil
}

func releaseCoal(country *CountryPlan) {
	for i := range country.FlexibleSources {
		if country.FlexibleSources[i].Type.IsCoal() {
			country.FlexibleSources[i].MinCapacityMW = 0
		}
	}
}

// ApplyCapacitiesFromSummary fixes the country's source capacities to the
// values a previous run settled on, read from its long-form statistics CSV.
// Sources absent from the summary keep their library capacity.
func (p *Plan) ApplyCapacitiesFromSummary(path, scenario string, region model.Region) error {
	country, ok := p.Countries[region]
	if !ok {
		return fmt.Errorf("country %s is not part of scenario %q", region, p.Name)
	}
	capacitiesGW, err := data.LoadSummaryCapacities(path, scenario, region)
	if err != nil {
		return err
	}

	for t, source := range country.BasicSources {
		if gw, ok := capacitiesGW[string(t)]; ok {
			source.CapacityMW = gw * 1000
			source.MinCapacityMW = gw * 1000
			country.BasicSources[t] = source
			if flexible, ok := country.FlexibleBasic[t]; ok {
				flexible.Source = source
				country.FlexibleBasic[t] = flexible
			}
		}
	}
	for i := range country.FlexibleSources {
		if gw, ok := capacitiesGW[string(country.FlexibleSources[i].Type)]; ok {
			country.FlexibleSources[i].CapacityMW = gw * 1000
			country.FlexibleSources[i].MinCapacityMW = gw * 1000
		}
	}
	for i := range country.Storage {
		if gw, ok := capacitiesGW[string(country.Storage[i].Type)]; ok {
			country.Storage[i].CapacityMW = gw * 1000
			country.Storage[i].MinCapacityMW = gw * 1000
		}
	}
	return nil
}

// ApplyScenarioOverride renames the single configured scenario. It refuses
// to guess which scenario to rename when there are several.
func (c *Config) ApplyScenarioOverride(name string) error {
	if len(c.Scenarios) != 1 {
		return fmt.Errorf("scenario name override requires exactly one scenario, config has %d",
			len(c.Scenarios))
	}
	c.Scenarios[0].Name = name
	return nil
}
