package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-dispatch/internal/model"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
analysis:
  name: coal-phase-out
  pecd_years: [2009]
scenarios:
  - name: baseline
    year: 2025
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2025, c.Analysis.CommonYear)
	assert.Equal(t, model.AggregationNone, c.Analysis.AggregationLevel)
	assert.Equal(t, "data", c.Analysis.DataDir)
	assert.Equal(t, "output", c.Analysis.OutputDir)
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := map[string]string{
		"missing name": `
analysis:
  pecd_years: [2009]
scenarios:
  - name: baseline
    year: 2025
`,
		"missing pecd years": `
analysis:
  name: x
scenarios:
  - name: baseline
    year: 2025
`,
		"duplicate scenario": `
analysis:
  name: x
  pecd_years: [2009]
scenarios:
  - name: baseline
    year: 2025
  - name: baseline
    year: 2025
`,
		"unknown input costs": `
analysis:
  name: x
  pecd_years: [2009]
scenarios:
  - name: baseline
    year: 2025
    input_costs: "2050"
`,
		"conflicting filters": `
analysis:
  name: x
  pecd_years: [2009]
  filter:
    week_sampling: 4
    days: ["2025-06-11"]
scenarios:
  - name: baseline
    year: 2025
`,
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, yaml))
			assert.Error(t, err)
		})
	}
}

func TestInputCostsByName(t *testing.T) {
	costs, err := InputCostsByName("2025")
	require.NoError(t, err)
	assert.Equal(t, 100.0, costs.EmissionPricePerTEUR)

	cheap, err := InputCostsByName("2025-cheap-ets")
	require.NoError(t, err)
	assert.Equal(t, 60.0, cheap.EmissionPricePerTEUR)

	_, err = InputCostsByName("1999")
	assert.ErrorContains(t, err, "1999")
}

func TestNewFlexibleSourceVariableCosts(t *testing.T) {
	costs, err := InputCostsByName("2025")
	require.NoError(t, err)

	ccgt, err := NewFlexibleSource(model.GasCCGT, costs, 1000, 1000)
	require.NoError(t, err)
	// Fuel per MWh electric, CO2 and variable O&M.
	expected := costs.FossilGasPerMWhEUR/0.56 + 0.37*costs.EmissionPricePerTEUR + 2
	assert.InDelta(t, expected, ccgt.Economics.VariableCostsPerMWhEUR, 1e-9)
	assert.False(t, ccgt.Virtual)

	lol, err := NewFlexibleSource(model.LossOfLoad, costs, 100, 0)
	require.NoError(t, err)
	assert.True(t, lol.Virtual)
	assert.Equal(t, 10_000.0, lol.Economics.VariableCostsPerMWhEUR)
}

func TestResolveBaseline(t *testing.T) {
	s := Scenario{Name: "baseline", Year: 2025}
	plan, err := s.Resolve([]model.Region{model.Czechia, model.Germany})
	require.NoError(t, err)

	require.Len(t, plan.Countries, 2)
	cz := plan.Countries[model.Czechia]
	require.NotNil(t, cz)

	assert.Equal(t, 0.9, cz.LoadFactor)
	assert.Equal(t, 3500.0, cz.BasicSources[model.Solar].CapacityMW)

	// Nuclear carries its flexibility band.
	nuclear, ok := cz.FlexibleBasic[model.Nuclear]
	require.True(t, ok)
	assert.Equal(t, 140.0, nuclear.MaxDecreaseMW)

	// Every country gets the virtual loss-of-load source last.
	last := cz.FlexibleSources[len(cz.FlexibleSources)-1]
	assert.Equal(t, model.LossOfLoad, last.Type)
	assert.True(t, last.Virtual)

	// Coal runs under a utilization cap.
	for _, source := range cz.FlexibleSources {
		if source.Type.IsCoal() {
			require.NotNil(t, source.Constraint)
			assert.Equal(t, 0.85, source.Constraint.MaxCapacityFactor)
		}
	}

	// Links between the two modelled countries survive pruning.
	assert.NotEmpty(t, plan.Interconnectors.ConnectionsFrom(model.Czechia))
	link := plan.Interconnectors.ConnectionsFrom(model.Czechia)[model.Germany]
	assert.Equal(t, 2100.0, link.CapacityMW)
	assert.Equal(t, 0.02, link.Loss)
}

func TestResolveAppliesAdjustments(t *testing.T) {
	zero := 0.0
	subsidy := 30.0
	energy := 90.0
	s := Scenario{
		Name: "phase-out",
		Year: 2025,
		Countries: map[model.Region]CountryAdjustment{
			model.Czechia: {
				FlexibleSources: map[model.FlexibleSourceType]SourceAdjustment{
					model.Lignite:  {CapacityMW: &zero},
					model.CoalHard: {SubsidyPerMWhEUR: &subsidy},
				},
				Storage: map[model.StorageType]StorageAdjustment{
					model.StorageLiIon: {MaxEnergyMWh: &energy},
				},
			},
		},
	}
	plan, err := s.Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)
	cz := plan.Countries[model.Czechia]

	var lignite, coal model.FlexibleSource
	for _, source := range cz.FlexibleSources {
		switch source.Type {
		case model.Lignite:
			lignite = source
		case model.CoalHard:
			coal = source
		}
	}
	// An explicit zero shuts the fleet down even though the library has
	// capacity for it.
	assert.Equal(t, 0.0, lignite.CapacityMW)
	assert.Equal(t, 0.0, lignite.MinCapacityMW)
	assert.Equal(t, 30.0, coal.SubsidyPerMWhEUR)
	assert.Less(t, coal.VariableCostsPerMWhEUR(), coal.Economics.VariableCostsPerMWhEUR)

	for _, storage := range cz.Storage {
		if storage.Type == model.StorageLiIon {
			assert.Equal(t, 90.0, storage.MaxEnergyMWh)
			// Volume-derived targets move with the volume.
			assert.Equal(t, 45.0, storage.MidnightEnergyMWh)
		}
	}
}

func TestResolveUnknownCountry(t *testing.T) {
	s := Scenario{Name: "baseline", Year: 2025}
	_, err := s.Resolve([]model.Region{model.France})
	assert.ErrorContains(t, err, "FR")
}

func TestResolveYearFallback(t *testing.T) {
	s := Scenario{Name: "future", Year: 2032}
	plan, err := s.Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)
	// 2032 falls back to the 2030 fleet.
	assert.Equal(t, 10_100.0, plan.Countries[model.Czechia].BasicSources[model.Solar].CapacityMW)

	early := Scenario{Name: "past", Year: 2020}
	_, err = early.Resolve([]model.Region{model.Czechia})
	assert.Error(t, err)
}

func TestResolveTyndpLignitePrices(t *testing.T) {
	plain := Scenario{Name: "baseline", Year: 2030}
	tyndp := Scenario{Name: "baseline", Year: 2030, TyndpLignitePrices: true}

	lignite := func(s Scenario) model.FlexibleSource {
		plan, err := s.Resolve([]model.Region{model.Czechia})
		require.NoError(t, err)
		for _, source := range plan.Countries[model.Czechia].FlexibleSources {
			if source.Type == model.Lignite {
				return source
			}
		}
		t.Fatal("no lignite source resolved")
		return model.FlexibleSource{}
	}

	before := lignite(plain)
	after := lignite(tyndp)
	// The 2030 profile prices lignite at 10, TYNDP at 5.04 for CZ, and
	// the plant converts fuel at 40 % efficiency.
	assert.InDelta(t, (10-5.04)/0.40,
		before.Economics.VariableCostsPerMWhEUR-after.Economics.VariableCostsPerMWhEUR, 1e-9)

	price, ok := TyndpLignitePrice(model.Czechia)
	require.True(t, ok)
	assert.Equal(t, 5.04, price)
	_, ok = TyndpLignitePrice(model.France)
	assert.False(t, ok)
}

func TestApplyCoalSubsidyAndRelease(t *testing.T) {
	s := Scenario{Name: "baseline", Year: 2025}
	plan, err := s.Resolve([]model.Region{model.Czechia})
	require.NoError(t, err)

	require.NoError(t, plan.ApplyCoalSubsidy(model.Czechia, 25))
	require.NoError(t, plan.ReleaseCoalCapacity(model.Czechia))
	for _, source := range plan.Countries[model.Czechia].FlexibleSources {
		if source.Type.IsCoal() {
			assert.Equal(t, 25.0, source.SubsidyPerMWhEUR)
			assert.Equal(t, 0.0, source.MinCapacityMW)
		} else {
			assert.Equal(t, 0.0, source.SubsidyPerMWhEUR)
		}
	}

	assert.Error(t, plan.ApplyCoalSubsidy(model.Germany, 25))
}

func TestApplyScenarioOverride(t *testing.T) {
	c := &Config{Scenarios: []Scenario{{Name: "a", Year: 2025}}}
	require.NoError(t, c.ApplyScenarioOverride("renamed"))
	assert.Equal(t, "renamed", c.Scenarios[0].Name)

	c.Scenarios = append(c.Scenarios, Scenario{Name: "b", Year: 2025})
	assert.Error(t, c.ApplyScenarioOverride("again"))
}
