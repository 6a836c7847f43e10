// Package analysis compares finished sweep runs: it condenses the long
// summary statistics into per-scenario totals and ranks them by total
// system cost.
package analysis

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"grid-dispatch/internal/data"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// LoadSummaries reads one or more long-form statistics CSVs and
// concatenates their rows.
func LoadSummaries(paths ...string) ([]grid.StatRow, error) {
	var rows []grid.StatRow
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		fileRows, err := data.ReadSummary(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

// ScenarioSummary condenses one scenario run across all its regions.
type ScenarioSummary struct {
	Name string

	// Annualized investment plus operating costs over all sources.
	TotalCostsBnEUR float64
	CapexMnEUR      float64
	OpexMnEUR       float64

	EmissionsMtCO2 float64
	CoalTWh        float64
	CurtailmentTWh float64
	LoadTWh        float64

	// Load-weighted average consumer price over the regions.
	AvgPriceEURPerMWh float64
}

// Summarize groups year-round stat rows by scenario and totals them across
// regions.
func Summarize(rows []grid.StatRow) []ScenarioSummary {
	order := []string{}
	byName := map[string]*ScenarioSummary{}
	priceWeight := map[string]float64{}

	for _, row := range rows {
		if row.Season != grid.SeasonYear {
			continue
		}
		summary, ok := byName[row.Name]
		if !ok {
			summary = &ScenarioSummary{Name: row.Name}
			byName[row.Name] = summary
			order = append(order, row.Name)
		}

		switch {
		case row.Stat == grid.StatCapexMnEURPerYear:
			summary.CapexMnEUR += row.Val
		case row.Stat == grid.StatOpexMnEUR:
			summary.OpexMnEUR += row.Val
		case row.Stat == grid.StatEmissionsMtCO2 && row.Source == grid.SourceTotal:
			summary.EmissionsMtCO2 += row.Val
		case row.Stat == grid.StatCurtailmentTWh && row.Source == grid.SourceTotal:
			summary.CurtailmentTWh += row.Val
		case row.Stat == grid.StatLoadTWh && row.Source == grid.SourceTotal:
			summary.LoadTWh += row.Val
		case row.Stat == grid.StatProductionTWh &&
			model.FlexibleSourceType(row.Source).IsCoal():
			summary.CoalTWh += row.Val
		case row.Stat == grid.StatAvgConsumerPrice && row.Source == grid.SourceTotal:
			// Weight region prices by their load.
			load := regionLoad(rows, row.Name, row.Region)
			summary.AvgPriceEURPerMWh += row.Val * load
			priceWeight[row.Name] += load
		}
	}

	out := make([]ScenarioSummary, 0, len(order))
	for _, name := range order {
		summary := byName[name]
		if weight := priceWeight[name]; weight > 0 {
			summary.AvgPriceEURPerMWh /= weight
		}
		summary.TotalCostsBnEUR = (summary.CapexMnEUR + summary.OpexMnEUR) / 1000
		out = append(out, *summary)
	}
	return out
}

func regionLoad(rows []grid.StatRow, name string, region model.Region) float64 {
	for _, row := range rows {
		if row.Name == name && row.Region == region &&
			row.Season == grid.SeasonYear &&
			row.Source == grid.SourceTotal && row.Stat == grid.StatLoadTWh {
			return row.Val
		}
	}
	return 0
}

// Rank sorts summaries by total system cost, cheapest first.
func Rank(summaries []ScenarioSummary) []ScenarioSummary {
	out := make([]ScenarioSummary, len(summaries))
	copy(out, summaries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalCostsBnEUR < out[j].TotalCostsBnEUR
	})
	return out
}

// RenderTable prints the comparison table of ranked scenarios.
func RenderTable(w io.Writer, summaries []ScenarioSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Scenario", "Total bn EUR", "Capex mn EUR", "Opex mn EUR",
		"CO2 Mt", "Coal TWh", "Curtailed TWh", "Avg price EUR/MWh",
	})
	table.SetBorder(false)
	for _, s := range summaries {
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%.2f", s.TotalCostsBnEUR),
			fmt.Sprintf("%.0f", s.CapexMnEUR),
			fmt.Sprintf("%.0f", s.OpexMnEUR),
			fmt.Sprintf("%.2f", s.EmissionsMtCO2),
			fmt.Sprintf("%.2f", s.CoalTWh),
			fmt.Sprintf("%.2f", s.CurtailmentTWh),
			fmt.Sprintf("%.1f", s.AvgPriceEURPerMWh),
		})
	}
	table.Render()
}
