package models

import "time"

// AnalysisInfo describes one analysis directory in the output tree.
type AnalysisInfo struct {
	Name       string `json:"name"`
	Runs       int    `json:"runs"`
	HasSummary bool   `json:"has_summary"`
}

// RunInfo describes one finished run within an analysis.
type RunInfo struct {
	Name    string   `json:"name"`
	Regions []string `json:"regions"`
	// HasModel reports whether the run stored its problem as model.lp.
	HasModel bool `json:"has_model"`
}

// StatRow is one record of the long-form summary statistics.
type StatRow struct {
	Name   string  `json:"name"`
	Region string  `json:"region"`
	Season string  `json:"season"`
	Source string  `json:"source"`
	Stat   string  `json:"stat"`
	Val    float64 `json:"val"`
}

// Ranking is one row of the scenario comparison, cheapest first.
type Ranking struct {
	Rank              int     `json:"rank"`
	Name              string  `json:"name"`
	TotalCostsBnEUR   float64 `json:"total_costs_bn_eur"`
	CapexMnEUR        float64 `json:"capex_mn_eur"`
	OpexMnEUR         float64 `json:"opex_mn_eur"`
	EmissionsMtCO2    float64 `json:"emissions_mt_co2"`
	CoalTWh           float64 `json:"coal_twh"`
	CurtailmentTWh    float64 `json:"curtailment_twh"`
	AvgPriceEURPerMWh float64 `json:"avg_price_eur_per_mwh"`
}

// SeriesResponse carries a slice of the hourly columns of one region.
type SeriesResponse struct {
	Region  string               `json:"region"`
	Index   []time.Time          `json:"index"`
	Columns map[string][]float64 `json:"columns"`
}

// ScenarioInfo describes one configured scenario.
type ScenarioInfo struct {
	Name       string   `json:"name"`
	Year       int      `json:"year"`
	InputCosts string   `json:"input_costs,omitempty"`
	Countries  []string `json:"countries,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
