package model

// BasicSourceType identifies a source driven by a fixed hourly production
// curve (weather- or schedule-determined rather than dispatched).
type BasicSourceType string

const (
	Hydro    BasicSourceType = "hydro"
	Nuclear  BasicSourceType = "nuclear"
	Onshore  BasicSourceType = "onshore"
	Offshore BasicSourceType = "offshore"
	Solar    BasicSourceType = "solar"
	// Wind is the aggregate of onshore and offshore, used only in outputs.
	Wind BasicSourceType = "wind"
)

func (t BasicSourceType) IsWind() bool {
	return t == Onshore || t == Offshore || t == Wind
}

// IsVariableRenewable reports whether the source is weather-dependent and
// can be curtailed at will.
func (t BasicSourceType) IsVariableRenewable() bool {
	return t.IsWind() || t == Solar
}

// FlexibleSourceType identifies a dispatchable source whose hourly output is
// a decision variable of the optimization.
type FlexibleSourceType string

const (
	CoalHard        FlexibleSourceType = "coal"
	Lignite         FlexibleSourceType = "lignite"
	LigniteBackpres FlexibleSourceType = "lignite-bp"
	GasCCGT         FlexibleSourceType = "ccgt"
	GasOCGT         FlexibleSourceType = "ocgt"
	GasCHP          FlexibleSourceType = "gas-chp"
	Biomass         FlexibleSourceType = "biomass"
	// Loss of load, modelled as a virtual source with a very high variable
	// cost so that unserved energy shows up explicitly in the solution.
	LossOfLoad FlexibleSourceType = "loss-of-load"
)

// CoalTypes lists the flexible source types affected by coal phase-out
// scenarios and coal operating subsidies.
var CoalTypes = []FlexibleSourceType{CoalHard, Lignite, LigniteBackpres}

func (t FlexibleSourceType) IsCoal() bool {
	for _, c := range CoalTypes {
		if t == c {
			return true
		}
	}
	return false
}
