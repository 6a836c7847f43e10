package model

import "fmt"

// Region identifies a modelled part of the European grid. It is either a
// Zone (an atomic bidding zone / control area / country with its own hourly
// data) or an AggregateRegion (a union of zones modelled as one node).
type Region string

// Zones with hourly data. Codes follow the ENTSO-E bidding zone convention.
const (
	Austria     Region = "AT"
	Belgium     Region = "BE"
	Bulgaria    Region = "BG"
	Croatia     Region = "HR"
	Czechia     Region = "CZ"
	Denmark     Region = "DK"
	Estonia     Region = "EE"
	Finland     Region = "FI"
	France      Region = "FR"
	Germany     Region = "DE"
	Greece      Region = "GR"
	Hungary     Region = "HU"
	Ireland     Region = "IE"
	Italy       Region = "IT"
	Latvia      Region = "LV"
	Lithuania   Region = "LT"
	Luxembourg  Region = "LU"
	Netherlands Region = "NL"
	Poland      Region = "PL"
	Portugal    Region = "PT"
	Romania     Region = "RO"
	Slovakia    Region = "SK"
	Slovenia    Region = "SI"
	Spain       Region = "ES"
	Sweden      Region = "SE"

	GreatBritain Region = "GB"
	Norway       Region = "NO"
	Switzerland  Region = "CH"

	Albania           Region = "AL"
	BosniaHerzegovina Region = "BA"
	Montenegro        Region = "ME"
	NorthMacedonia    Region = "MK"
	Serbia            Region = "RS"
	Ukraine           Region = "UA"
)

// Aggregate regions used to coarsen the model outside the area of interest.
const (
	Nordics       Region = "Nord"
	West          Region = "West"
	South         Region = "South"
	Balkans       Region = "Balk"
	BritishIsles  Region = "Brit"
	Iberia        Region = "Iber"
	Baltics       Region = "Balt"
	Scandinavia   Region = "Scand"
	Benelux       Region = "Bnl"
	CentralBalkan Region = "C_Ba"
)

var aggregateZones = map[Region][]Region{
	Nordics:       {Denmark, Sweden, Finland, Norway, Estonia, Latvia, Lithuania},
	West:          {France, Luxembourg, Netherlands, Belgium, Switzerland},
	South:         {Italy, Slovenia, Croatia},
	Balkans:       {Hungary, Romania, Bulgaria, Serbia, BosniaHerzegovina, Montenegro, NorthMacedonia, Greece},
	BritishIsles:  {GreatBritain, Ireland},
	Iberia:        {Spain, Portugal},
	Baltics:       {Estonia, Latvia, Lithuania},
	Scandinavia:   {Sweden, Finland, Norway, Denmark},
	Benelux:       {Belgium, Netherlands, Luxembourg},
	CentralBalkan: {Serbia, BosniaHerzegovina},
}

// IsAggregate reports whether the region is a known aggregate (as opposed to
// an atomic zone).
func (r Region) IsAggregate() bool {
	_, ok := aggregateZones[r]
	return ok
}

// AggregatedZones returns the atomic zones that make up an aggregate region.
func AggregatedZones(r Region) ([]Region, error) {
	zones, ok := aggregateZones[r]
	if !ok {
		return nil, fmt.Errorf("unknown aggregate region %q", r)
	}
	out := make([]Region, len(zones))
	copy(out, zones)
	return out, nil
}

// AggregationLevel selects how far countries outside the focus region get
// merged into aggregate nodes.
type AggregationLevel string

const (
	AggregationNone   AggregationLevel = "none"
	AggregationCoarse AggregationLevel = "coarse"
	AggregationFine   AggregationLevel = "fine"
)

var aggregationGroups = map[AggregationLevel][]Region{
	// Everything far from central Europe collapses into four nodes.
	AggregationCoarse: {Nordics, West, South, Balkans, BritishIsles, Iberia},
	// Finer split keeps the immediate electrical neighbourhood separate.
	AggregationFine: {Baltics, Scandinavia, Benelux, BritishIsles, Iberia, CentralBalkan},
}

// AggregateFor returns the aggregate node a zone belongs to at the given
// level, or the zone itself when it is not aggregated at that level.
func AggregateFor(level AggregationLevel, zone Region) Region {
	groups, ok := aggregationGroups[level]
	if !ok {
		return zone
	}
	for _, agg := range groups {
		for _, z := range aggregateZones[agg] {
			if z == zone {
				return agg
			}
		}
	}
	return zone
}

// JoinRegions names the aggregate produced by summing grids, e.g. "CZ - SK".
func JoinRegions(a, b Region) Region {
	return Region(string(a) + " - " + string(b))
}
