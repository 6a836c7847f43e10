package model

import "errors"

// OutflowCapacityCostEURPerMWh is paid by the exporting side for the use of
// interconnection capacity in the European market.
const OutflowCapacityCostEURPerMWh = 1.0

// Interconnector is one directed transmission link between two regions.
type Interconnector struct {
	CapacityMW float64
	// Fraction of the transmitted energy lost on the way.
	Loss float64
}

func (i Interconnector) Validate() error {
	if i.CapacityMW < 0 {
		return errors.New("CapacityMW must be >= 0")
	}
	if i.Loss < 0 || i.Loss >= 1 {
		return errors.New("Loss must be in [0, 1)")
	}
	return nil
}

// Interconnectors holds the directed links of the model.
type Interconnectors struct {
	FromTo map[Region]map[Region]Interconnector
}

func NewInterconnectors() Interconnectors {
	return Interconnectors{FromTo: map[Region]map[Region]Interconnector{}}
}

// Set adds or replaces the link from one region to another.
func (ic *Interconnectors) Set(from, to Region, link Interconnector) {
	if ic.FromTo == nil {
		ic.FromTo = map[Region]map[Region]Interconnector{}
	}
	if ic.FromTo[from] == nil {
		ic.FromTo[from] = map[Region]Interconnector{}
	}
	ic.FromTo[from][to] = link
}

// ConnectionsFrom returns all links leaving the region.
func (ic Interconnectors) ConnectionsFrom(from Region) map[Region]Interconnector {
	return ic.FromTo[from]
}

// ConnectionsTo returns all links entering the region.
func (ic Interconnectors) ConnectionsTo(to Region) map[Region]Interconnector {
	out := map[Region]Interconnector{}
	for from, targets := range ic.FromTo {
		if link, ok := targets[to]; ok {
			out[from] = link
		}
	}
	return out
}

// Prune drops links whose endpoints are not both in the modelled region set
// and merges parallel links that aggregation maps onto the same pair.
func (ic Interconnectors) Prune(modelled map[Region]bool) Interconnectors {
	out := NewInterconnectors()
	for from, targets := range ic.FromTo {
		if !modelled[from] {
			continue
		}
		for to, link := range targets {
			if !modelled[to] || from == to {
				continue
			}
			if existing, ok := out.FromTo[from][to]; ok {
				link.CapacityMW += existing.CapacityMW
				if existing.Loss > link.Loss {
					link.Loss = existing.Loss
				}
			}
			out.Set(from, to, link)
		}
	}
	return out
}

// Aggregate maps every endpoint through the aggregation level, merging links
// inside one aggregate away and summing parallel cross-border capacities.
func (ic Interconnectors) Aggregate(level AggregationLevel) Interconnectors {
	out := NewInterconnectors()
	for from, targets := range ic.FromTo {
		aggFrom := AggregateFor(level, from)
		for to, link := range targets {
			aggTo := AggregateFor(level, to)
			if aggFrom == aggTo {
				continue
			}
			if existing, ok := out.FromTo[aggFrom][aggTo]; ok {
				link.CapacityMW += existing.CapacityMW
				if existing.Loss > link.Loss {
					link.Loss = existing.Loss
				}
			}
			out.Set(aggFrom, aggTo, link)
		}
	}
	return out
}

func (ic Interconnectors) Validate() error {
	for _, targets := range ic.FromTo {
		for _, link := range targets {
			if err := link.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
