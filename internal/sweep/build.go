// Package sweep turns resolved scenarios into country grids and drives
// batches of dispatch runs over scenarios, weather years and subsidy levels.
package sweep

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"grid-dispatch/internal/config"
	"grid-dispatch/internal/data"
	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// Builder materializes the hourly grids of one resolved scenario under one
// weather year.
type Builder struct {
	Loader      *data.PecdLoader
	CommonYear  int
	Filter      config.Filter
	Aggregation model.AggregationLevel
	Logger      *slog.Logger
}

// Grids is the dispatch-ready form of a plan under one weather year.
type Grids struct {
	Grids           map[model.Region]*grid.CountryGrid
	Interconnectors model.Interconnectors
	FlexibleBasic   map[model.Region]map[model.BasicSourceType]model.FlexibleBasicSource
	Reserves        map[model.Region]*model.Reserves
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Build loads demand, capacity factor and inflow series for every country of
// the plan and assembles the country grids, applying the hour filter and the
// aggregation level.
func (b *Builder) Build(plan *config.Plan, pecdYear int) (*Grids, error) {
	keep, err := b.hourFilter()
	if err != nil {
		return nil, err
	}

	out := &Grids{
		Grids:         map[model.Region]*grid.CountryGrid{},
		FlexibleBasic: map[model.Region]map[model.BasicSourceType]model.FlexibleBasicSource{},
		Reserves:      map[model.Region]*model.Reserves{},
	}
	for _, region := range plan.Regions() {
		country := plan.Countries[region]
		g, err := b.buildCountry(region, country, pecdYear)
		if err != nil {
			return nil, fmt.Errorf("building grid for %s: %w", region, err)
		}
		if keep != nil {
			g.Data = g.Data.FilterDays(keep)
		}
		out.Grids[region] = g
		if len(country.FlexibleBasic) > 0 {
			out.FlexibleBasic[region] = country.FlexibleBasic
		}
		if country.Reserves != nil {
			out.Reserves[region] = country.Reserves
		}
	}
	out.Interconnectors = plan.Interconnectors

	if b.Aggregation != model.AggregationNone && b.Aggregation != "" {
		if err := out.aggregate(b.Aggregation); err != nil {
			return nil, err
		}
	}
	b.logger().Debug("grids built",
		"scenario", plan.Name, "pecd_year", pecdYear, "countries", len(out.Grids))
	return out, nil
}

func (b *Builder) buildCountry(region model.Region, country *config.CountryPlan,
	pecdYear int) (*grid.CountryGrid, error) {
	demand, err := b.Loader.Demand(region, pecdYear, b.CommonYear)
	if err != nil {
		return nil, err
	}
	if demand == nil {
		return nil, fmt.Errorf("no demand data for %s", region)
	}

	frame := grid.NewFrame(data.HourlyIndex(b.CommonYear))
	load := frame.Ensure(grid.KeyLoad)
	extraMW := country.AdditionalLoadMW
	if country.Reserves != nil {
		extraMW += country.Reserves.AdditionalLoadMW
	}
	for t, mw := range demand {
		load[t] = mw*country.LoadFactor + extraMW
	}

	if err := b.buildBasicCurves(frame, region, country, pecdYear); err != nil {
		return nil, err
	}
	if err := b.buildInflows(frame, region, country, pecdYear); err != nil {
		return nil, err
	}

	return &grid.CountryGrid{
		Country:         region,
		Data:            frame,
		BasicSources:    country.BasicSources,
		FlexibleSources: country.FlexibleSources,
		Storage:         country.Storage,
		NumYears:        1,
	}, nil
}

// buildBasicCurves fills the fixed hourly production of each basic source:
// weather-driven sources follow their PECD capacity factors, nuclear runs
// flat at full capacity and relies on its flexibility band to turn down.
func (b *Builder) buildBasicCurves(frame *grid.Frame, region model.Region,
	country *config.CountryPlan, pecdYear int) error {
	types := make([]model.BasicSourceType, 0, len(country.BasicSources))
	for t := range country.BasicSources {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, t := range types {
		source := country.BasicSources[t]
		curve := frame.Ensure(grid.BasicKey(t))
		if !t.IsVariableRenewable() {
			for i := range curve {
				curve[i] = source.CapacityMW
			}
			continue
		}
		factors, err := b.Loader.CapacityFactors(t, region, pecdYear, b.CommonYear)
		if err != nil {
			return err
		}
		if factors == nil {
			if source.CapacityMW > 0 {
				return fmt.Errorf("no capacity factors for %s in %s", t, region)
			}
			continue
		}
		for i, cf := range factors {
			curve[i] = cf * source.CapacityMW
		}
	}
	return nil
}

func (b *Builder) buildInflows(frame *grid.Frame, region model.Region,
	country *config.CountryPlan, pecdYear int) error {
	needed := false
	for _, storage := range country.Storage {
		if storage.InflowKey != "" {
			needed = true
		}
	}
	if !needed {
		return nil
	}

	inflows, err := b.Loader.HydroInflows(region, pecdYear, b.CommonYear)
	if err != nil {
		return err
	}
	for _, storage := range country.Storage {
		if storage.InflowKey == "" {
			continue
		}
		// Countries without data for a technology get a zero inflow.
		column := frame.Ensure(storage.InflowKey)
		if series, ok := inflows[storage.InflowKey]; ok {
			copy(column, series)
		}
	}
	return nil
}

// hourFilter translates the configured week sampling or day list into a
// day-of-year predicate.
func (b *Builder) hourFilter() (func(dayOfYear int) bool, error) {
	if b.Filter.WeekSampling > 1 {
		n := b.Filter.WeekSampling
		return func(dayOfYear int) bool {
			return ((dayOfYear-1)/7)%n == 0
		}, nil
	}
	if len(b.Filter.Days) > 0 {
		keep := map[int]bool{}
		for _, day := range b.Filter.Days {
			ts, err := time.Parse("2006-01-02", day)
			if err != nil {
				return nil, fmt.Errorf("parsing filter day %q: %w", day, err)
			}
			keep[ts.YearDay()] = true
		}
		return func(dayOfYear int) bool { return keep[dayOfYear] }, nil
	}
	return nil, nil
}

// aggregate merges countries into their aggregate nodes at the given level.
// The grids of one aggregate sum; interconnectors inside an aggregate vanish
// and parallel cross-border links merge.
func (g *Grids) aggregate(level model.AggregationLevel) error {
	groups := map[model.Region][]model.Region{}
	for region := range g.Grids {
		agg := model.AggregateFor(level, region)
		groups[agg] = append(groups[agg], region)
	}

	grids := map[model.Region]*grid.CountryGrid{}
	for agg, members := range groups {
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		merged := g.Grids[members[0]]
		for _, member := range members[1:] {
			sum, err := merged.Add(g.Grids[member])
			if err != nil {
				return fmt.Errorf("aggregating %s into %s: %w", member, agg, err)
			}
			merged = sum
		}
		merged.Country = agg
		grids[agg] = merged

		if len(members) > 1 {
			for _, member := range members {
				if _, ok := g.FlexibleBasic[member]; ok {
					return fmt.Errorf(
						"cannot aggregate %s: %s carries a flexible basic source", agg, member)
				}
				if _, ok := g.Reserves[member]; ok {
					return fmt.Errorf(
						"cannot aggregate %s: %s carries reserve requirements", agg, member)
				}
			}
		} else if members[0] != agg {
			if flexible, ok := g.FlexibleBasic[members[0]]; ok {
				g.FlexibleBasic[agg] = flexible
				delete(g.FlexibleBasic, members[0])
			}
			if reserves, ok := g.Reserves[members[0]]; ok {
				g.Reserves[agg] = reserves
				delete(g.Reserves, members[0])
			}
		}
	}
	g.Grids = grids
	g.Interconnectors = g.Interconnectors.Aggregate(level)
	return nil
}
