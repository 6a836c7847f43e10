package dispatch

import (
	"sort"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/lp"
	"grid-dispatch/internal/model"
)

// solutionExtractor turns the solved variable values of one country back
// into hourly columns and scales the grid's capacities by the optimized
// installed factors.
type solutionExtractor struct {
	problem  *CountryProblem
	solution *lp.Solution
}

func (x *solutionExtractor) apply() error {
	if err := x.extractFlexible(); err != nil {
		return err
	}
	if err := x.extractStorage(); err != nil {
		return err
	}
	if err := x.extractFlows(); err != nil {
		return err
	}
	if err := x.extractBasic(); err != nil {
		return err
	}
	if err := x.applyLoadShift(); err != nil {
		return err
	}
	x.deriveColumns()
	x.extractFactors()
	x.problem.Grid.Complete = true
	return nil
}

func (x *solutionExtractor) data() *grid.Frame { return x.problem.Grid.Data }

func (x *solutionExtractor) extractFlexible() error {
	p := x.problem
	data := x.data()
	totalFlexible := data.Ensure(grid.KeyFlexible)

	for i, source := range p.Grid.FlexibleSources {
		production := x.solution.Values(p.flexibleProduction[i])
		if err := data.Set(grid.FlexibleKey(source.Type), production); err != nil {
			return err
		}
		for t, mw := range production {
			totalFlexible[t] += mw
		}
		if p.OptimizeRampUpCosts && p.flexibleRampUp[i] != nil {
			err := data.Set(grid.RampUpKey(grid.FlexibleKey(source.Type)),
				x.solution.Values(p.flexibleRampUp[i]))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *solutionExtractor) extractStorage() error {
	p := x.problem
	data := x.data()
	totalCharging := data.Ensure(grid.KeyCharging)
	totalDischarging := data.Ensure(grid.KeyDischarging)

	for i, storage := range p.Grid.Storage {
		charging := x.solution.Values(p.storageCharging[i])
		discharging := x.solution.Values(p.storageDischarging[i])
		if err := data.Set(grid.ChargingKey(storage.Type), charging); err != nil {
			return err
		}
		if err := data.Set(grid.DischargingKey(storage.Type), discharging); err != nil {
			return err
		}
		err := data.Set(grid.StateOfChargeKey(storage.Type),
			x.solution.Values(p.storageState[i]))
		if err != nil {
			return err
		}

		switch storage.Use {
		case model.UseDemandFlexibility:
			shift := data.Ensure(grid.KeyLoadShift)
			for t := range charging {
				shift[t] += charging[t] - discharging[t]
			}
		case model.UseElectricity:
			// Only grid storage counts towards the totals.
			for t := range charging {
				totalCharging[t] += charging[t]
				totalDischarging[t] += discharging[t]
			}
		}
	}
	return nil
}

func (x *solutionExtractor) extractFlows() error {
	p := x.problem
	data := x.data()
	imports := data.Ensure(grid.KeyImport)
	exports := data.Ensure(grid.KeyExport)
	netImport := data.Ensure(grid.KeyNetImport)

	for _, from := range sortedRegions(p.inflow) {
		// The importing side receives the flow net of transmission loss.
		flow := x.solution.Values(p.inflow[from])
		for t := range flow {
			flow[t] *= 1 - p.inflowLoss[from]
			imports[t] += flow[t]
			netImport[t] += flow[t]
		}
		if err := data.Set(grid.ImportKey(from), flow); err != nil {
			return err
		}
	}
	for _, to := range sortedRegions(p.outflow) {
		flow := x.solution.Values(p.outflow[to])
		for t := range flow {
			exports[t] += flow[t]
			netImport[t] -= flow[t]
		}
		if err := data.Set(grid.ExportKey(to), flow); err != nil {
			return err
		}
	}
	return nil
}

// extractBasic scales fixed curves by the installed factors and replaces the
// curves of truly flexible fleets by the optimized dispatch, keeping the
// predefined curve and the decrease in extra columns.
func (x *solutionExtractor) extractBasic() error {
	p := x.problem
	data := x.data()

	for srcType := range p.Grid.BasicSources {
		key := grid.BasicKey(srcType)
		curve := data.Ensure(key)

		if _, ok := p.isTrulyFlexibleBasic(srcType); ok {
			production := x.solution.Values(p.flexBasicProduction[srcType])
			predefined := make([]float64, len(curve))
			decrease := make([]float64, len(curve))
			copy(predefined, curve)
			for t := range curve {
				decrease[t] = predefined[t] - production[t]
			}
			if err := data.Set(grid.FlexibleBasicPredefinedKey(srcType), predefined); err != nil {
				return err
			}
			if err := data.Set(key, production); err != nil {
				return err
			}
			if err := data.Set(grid.FlexibleBasicDecreaseKey(srcType), decrease); err != nil {
				return err
			}
			if p.OptimizeRampUpCosts && p.flexBasicRampUp[srcType] != nil {
				err := data.Set(grid.RampUpKey(key),
					x.solution.Values(p.flexBasicRampUp[srcType]))
				if err != nil {
					return err
				}
			}
			continue
		}
		factor := x.solution.Value(p.basicInstalled[srcType])
		for t := range curve {
			curve[t] *= factor
		}
	}
	return nil
}

func (x *solutionExtractor) applyLoadShift() error {
	data := x.data()
	shift := data.Column(grid.KeyLoadShift)
	if shift == nil {
		return nil
	}
	load := data.Ensure(grid.KeyLoad)
	before := make([]float64, len(load))
	copy(before, load)
	if err := data.Set(grid.KeyLoadBeforeFlexibility, before); err != nil {
		return err
	}
	for t := range load {
		load[t] += shift[t]
	}
	return nil
}

func (x *solutionExtractor) deriveColumns() {
	data := x.data()
	steps := data.Len()

	wind := data.Ensure(grid.KeyWind)
	onshore := data.Column(grid.KeyWindOnshore)
	offshore := data.Column(grid.KeyWindOffshore)
	if onshore != nil || offshore != nil {
		for t := 0; t < steps; t++ {
			wind[t] = value(onshore, t) + value(offshore, t)
		}
	}

	vre := data.Ensure(grid.KeyVRE)
	residual := data.Ensure(grid.KeyResidual)
	production := data.Ensure(grid.KeyProduction)
	withoutStorage := data.Ensure(grid.KeyTotalWithoutStorage)
	total := data.Ensure(grid.KeyTotal)
	storable := data.Ensure(grid.KeyStorable)
	curtailment := data.Ensure(grid.KeyCurtailment)
	shortage := data.Ensure(grid.KeyShortage)

	load := data.Column(grid.KeyLoad)
	solar := data.Column(grid.KeySolar)
	hydro := data.Column(grid.KeyHydro)
	nuclear := data.Column(grid.KeyNuclear)
	flexible := data.Column(grid.KeyFlexible)
	netImport := data.Column(grid.KeyNetImport)
	charging := data.Column(grid.KeyCharging)
	discharging := data.Column(grid.KeyDischarging)

	for t := 0; t < steps; t++ {
		vre[t] = value(solar, t) + wind[t]
		residual[t] = value(load, t) - vre[t]
		production[t] = vre[t] + value(hydro, t) + value(nuclear, t) + value(flexible, t)
		withoutStorage[t] = production[t] + value(netImport, t)
		total[t] = withoutStorage[t] - value(charging, t) + value(discharging, t)
		storable[t] = withoutStorage[t] - value(load, t)
		curtailment[t] = total[t] - value(load, t)
		shortage[t] = value(load, t) - total[t]
	}
}

// extractFactors scales the grid's nominal capacities by the optimized
// installed factors so that downstream statistics see the built-out system.
func (x *solutionExtractor) extractFactors() {
	p := x.problem

	for srcType, source := range p.Grid.BasicSources {
		source.CapacityMW *= x.solution.Value(p.basicInstalled[srcType])
		p.Grid.BasicSources[srcType] = source
	}
	for i := range p.Grid.FlexibleSources {
		p.Grid.FlexibleSources[i].CapacityMW *=
			x.solution.Value(p.flexibleInstalled[i])
	}
	for i := range p.Grid.Storage {
		storage := &p.Grid.Storage[i]
		discharging := x.solution.Value(p.storageDischargingInst[i])
		storage.CapacityMW *= discharging
		if storage.SeparateCharging {
			storage.CapacityMWCharging *= x.solution.Value(p.storageChargingInst[i])
			continue
		}
		// All energy bounds shrink with the installed factor.
		storage.CapacityMWCharging *= discharging
		storage.InitialEnergyMWh *= discharging
		storage.MaxEnergyMWh *= discharging
		storage.FinalEnergyMWh *= discharging
		storage.MinFinalEnergyMWh *= discharging
		if storage.HasMidnightTarget() {
			storage.MidnightEnergyMWh *= discharging
		}
	}
}

func value(col []float64, t int) float64 {
	if col == nil {
		return 0
	}
	return col[t]
}

func sortedRegions[T any](m map[model.Region]T) []model.Region {
	regions := make([]model.Region, 0, len(m))
	for region := range m {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}
