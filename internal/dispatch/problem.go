// Package dispatch assembles the hourly dispatch and capacity optimization
// problem of a multi-country grid as a linear program and extracts the
// solution back into hourly data frames.
package dispatch

import (
	"fmt"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/lp"
	"grid-dispatch/internal/model"
)

// CountryProblem holds the decision variables of one region. The hourly data
// of the grid provides the load and the fixed production curves; the problem
// adds dispatch and installed-capacity decisions on top.
type CountryProblem struct {
	Grid *grid.CountryGrid
	// Flexible-basic fleets (e.g. a coal fleet that follows its historical
	// curve but may ramp down). Keyed by the basic source type they shadow
	// in Grid.BasicSources.
	FlexibleBasic map[model.BasicSourceType]model.FlexibleBasicSource
	Reserves      *model.Reserves

	OptimizeCapex       bool
	OptimizeRampUpCosts bool

	basicInstalled         map[model.BasicSourceType]lp.Var
	flexBasicProduction    map[model.BasicSourceType][]lp.Var
	flexBasicRampUp        map[model.BasicSourceType][]lp.Var
	flexibleInstalled      []lp.Var
	flexibleProduction     [][]lp.Var
	flexibleRampUp         [][]lp.Var
	storageChargingInst    []lp.Var
	storageDischargingInst []lp.Var
	storageState           [][]lp.Var
	storageCharging        [][]lp.Var
	storageDischarging     [][]lp.Var

	outflow    map[model.Region][]lp.Var
	inflow     map[model.Region][]lp.Var
	inflowLoss map[model.Region]float64
}

func (p *CountryProblem) name(parts ...string) string {
	out := ""
	for i, part := range parts {
		if i > 0 {
			out += "_"
		}
		out += part
	}
	return out + "_" + string(p.Grid.Country)
}

// installedLowBound computes the lower bound of an installed factor. Without
// capacity optimization every factor is pinned to 1.
func (p *CountryProblem) installedLowBound(capacityMW, minCapacityMW float64) float64 {
	if !p.OptimizeCapex {
		return 1
	}
	if capacityMW == 0 {
		return 0
	}
	ratio := minCapacityMW / capacityMW
	if ratio > 1 {
		return 1
	}
	return ratio
}

func (p *CountryProblem) isTrulyFlexibleBasic(t model.BasicSourceType) (model.FlexibleBasicSource, bool) {
	fb, ok := p.FlexibleBasic[t]
	return fb, ok && fb.TrulyFlexible()
}

// Build registers the variables and constraints of this country on the
// model. The flow variable slices are shared with the neighbouring
// countries; losses apply on the importing side.
func (p *CountryProblem) Build(m *lp.Model,
	outflow, inflow map[model.Region][]lp.Var,
	inflowLoss map[model.Region]float64) error {
	p.outflow = outflow
	p.inflow = inflow
	p.inflowLoss = inflowLoss

	steps := p.Grid.Data.Len()
	if steps == 0 {
		return fmt.Errorf("grid for %s has no hourly data", p.Grid.Country)
	}

	p.registerBasicVariables(m, steps)
	p.registerFlexibleVariables(m, steps)
	p.registerStorageVariables(m, steps)

	if err := p.addGlobalConstraints(m); err != nil {
		return err
	}
	if err := p.addHourlyConstraints(m, steps); err != nil {
		return err
	}
	if err := p.addProductionCaps(m, steps); err != nil {
		return err
	}
	p.addCapexCosts(m)
	return nil
}

func (p *CountryProblem) registerBasicVariables(m *lp.Model, steps int) {
	p.basicInstalled = map[model.BasicSourceType]lp.Var{}
	p.flexBasicProduction = map[model.BasicSourceType][]lp.Var{}
	p.flexBasicRampUp = map[model.BasicSourceType][]lp.Var{}

	for t, source := range p.Grid.BasicSources {
		low := p.installedLowBound(source.CapacityMW, source.MinCapacityMW)
		p.basicInstalled[t] = m.AddVar(
			p.name("basic_installed", string(t)), low, 1, 0)

		if fb, ok := p.isTrulyFlexibleBasic(t); ok {
			p.flexBasicProduction[t] = m.AddVars(
				p.name("flexible_basic_production_MW", string(t)), steps, 0, lp.Inf(), 0)
			if fb.RampRate < 1 {
				p.flexBasicRampUp[t] = m.AddVars(
					p.name("flexible_basic_ramp_up_MW", string(t)), steps,
					0, fb.MaxRampMW(), 0)
			}
		}
	}
}

func (p *CountryProblem) registerFlexibleVariables(m *lp.Model, steps int) {
	p.flexibleInstalled = make([]lp.Var, len(p.Grid.FlexibleSources))
	p.flexibleProduction = make([][]lp.Var, len(p.Grid.FlexibleSources))
	p.flexibleRampUp = make([][]lp.Var, len(p.Grid.FlexibleSources))

	for i, source := range p.Grid.FlexibleSources {
		low := p.installedLowBound(source.CapacityMW, source.MinCapacityMW)
		p.flexibleInstalled[i] = m.AddVar(
			p.name("flexible_installed", string(source.Type)), low, 1, 0)
		p.flexibleProduction[i] = m.AddVars(
			p.name("flexible_production_MW", string(source.Type)), steps,
			0, source.CapacityMW, 0)
		if source.RampRate < 1 {
			p.flexibleRampUp[i] = m.AddVars(
				p.name("flexible_ramp_up_MW", string(source.Type)), steps,
				0, source.MaxRampMW(), 0)
		}
	}
}

func (p *CountryProblem) registerStorageVariables(m *lp.Model, steps int) {
	count := len(p.Grid.Storage)
	p.storageChargingInst = make([]lp.Var, count)
	p.storageDischargingInst = make([]lp.Var, count)
	p.storageState = make([][]lp.Var, count)
	p.storageCharging = make([][]lp.Var, count)
	p.storageDischarging = make([][]lp.Var, count)

	for i, storage := range p.Grid.Storage {
		chargingLow := p.installedLowBound(
			storage.CapacityMWCharging, storage.MinCapacityMWCharging)
		dischargingLow := p.installedLowBound(storage.CapacityMW, storage.MinCapacityMW)
		p.storageChargingInst[i] = m.AddVar(
			p.name("storage_charging_installed", string(storage.Type)), chargingLow, 1, 0)
		p.storageDischargingInst[i] = m.AddVar(
			p.name("storage_discharging_installed", string(storage.Type)), dischargingLow, 1, 0)

		maxEnergy := storage.MaxEnergyMWh
		if storage.SeparateCharging {
			maxEnergy *= float64(p.Grid.NumYears)
		}
		p.storageState[i] = m.AddVars(
			p.name("storage_state_MWh", string(storage.Type)), steps, 0, maxEnergy, 0)
		p.storageCharging[i] = m.AddVars(
			p.name("storage_charging_MW", string(storage.Type)), steps,
			0, storage.CapacityMWCharging, 0)
		p.storageDischarging[i] = m.AddVars(
			p.name("storage_discharging_MW", string(storage.Type)), steps,
			0, storage.CapacityMW, 0)
	}
}

func (p *CountryProblem) addGlobalConstraints(m *lp.Model) error {
	for i, storage := range p.Grid.Storage {
		if !storage.SeparateCharging {
			// Charging and discharging share one installed factor.
			e := lp.Term(p.storageChargingInst[i], 1)
			e.Add(p.storageDischargingInst[i], -1)
			if err := m.AddEquality(
				p.name("SameInstalled", string(storage.Type)), e, 0); err != nil {
				return err
			}
		}
		if storage.MinChargingCapacityRatioToVRE > 0 {
			// installed charging >= ratio * installed VRE
			e := lp.Term(p.storageChargingInst[i], storage.CapacityMWCharging)
			for t, source := range p.Grid.BasicSources {
				if t.IsVariableRenewable() {
					e.Add(p.basicInstalled[t],
						-storage.MinChargingCapacityRatioToVRE*source.CapacityMW)
				}
			}
			if err := m.AddAtLeast(
				p.name("MinChargingToVRE", string(storage.Type)), e, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// rampConstraints limits hour-over-hour output changes. The ramp-up variable
// feeds the ramp-up cost; predefined-curve movements beyond the physical
// ramp relax the bounds so that a fixed curve never becomes infeasible.
func (p *CountryProblem) rampConstraints(m *lp.Model, label string,
	production, rampUp []lp.Var, installed lp.Var,
	maxRampMW, rampUpCostPerMWEUR, rampUpPredefinedMW float64, t int) error {
	rampUpExtra, rampDownExtra := 0.0, 0.0
	if rampUpPredefinedMW > maxRampMW {
		rampUpExtra = rampUpPredefinedMW - maxRampMW
	} else if rampUpPredefinedMW < -maxRampMW {
		rampDownExtra = -(rampUpPredefinedMW + maxRampMW)
	}

	// ramp_up[t] <= maxRamp * installed
	e := lp.Term(rampUp[t], 1)
	e.Add(installed, -maxRampMW)
	if err := m.AddAtMost(p.name(label+"RampUpVar", itoa(t)), e, 0); err != nil {
		return err
	}

	// production[t-1] + ramp_up[t] - (maxRamp + rampDownExtra) * installed <= production[t]
	lower := lp.Term(production[t-1], 1)
	lower.Add(rampUp[t], 1)
	lower.Add(installed, -(maxRampMW + rampDownExtra))
	lower.Add(production[t], -1)
	if err := m.AddAtMost(p.name(label+"RampLower", itoa(t)), lower, 0); err != nil {
		return err
	}

	// production[t-1] + ramp_up[t] + rampUpExtra * installed >= production[t]
	upper := lp.Term(production[t-1], 1)
	upper.Add(rampUp[t], 1)
	upper.Add(installed, rampUpExtra)
	upper.Add(production[t], -1)
	if err := m.AddAtLeast(p.name(label+"RampUpper", itoa(t)), upper, 0); err != nil {
		return err
	}

	if p.OptimizeRampUpCosts {
		m.AddCost(rampUp[t], rampUpCostPerMWEUR)
	}
	return nil
}

func (p *CountryProblem) addHourlyConstraints(m *lp.Model, steps int) error {
	load := p.Grid.Data.Column(grid.KeyLoad)
	if load == nil {
		return fmt.Errorf("grid for %s has no load column", p.Grid.Country)
	}

	lastPredefined := map[model.BasicSourceType]float64{}

	for t := 0; t < steps; t++ {
		supply := lp.Constant(0)

		// Basic sources: either the fixed curve scaled by the installed
		// factor, or a decision variable for truly flexible fleets.
		for srcType, source := range p.Grid.BasicSources {
			curve := p.Grid.Data.Column(grid.BasicKey(srcType))
			curveMW := 0.0
			if curve != nil {
				curveMW = curve[t]
			}
			opex := source.Economics.VariableCostsPerMWhEUR

			if _, ok := p.isTrulyFlexibleBasic(srcType); ok {
				production := p.flexBasicProduction[srcType][t]
				supply.Add(production, 1)
				m.AddCost(production, opex)
			} else {
				supply.Add(p.basicInstalled[srcType], curveMW)
				m.AddCost(p.basicInstalled[srcType], opex*curveMW)
			}
		}

		// Flexible sources.
		for i, source := range p.Grid.FlexibleSources {
			production := p.flexibleProduction[i][t]
			supply.Add(production, 1)
			m.AddCost(production, source.VariableCostsPerMWhEUR())
		}

		// Storage.
		for i := range p.Grid.Storage {
			supply.Add(p.storageDischarging[i][t], 1)
			supply.Add(p.storageCharging[i][t], -1)
			m.AddCost(p.storageDischarging[i][t],
				p.Grid.Storage[i].Economics.VariableCostsPerMWhEUR)
		}

		// Interconnectors. The exporting side pays the capacity fee.
		for from, flow := range p.inflow {
			supply.Add(flow[t], 1-p.inflowLoss[from])
		}
		for _, flow := range p.outflow {
			supply.Add(flow[t], -1)
			m.AddCost(flow[t], model.OutflowCapacityCostEURPerMWh)
		}

		// Adequacy: VRE can be curtailed at will, so over-production is
		// allowed and only the lower bound binds.
		if err := m.AddAtLeast(p.name("Adequacy", itoa(t)), supply, load[t]); err != nil {
			return err
		}

		if err := p.addFlexibleBasicBand(m, t); err != nil {
			return err
		}
		if err := p.addInstalledScaling(m, t); err != nil {
			return err
		}
		if err := p.addReserveMargin(m, t); err != nil {
			return err
		}
		if err := p.addRampLimits(m, t, lastPredefined); err != nil {
			return err
		}
		if err := p.addStorageState(m, t, steps); err != nil {
			return err
		}
	}
	return nil
}

// addFlexibleBasicBand keeps a truly flexible basic fleet between its
// predefined curve and the ramped-down minimum, both scaled by the installed
// factor.
func (p *CountryProblem) addFlexibleBasicBand(m *lp.Model, t int) error {
	for srcType := range p.Grid.BasicSources {
		fb, ok := p.isTrulyFlexibleBasic(srcType)
		if !ok {
			continue
		}
		curve := p.Grid.Data.Column(grid.BasicKey(srcType))
		maxMW := 0.0
		if curve != nil {
			maxMW = curve[t]
		}
		minMW := fb.MinProductionMW
		if fb.MaxDecreaseMW < fb.CapacityMW && fb.CapacityMW > 0 {
			// A fleet at partial output can only shed a proportional part
			// of its nominal flexibility.
			outputRatio := maxMW / fb.CapacityMW
			if outputRatio > 1 {
				outputRatio = 1
			}
			relative := maxMW - outputRatio*fb.MaxDecreaseMW
			if relative > minMW {
				minMW = relative
			}
		}

		installed := p.basicInstalled[srcType]
		production := p.flexBasicProduction[srcType][t]

		if minMW >= maxMW {
			e := lp.Term(production, 1)
			e.Add(installed, -maxMW)
			if err := m.AddEquality(
				p.name("FlexBasicPinned", string(srcType), itoa(t)), e, 0); err != nil {
				return err
			}
			continue
		}
		upper := lp.Term(production, 1)
		upper.Add(installed, -maxMW)
		if err := m.AddAtMost(
			p.name("FlexBasicBelowMax", string(srcType), itoa(t)), upper, 0); err != nil {
			return err
		}
		lower := lp.Term(production, 1)
		lower.Add(installed, -minMW)
		if err := m.AddAtLeast(
			p.name("FlexBasicAboveMin", string(srcType), itoa(t)), lower, 0); err != nil {
			return err
		}
	}
	return nil
}

// addInstalledScaling ties hourly production and storage throughput to the
// optimized installed factors.
func (p *CountryProblem) addInstalledScaling(m *lp.Model, t int) error {
	for i, source := range p.Grid.FlexibleSources {
		if source.MinCapacityMW >= source.CapacityMW {
			continue
		}
		e := lp.Term(p.flexibleProduction[i][t], 1)
		e.Add(p.flexibleInstalled[i], -source.CapacityMW)
		if err := m.AddAtMost(
			p.name("FlexInstalled", string(source.Type), itoa(t)), e, 0); err != nil {
			return err
		}
	}

	for i, storage := range p.Grid.Storage {
		if storage.MinCapacityMWCharging < storage.CapacityMWCharging {
			e := lp.Term(p.storageCharging[i][t], 1)
			e.Add(p.storageChargingInst[i], -storage.CapacityMWCharging)
			if err := m.AddAtMost(
				p.name("ChargingInstalled", string(storage.Type), itoa(t)), e, 0); err != nil {
				return err
			}
		}
		if storage.MinCapacityMW < storage.CapacityMW {
			e := lp.Term(p.storageDischarging[i][t], 1)
			e.Add(p.storageDischargingInst[i], -storage.CapacityMW)
			if err := m.AddAtMost(
				p.name("DischargingInstalled", string(storage.Type), itoa(t)), e, 0); err != nil {
				return err
			}
			if !storage.SeparateCharging {
				// The energy limit shrinks with the installed factor.
				state := lp.Term(p.storageState[i][t], 1)
				state.Add(p.storageDischargingInst[i], -storage.MaxEnergyMWh)
				if err := m.AddAtMost(
					p.name("StateInstalled", string(storage.Type), itoa(t)), state, 0); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// addReserveMargin keeps enough spare hydro discharging capacity for
// balancing reserves.
func (p *CountryProblem) addReserveMargin(m *lp.Model, t int) error {
	if p.Reserves == nil || p.Reserves.HydroCapacityReductionMW <= 0 {
		return nil
	}

	available := lp.Constant(0)
	hasCapacity := false
	for i, storage := range p.Grid.Storage {
		if !storage.Type.AvailableForReserves() {
			continue
		}
		hasCapacity = true
		if storage.MinCapacityMW < storage.CapacityMW {
			available.Add(p.storageDischargingInst[i], storage.CapacityMW)
		} else {
			available.AddConst(storage.CapacityMW)
		}
		available.Add(p.storageDischarging[i][t], -1)
	}
	if !hasCapacity {
		return fmt.Errorf("no hydro reserve capacity in %s, %g MW required",
			p.Grid.Country, p.Reserves.HydroCapacityReductionMW)
	}
	return m.AddAtLeast(p.name("HydroReserve", itoa(t)), available,
		p.Reserves.HydroCapacityReductionMW)
}

func (p *CountryProblem) addRampLimits(m *lp.Model, t int,
	lastPredefined map[model.BasicSourceType]float64) error {
	for i, source := range p.Grid.FlexibleSources {
		if source.RampRate < 1 && t > 0 {
			if err := p.rampConstraints(m, "Flex"+string(source.Type),
				p.flexibleProduction[i], p.flexibleRampUp[i], p.flexibleInstalled[i],
				source.MaxRampMW(), source.RampUpCostPerMWEUR, 0, t); err != nil {
				return err
			}
		}
	}

	for srcType := range p.Grid.BasicSources {
		fb, ok := p.isTrulyFlexibleBasic(srcType)
		if !ok {
			continue
		}
		curve := p.Grid.Data.Column(grid.BasicKey(srcType))
		curveMW := 0.0
		if curve != nil {
			curveMW = curve[t]
		}
		if fb.RampRate < 1 && t > 0 {
			predefinedRampMW := curveMW - lastPredefined[srcType]
			if err := p.rampConstraints(m, "FlexBasic"+string(srcType),
				p.flexBasicProduction[srcType], p.flexBasicRampUp[srcType],
				p.basicInstalled[srcType], fb.MaxRampMW(), fb.RampUpCostPerMWEUR,
				predefinedRampMW, t); err != nil {
				return err
			}
		}
		lastPredefined[srcType] = curveMW
	}

	for i, storage := range p.Grid.Storage {
		if storage.RampRate >= 1 || t == 0 {
			continue
		}
		// Net output ramping assumes fixed capacities.
		maxRampMW := storage.RampRate * (storage.CapacityMW + storage.CapacityMWCharging)
		before := lp.Term(p.storageCharging[i][t-1], 1)
		before.Add(p.storageDischarging[i][t-1], -1)
		now := lp.Term(p.storageCharging[i][t], 1)
		now.Add(p.storageDischarging[i][t], -1)

		diff := now.Minus(before)
		if err := m.AddRange(
			p.name("StorageRamp", string(storage.Type), itoa(t)),
			-maxRampMW, diff, maxRampMW); err != nil {
			return err
		}
	}
	return nil
}

// addStorageState links consecutive states of charge: keep rate, natural
// inflows, charging and discharging efficiencies. Spilling is allowed, so
// the transition is an upper bound, not an equality.
func (p *CountryProblem) addStorageState(m *lp.Model, t, steps int) error {
	for i, storage := range p.Grid.Storage {
		state := p.storageState[i]
		charging := p.storageCharging[i][t]
		discharging := p.storageDischarging[i][t]
		installed := p.storageDischargingInst[i]

		inflowMW := 0.0
		if storage.InflowKey != "" {
			if col := p.Grid.Data.Column(storage.InflowKey); col != nil {
				inflowMW = col[t]
			}
		}

		// state[t] <= previous + inflow + eff_c * charging - discharging / eff_d
		transition := lp.Term(state[t], 1)
		transition.Add(discharging, 1/storage.DischargingEfficiency)
		switch {
		case storage.MaxEnergyMWh == 0:
			// No storage volume: discharge directly from the inflow.
			e := lp.Term(discharging, 1/storage.DischargingEfficiency)
			if err := m.AddAtMost(
				p.name("NoStorageDischarge", string(storage.Type), itoa(t)),
				e, inflowMW); err != nil {
				return err
			}
			continue
		case storage.CapacityMWCharging == 0:
			// No charging unit, the state only drains.
		default:
			transition.Add(charging, -storage.ChargingEfficiency)
		}

		rhs := inflowMW
		if t > 0 {
			transition.Add(state[t-1], -storage.KeepRatePerHour())
		} else {
			initial := storage.InitialEnergyMWh
			if storage.SeparateCharging {
				rhs += initial * float64(p.Grid.NumYears)
			} else {
				transition.Add(installed, -initial)
			}
		}
		if err := m.AddAtMost(
			p.name("StateTransition", string(storage.Type), itoa(t)),
			transition, rhs); err != nil {
			return err
		}

		if inflowMW > 0 && storage.InflowMinDischargeRatio > 0 {
			// Run-of-river behaviour: a share of the inflow must pass
			// through immediately.
			minMW := inflowMW * storage.InflowMinDischargeRatio
			if minMW > storage.CapacityMW {
				minMW = storage.CapacityMW
			}
			e := lp.Term(discharging, 1/storage.DischargingEfficiency)
			if err := m.AddAtLeast(
				p.name("InflowMinDischarge", string(storage.Type), itoa(t)),
				e, minMW); err != nil {
				return err
			}
		}

		if storage.HasMidnightTarget() && t%24 == 0 {
			e := lp.Term(state[t], 1)
			target := 0.0
			if storage.SeparateCharging {
				target = storage.MidnightEnergyMWh * float64(p.Grid.NumYears)
			} else {
				e.Add(installed, -storage.MidnightEnergyMWh)
			}
			if err := m.AddEquality(
				p.name("MidnightState", string(storage.Type), itoa(t)), e, target); err != nil {
				return err
			}
		}

		if t == steps-1 {
			// The minimum final state binds strictly; the deviation from
			// the target final state is priced at the sell/buy cost.
			e := lp.Term(state[t], 1)
			minFinal := 0.0
			finalCoef := 0.0
			if storage.SeparateCharging {
				minFinal = storage.MinFinalEnergyMWh * float64(p.Grid.NumYears)
				m.Offset += storage.FinalEnergyMWh * float64(p.Grid.NumYears) *
					storage.CostSellBuyPerMWhEUR
			} else {
				e.Add(installed, -storage.MinFinalEnergyMWh)
				finalCoef = storage.FinalEnergyMWh * storage.CostSellBuyPerMWhEUR
				m.AddCost(installed, finalCoef)
			}
			if err := m.AddAtLeast(
				p.name("FinalCharge", string(storage.Type)), e, minFinal); err != nil {
				return err
			}
			m.AddCost(state[t], -storage.CostSellBuyPerMWhEUR)
		}
	}
	return nil
}

// addProductionCaps constrains the total energy of flexible sources, either
// through a maximum average capacity factor or an absolute TWh cap.
func (p *CountryProblem) addProductionCaps(m *lp.Model, steps int) error {
	for i, source := range p.Grid.FlexibleSources {
		if source.Constraint == nil {
			continue
		}
		total := lp.Constant(0)
		for t := 0; t < steps; t++ {
			total.Add(p.flexibleProduction[i][t], 1)
		}

		if cf := source.Constraint.MaxCapacityFactor; cf > 0 {
			// Scaled with the installed factor under capacity optimization.
			maxMWh := float64(p.Grid.NumYears) * source.CapacityMW * cf * 8760
			total.Add(p.flexibleInstalled[i], -maxMWh)
			if err := m.AddAtMost(
				p.name("MaxCapFactor", string(source.Type)), total, 0); err != nil {
				return err
			}
			continue
		}
		maxMWh := float64(p.Grid.NumYears) * source.Constraint.MaxTotalTWh * 1e6
		if err := m.AddAtMost(
			p.name("MaxTotalProduction", string(source.Type)), total, maxMWh); err != nil {
			return err
		}
	}
	return nil
}

// addCapexCosts adds annualized fixed costs scaled by the installed factors
// to the objective, once per model year.
func (p *CountryProblem) addCapexCosts(m *lp.Model) {
	years := float64(p.Grid.NumYears)
	for t, source := range p.Grid.BasicSources {
		m.AddCost(p.basicInstalled[t],
			source.Economics.CapexPerYearEUR(source.CapacityMW)*years)
	}
	for i, source := range p.Grid.FlexibleSources {
		if source.Virtual {
			continue
		}
		m.AddCost(p.flexibleInstalled[i],
			source.Economics.CapexPerYearEUR(source.CapacityMW)*years)
	}
	for i, storage := range p.Grid.Storage {
		m.AddCost(p.storageDischargingInst[i],
			storage.Economics.CapexPerYearEUR(storage.CapacityMW)*years)
	}
}

func itoa(v int) string {
	return fmt.Sprintf("%d", v)
}
