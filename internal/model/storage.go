package model

import (
	"errors"
	"fmt"
	"math"
)

// StorageUse distinguishes how a storage unit participates in the balance.
type StorageUse int

const (
	// UseElectricity is standard grid storage.
	UseElectricity StorageUse = iota
	// UseDemandFlexibility models load shifting; charging and discharging
	// alter the demand curve instead of counting as storage throughput.
	UseDemandFlexibility
)

// StorageType identifies a storage technology.
type StorageType string

const (
	StoragePumped     StorageType = "pump"
	StoragePumpedOpen StorageType = "pump_open"
	StorageReservoir  StorageType = "h_dams"
	StorageRunOfRiver StorageType = "h_ror"
	StoragePondage    StorageType = "h_pond"
	StorageLiIon      StorageType = "li"
	StorageLiIon4h    StorageType = "li-4"
	StorageHydrogen   StorageType = "h2"
	StorageDSR        StorageType = "dsr"
)

// AvailableForReserves reports whether spare discharging capacity of this
// technology counts towards the balancing reserve margin.
func (t StorageType) AvailableForReserves() bool {
	switch t {
	case StoragePumped, StoragePumpedOpen, StorageReservoir, StorageRunOfRiver, StoragePondage:
		return true
	}
	return false
}

// Storage describes one storage unit (or fleet) of a country grid.
// Energy bounds are in MWh, capacities in MW, efficiencies in (0, 1].
type Storage struct {
	Type StorageType
	Use  StorageUse

	// Discharging capacity; capacity optimization may decrease it down to
	// MinCapacityMW.
	CapacityMW    float64
	MinCapacityMW float64
	// Charging capacity with its own optimization bound.
	CapacityMWCharging    float64
	MinCapacityMWCharging float64
	// Charging capacity is forced to at least this ratio of installed
	// variable-renewable capacity (e.g. 0.1). Zero disables the constraint.
	MinChargingCapacityRatioToVRE float64
	// Separate charging unit (e.g. electrolysis feeding hydrogen storage).
	// Its installed factor is optimized independently of discharging and
	// the energy targets scale with the number of model years instead of
	// the installed factor.
	SeparateCharging bool

	MaxEnergyMWh     float64
	InitialEnergyMWh float64
	// The ideal final state. Ending above it earns CostSellBuyPerMWhEUR per
	// extra MWh, ending below (down to MinFinalEnergyMWh) costs the same.
	FinalEnergyMWh       float64
	MinFinalEnergyMWh    float64
	CostSellBuyPerMWhEUR float64
	// When set (>= 0), state of charge is pinned to this value at every
	// midnight. Negative means unset.
	MidnightEnergyMWh float64

	ChargingEfficiency    float64
	DischargingEfficiency float64
	// Fraction of stored energy lost per day.
	LossRatePerDay float64
	// Hourly ramp limit on the net output as a fraction of total capacity;
	// 1 means unconstrained.
	RampRate float64

	// Column of the hourly frame holding natural inflow in MW (hydro).
	// Empty for closed-loop storage.
	InflowKey string
	// Fraction of the hourly inflow that must be discharged immediately
	// (run-of-river behaviour). Zero disables the constraint.
	InflowMinDischargeRatio float64

	Economics Economics
}

// NewStorage returns a Storage with the unset-midnight sentinel applied.
func NewStorage(t StorageType, use StorageUse) Storage {
	return Storage{Type: t, Use: use, MidnightEnergyMWh: -1,
		ChargingEfficiency: 1, DischargingEfficiency: 1, RampRate: 1}
}

func (s Storage) HasMidnightTarget() bool { return s.MidnightEnergyMWh >= 0 }

func (s Storage) Validate() error {
	if s.CapacityMW < 0 || s.CapacityMWCharging < 0 {
		return errors.New("capacities must be >= 0")
	}
	if s.MinCapacityMW < 0 || s.MinCapacityMW > s.CapacityMW {
		return errors.New("MinCapacityMW must satisfy 0 <= MinCapacityMW <= CapacityMW")
	}
	if s.MinCapacityMWCharging < 0 || s.MinCapacityMWCharging > s.CapacityMWCharging {
		return errors.New("MinCapacityMWCharging must satisfy 0 <= min <= CapacityMWCharging")
	}
	if s.ChargingEfficiency <= 0 || s.ChargingEfficiency > 1 {
		return errors.New("ChargingEfficiency must be in (0, 1]")
	}
	if s.DischargingEfficiency <= 0 || s.DischargingEfficiency > 1 {
		return errors.New("DischargingEfficiency must be in (0, 1]")
	}
	if s.LossRatePerDay < 0 || s.LossRatePerDay >= 1 {
		return errors.New("LossRatePerDay must be in [0, 1)")
	}
	if s.RampRate <= 0 || s.RampRate > 1 {
		return errors.New("RampRate must be in (0, 1]")
	}
	if s.MaxEnergyMWh < 0 {
		return errors.New("MaxEnergyMWh must be >= 0")
	}
	if s.InitialEnergyMWh < 0 || s.InitialEnergyMWh > s.MaxEnergyMWh {
		return errors.New("InitialEnergyMWh must be within [0, MaxEnergyMWh]")
	}
	if s.MinFinalEnergyMWh > s.FinalEnergyMWh {
		return errors.New("MinFinalEnergyMWh must be <= FinalEnergyMWh")
	}
	if s.HasMidnightTarget() && s.MidnightEnergyMWh > s.MaxEnergyMWh {
		return errors.New("MidnightEnergyMWh must be <= MaxEnergyMWh")
	}
	if s.MinChargingCapacityRatioToVRE < 0 {
		return errors.New("MinChargingCapacityRatioToVRE must be >= 0")
	}
	return nil
}

// KeepRatePerHour converts the daily loss rate into the hourly multiplier
// applied to the state of charge.
func (s Storage) KeepRatePerHour() float64 {
	if s.LossRatePerDay == 0 {
		return 1
	}
	return math.Pow(1-s.LossRatePerDay, 1.0/24)
}

// Add merges two storage units of the same type for region aggregation.
func (s Storage) Add(other Storage) (Storage, error) {
	if s.Type != other.Type || s.Use != other.Use {
		return Storage{}, fmt.Errorf("cannot add storage %s to %s", other.Type, s.Type)
	}
	out := s
	out.CapacityMW += other.CapacityMW
	out.MinCapacityMW += other.MinCapacityMW
	out.CapacityMWCharging += other.CapacityMWCharging
	out.MinCapacityMWCharging += other.MinCapacityMWCharging
	out.MaxEnergyMWh += other.MaxEnergyMWh
	out.InitialEnergyMWh += other.InitialEnergyMWh
	out.FinalEnergyMWh += other.FinalEnergyMWh
	out.MinFinalEnergyMWh += other.MinFinalEnergyMWh
	if s.HasMidnightTarget() && other.HasMidnightTarget() {
		out.MidnightEnergyMWh += other.MidnightEnergyMWh
	}
	return out, nil
}
