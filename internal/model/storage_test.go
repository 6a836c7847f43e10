package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStorage() Storage {
	s := NewStorage(StoragePumped, UseElectricity)
	s.CapacityMW = 1000
	s.MinCapacityMW = 1000
	s.CapacityMWCharging = 1000
	s.MinCapacityMWCharging = 1000
	s.MaxEnergyMWh = 6000
	s.InitialEnergyMWh = 3000
	s.FinalEnergyMWh = 3000
	s.MinFinalEnergyMWh = 3000
	s.ChargingEfficiency = 0.85
	s.DischargingEfficiency = 0.9
	s.Economics = validEconomics()
	return s
}

func TestStorageValidate(t *testing.T) {
	s := validStorage()
	require.NoError(t, s.Validate())

	bad := s
	bad.ChargingEfficiency = 1.2
	assert.Error(t, bad.Validate())

	bad = s
	bad.InitialEnergyMWh = 10000
	assert.Error(t, bad.Validate())

	bad = s
	bad.MinFinalEnergyMWh = 5000
	assert.Error(t, bad.Validate())
}

func TestStorageMidnightSentinel(t *testing.T) {
	s := validStorage()
	assert.False(t, s.HasMidnightTarget())

	s.MidnightEnergyMWh = 0
	assert.True(t, s.HasMidnightTarget())
}

func TestKeepRatePerHour(t *testing.T) {
	s := validStorage()
	assert.Equal(t, 1.0, s.KeepRatePerHour())

	s.LossRatePerDay = 0.1
	keep := s.KeepRatePerHour()
	// 24 hourly applications reproduce the daily loss.
	assert.InDelta(t, 0.9, math.Pow(keep, 24), 1e-9)
}

func TestStorageReserveAvailability(t *testing.T) {
	assert.True(t, StorageReservoir.AvailableForReserves())
	assert.True(t, StoragePumpedOpen.AvailableForReserves())
	assert.False(t, StorageLiIon.AvailableForReserves())
	assert.False(t, StorageDSR.AvailableForReserves())
}

func TestStorageAdd(t *testing.T) {
	a := validStorage()
	b := validStorage()
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, sum.CapacityMW)
	assert.Equal(t, 12000.0, sum.MaxEnergyMWh)

	other := validStorage()
	other.Type = StorageLiIon
	_, err = a.Add(other)
	assert.Error(t, err)
}
