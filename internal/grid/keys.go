package grid

import (
	"fmt"

	"grid-dispatch/internal/model"
)

// Column names of the hourly frame shared by optimization outputs and
// statistics. Values are also the CSV headers, so renaming breaks stored
// solutions.
const (
	KeyLoad                  string = "Load"
	KeyLoadBeforeFlexibility string = "Load_Before_Flexibility"
	KeyLoadShift             string = "Load_Shift"

	KeyImport    string = "Import"
	KeyExport    string = "Export"
	KeyNetImport string = "Net_Import"

	KeySolar        string = "Solar"
	KeyWind         string = "Wind"
	KeyWindOnshore  string = "Wind onshore"
	KeyWindOffshore string = "Wind offshore"
	KeyNuclear      string = "Nuclear"
	KeyHydro        string = "Hydro"

	KeyVRE                 string = "VRE"
	KeyResidual            string = "Residual"
	KeyFlexible            string = "Flexible"
	KeyProduction          string = "Production"
	KeyTotalWithoutStorage string = "Total_Without_Storage"
	KeyTotal               string = "Total"
	KeyStorable            string = "Storable"
	KeyCurtailment         string = "Curtailment"
	KeyShortage            string = "Shortage"
	KeyCharging            string = "Charging"
	KeyDischarging         string = "Discharging"

	// Natural inflows into hydro storage, in MW equivalents.
	KeyHydroInflowRoR        string = "Hydro_Inflow_ROR"
	KeyHydroInflowPondage    string = "Hydro_Inflow_Pondage"
	KeyHydroInflowReservoir  string = "Hydro_Inflow_Reservoir"
	KeyHydroInflowPumpedOpen string = "Hydro_Inflow_Pumped_Open"

	KeyPrice       string = "Price"
	KeyPriceExport string = "Price_Export"
	KeyPriceImport string = "Price_Import"
	// The source that sets the price in each hour. Stored as a string
	// column next to the frame, not inside it.
	KeyPriceType string = "Price_Type"
)

// BasicKey returns the production column of a basic source type.
func BasicKey(t model.BasicSourceType) string {
	switch t {
	case model.Solar:
		return KeySolar
	case model.Onshore:
		return KeyWindOnshore
	case model.Offshore:
		return KeyWindOffshore
	case model.Wind:
		return KeyWind
	case model.Nuclear:
		return KeyNuclear
	case model.Hydro:
		return KeyHydro
	}
	panic(fmt.Sprintf("unsupported basic source type %q", t))
}

// FlexibleBasicPredefinedKey holds the fixed curve of a flexible basic
// source, before any optimized decrease.
func FlexibleBasicPredefinedKey(t model.BasicSourceType) string {
	return BasicKey(t) + "_Predefined"
}

// FlexibleBasicDecreaseKey holds the optimized decrease below the curve.
func FlexibleBasicDecreaseKey(t model.BasicSourceType) string {
	return BasicKey(t) + "_Decrease"
}

func FlexibleKey(t model.FlexibleSourceType) string {
	return "Flexible_" + string(t)
}

func ChargingKey(t model.StorageType) string {
	return KeyCharging + "_" + string(t)
}

func DischargingKey(t model.StorageType) string {
	return KeyDischarging + "_" + string(t)
}

func StateOfChargeKey(t model.StorageType) string {
	return "State_Of_Charge_" + string(t)
}

func ImportKey(from model.Region) string {
	return KeyImport + "_" + string(from)
}

func ExportKey(to model.Region) string {
	return KeyExport + "_" + string(to)
}

// RampUpKey holds the positive part of the hour-over-hour output increase
// of a ramp-limited source.
func RampUpKey(key string) string {
	return "Ramp_Up_" + key
}

// SmallThreshold is the tolerance below which optimized hourly values are
// treated as zero. The simplex stops with errors in the order of watts.
const SmallThreshold = 0.001
