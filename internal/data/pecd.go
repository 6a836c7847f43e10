// Package data loads the PECD input datasets (hourly demand, wind and solar
// capacity factors, hydro inflows) and transforms raw demand estimates into
// the parquet layout the loader consumes.
package data

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// DefaultTargetYear selects the PECD projection vintage embedded in the
// input file names.
const DefaultTargetYear = 2025

// PecdLoader reads PECD parquet files from a data directory. Series are
// cached in memory since sweeps re-read the same weather years for every
// scenario.
type PecdLoader struct {
	dataDir string
	// Projection year in the PECD file names.
	TargetYear int
	Logger     *slog.Logger

	mu    sync.RWMutex
	cache map[string][]float64
}

func NewPecdLoader(dataDir string) *PecdLoader {
	return &PecdLoader{
		dataDir:    dataDir,
		TargetYear: DefaultTargetYear,
		cache:      map[string][]float64{},
	}
}

func (l *PecdLoader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Row layouts of the PECD parquet files.
type demandRow struct {
	Country string  `parquet:"country"`
	Year    int32   `parquet:"year"`
	Month   int32   `parquet:"month"`
	Day     int32   `parquet:"day"`
	Hour    int32   `parquet:"hour"`
	DemMW   float64 `parquet:"dem_MW"`
}

type capacityFactorRow struct {
	Country string  `parquet:"country"`
	Year    int32   `parquet:"year"`
	Month   int32   `parquet:"month"`
	Day     int32   `parquet:"day"`
	Hour    int32   `parquet:"hour"`
	CF      float64 `parquet:"cf"`
}

type inflowRow struct {
	Country    string  `parquet:"country"`
	Year       int32   `parquet:"year"`
	Week       int32   `parquet:"Week"`
	Technology string  `parquet:"technology"`
	InflowGWh  float64 `parquet:"inflow_GWh"`
}

// HoursInYear returns 8760 or 8784 for leap years.
func HoursInYear(year int) int {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / time.Hour)
}

// HourlyIndex returns the UTC timestamps of every hour of the year.
func HourlyIndex(year int) []time.Time {
	index := make([]time.Time, HoursInYear(year))
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range index {
		index[i] = t
		t = t.Add(time.Hour)
	}
	return index
}

// pecdCountry maps regions to the country codes used in PECD files.
func pecdCountry(country model.Region) string {
	if country == model.GreatBritain {
		return "UK"
	}
	return string(country)
}

// hourPosition maps a PECD month/day/hour triple onto the hour offset in the
// common model year. PECD hours are 1-based. Returns -1 for dates the common
// year does not have (Feb 29 data in a non-leap year).
func hourPosition(commonYear int, month, day, hour int32) int {
	t := time.Date(commonYear, time.Month(month), int(day), int(hour)-1, 0, 0, 0, time.UTC)
	if t.Year() != commonYear || t.Month() != time.Month(month) || t.Day() != int(day) {
		return -1
	}
	start := time.Date(commonYear, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(start) / time.Hour)
}

// pecdWeeks labels every hour of the year with the PECD week number. Weeks
// start on Mondays but the year always opens with week 1, so this is not an
// ISO week number and the count can reach 54.
func pecdWeeks(year int) []int32 {
	index := HourlyIndex(year)
	weeks := make([]int32, len(index))
	week := int32(0)
	for i, t := range index {
		if t.Weekday() == time.Monday && t.Hour() == 0 {
			week++
		}
		weeks[i] = week
	}
	if len(weeks) > 0 && weeks[0] == 0 {
		for i := range weeks {
			weeks[i]++
		}
	}
	return weeks
}

func (l *PecdLoader) cached(key string, load func() ([]float64, error)) ([]float64, error) {
	l.mu.RLock()
	series, ok := l.cache[key]
	l.mu.RUnlock()
	if ok {
		return series, nil
	}

	series, err := load()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cache[key] = series
	l.mu.Unlock()
	return series, nil
}

func readRows[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}

func filterYear[T any](rows []T, year func(T) int32, pecdYear int,
	path string) ([]T, error) {
	seen := map[int32]bool{}
	out := rows[:0:0]
	for _, row := range rows {
		y := year(row)
		seen[y] = true
		if int(y) == pecdYear {
			out = append(out, row)
		}
	}
	if len(out) == 0 {
		years := make([]string, 0, len(seen))
		for y := range seen {
			years = append(years, fmt.Sprintf("%d", y))
		}
		return nil, fmt.Errorf("PECD year %d unavailable in %s, choose one of %s",
			pecdYear, path, strings.Join(years, ", "))
	}
	return out, nil
}

// Demand loads the hourly national demand of one country for the given
// weather year, retargeted onto the common model year. Returns nil without
// error when the country is absent or all zero.
func (l *PecdLoader) Demand(country model.Region, pecdYear, commonYear int) ([]float64, error) {
	path := filepath.Join(l.dataDir, "pecd",
		fmt.Sprintf("PECD-country-demand_national_estimates-%d.parquet", l.TargetYear))
	key := fmt.Sprintf("%s|%d|%d|%s", path, pecdYear, commonYear, country)

	return l.cached(key, func() ([]float64, error) {
		rows, err := readRows[demandRow](path)
		if err != nil {
			return nil, err
		}
		rows, err = filterYear(rows, func(r demandRow) int32 { return r.Year }, pecdYear, path)
		if err != nil {
			return nil, err
		}

		series := make([]float64, HoursInYear(commonYear))
		code := pecdCountry(country)
		found, total := false, 0.0
		for _, row := range rows {
			if row.Country != code {
				continue
			}
			found = true
			if pos := hourPosition(commonYear, row.Month, row.Day, row.Hour); pos >= 0 {
				series[pos] = row.DemMW
				total += row.DemMW
			}
		}
		if !found {
			l.logger().Warn("PECD demand unavailable", "country", country)
			return nil, nil
		}
		if total == 0 {
			l.logger().Warn("PECD demand is zero", "country", country)
			return nil, nil
		}
		return series, nil
	})
}

func capacityFactorFile(source model.BasicSourceType) (string, bool) {
	switch source {
	case model.Offshore:
		return "Wind_Offshore", true
	case model.Onshore:
		return "Wind_Onshore", true
	case model.Solar:
		return "LFSolarPV", true
	}
	return "", false
}

// CapacityFactors loads the hourly capacity factor series of a variable
// renewable source. Returns nil without error when the country is absent
// from the file.
func (l *PecdLoader) CapacityFactors(source model.BasicSourceType, country model.Region,
	pecdYear, commonYear int) ([]float64, error) {
	series, ok := capacityFactorFile(source)
	if !ok {
		return nil, fmt.Errorf("no PECD capacity factors for source %q", source)
	}
	path := filepath.Join(l.dataDir, "pecd",
		fmt.Sprintf("PECD-ERAA2023-%s-%d.parquet", series, l.TargetYear))
	key := fmt.Sprintf("%s|%d|%d|%s", path, pecdYear, commonYear, country)

	return l.cached(key, func() ([]float64, error) {
		rows, err := readRows[capacityFactorRow](path)
		if err != nil {
			return nil, err
		}
		rows, err = filterYear(rows, func(r capacityFactorRow) int32 { return r.Year },
			pecdYear, path)
		if err != nil {
			return nil, err
		}

		out := make([]float64, HoursInYear(commonYear))
		code := pecdCountry(country)
		found := false
		for _, row := range rows {
			if row.Country != code {
				continue
			}
			found = true
			if pos := hourPosition(commonYear, row.Month, row.Day, row.Hour); pos >= 0 {
				out[pos] = row.CF
			}
		}
		if !found {
			return nil, nil
		}
		return out, nil
	})
}

// inflowTechnologies maps PECD technology labels to the hourly inflow
// columns of the grid frame.
var inflowTechnologies = map[string]string{
	"ror":         grid.KeyHydroInflowRoR,
	"pondage":     grid.KeyHydroInflowPondage,
	"reservoir":   grid.KeyHydroInflowReservoir,
	"pumped_open": grid.KeyHydroInflowPumpedOpen,
}

// HydroInflows loads the weekly hydro inflow series of one country and
// spreads them into hourly averages, keyed by inflow column. Technologies
// absent from the data are missing from the map.
func (l *PecdLoader) HydroInflows(country model.Region,
	pecdYear, commonYear int) (map[string][]float64, error) {
	out := map[string][]float64{}
	for _, series := range []string{"RoR+pondage", "reservoir+pumped"} {
		path := filepath.Join(l.dataDir, "pecd",
			fmt.Sprintf("PECD-ERAA2023-%s-inflows-%d.parquet", series, l.TargetYear))
		if err := l.loadInflowFile(path, country, pecdYear, commonYear, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *PecdLoader) loadInflowFile(path string, country model.Region,
	pecdYear, commonYear int, out map[string][]float64) error {
	rows, err := readRows[inflowRow](path)
	if err != nil {
		return err
	}
	rows, err = filterYear(rows, func(r inflowRow) int32 { return r.Year }, pecdYear, path)
	if err != nil {
		return err
	}

	// Average inflow per technology and PECD week. The first and last
	// weeks are normalized in the data, so the flat division is correct
	// for the partial weeks too.
	const hoursPerWeek = 24 * 7
	code := pecdCountry(country)
	weekly := map[string]map[int32]float64{}
	for _, row := range rows {
		if row.Country != code || row.Technology == "pumped_closed" {
			continue
		}
		key, ok := inflowTechnologies[row.Technology]
		if !ok {
			continue
		}
		if weekly[key] == nil {
			weekly[key] = map[int32]float64{}
		}
		weekly[key][row.Week] += row.InflowGWh / hoursPerWeek * 1000
	}

	weeks := pecdWeeks(commonYear)
	for key, perWeek := range weekly {
		series := make([]float64, len(weeks))
		for i, week := range weeks {
			series[i] = perWeek[week]
		}
		out[key] = series
	}
	return nil
}
