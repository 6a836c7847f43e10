package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"grid-dispatch/internal/grid"
	"grid-dispatch/internal/model"
)

// ReadSummary parses a long summary stats CSV produced by a sweep run.
func ReadSummary(r io.Reader) ([]grid.StatRow, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading summary header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"name", "region", "season", "source", "stat", "val"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("summary CSV is missing column %q", name)
		}
	}

	var rows []grid.StatRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading summary: %w", err)
		}
		val, err := strconv.ParseFloat(record[col["val"]], 64)
		if err != nil {
			return nil, fmt.Errorf("summary value %q: %w", record[col["val"]], err)
		}
		rows = append(rows, grid.StatRow{
			Name:   record[col["name"]],
			Region: model.Region(record[col["region"]]),
			Season: grid.Season(record[col["season"]]),
			Source: record[col["source"]],
			Stat:   grid.StatType(record[col["stat"]]),
			Val:    val,
		})
	}
	return rows, nil
}

// LoadSummaryCapacities reads the year-round capacity_GW values of one
// scenario and region from a summary CSV. Used to pin capacities of a
// follow-up run to the optimized build-out of a previous one.
func LoadSummaryCapacities(path, scenario string,
	region model.Region) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadSummary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	capacities := map[string]float64{}
	scenarioSeen := false
	for _, row := range rows {
		if row.Name != scenario {
			continue
		}
		scenarioSeen = true
		if row.Region != region || row.Season != grid.SeasonYear ||
			row.Stat != grid.StatCapacityGW {
			continue
		}
		capacities[row.Source] = row.Val
	}
	if !scenarioSeen {
		return nil, fmt.Errorf("scenario %q not present in %s", scenario, path)
	}
	return capacities, nil
}

// WriteSummary writes stat rows as a long-form CSV.
func WriteSummary(w io.Writer, rows []grid.StatRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "region", "season", "source", "stat", "val"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Name, string(row.Region), string(row.Season),
			row.Source, string(row.Stat),
			strconv.FormatFloat(row.Val, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// AppendSummary merges new rows into an existing long summary CSV, creating
// it when absent, and rewrites the matching pivot CSV next to it. The pivot
// spreads sources into columns for spreadsheet-friendly reading.
func AppendSummary(path string, rows []grid.StatRow) error {
	existing, err := readSummaryIfPresent(path)
	if err != nil {
		return err
	}
	all := append(existing, rows...)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteSummary(f, all); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	pivotPath := strings.TrimSuffix(path, ".csv") + "-pivot.csv"
	p, err := os.Create(pivotPath)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := writePivot(p, all); err != nil {
		return fmt.Errorf("writing %s: %w", pivotPath, err)
	}
	return p.Close()
}

func readSummaryIfPresent(path string) ([]grid.StatRow, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadSummary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// writePivot emits the wide form: one row per (name, region, season, stat),
// one column per source.
func writePivot(w io.Writer, rows []grid.StatRow) error {
	type pivotKey struct {
		name   string
		region model.Region
		season grid.Season
		stat   grid.StatType
	}

	sources := []string{}
	seenSource := map[string]bool{}
	keys := []pivotKey{}
	values := map[pivotKey]map[string]float64{}
	for _, row := range rows {
		if !seenSource[row.Source] {
			seenSource[row.Source] = true
			sources = append(sources, row.Source)
		}
		key := pivotKey{row.Name, row.Region, row.Season, row.Stat}
		if values[key] == nil {
			values[key] = map[string]float64{}
			keys = append(keys, key)
		}
		values[key][row.Source] = row.Val
	}
	sort.Strings(sources)

	writer := csv.NewWriter(w)
	header := append([]string{"name", "region", "season", "stat"}, sources...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, key := range keys {
		record := []string{key.name, string(key.region), string(key.season), string(key.stat)}
		for _, source := range sources {
			if val, ok := values[key][source]; ok {
				record = append(record, strconv.FormatFloat(val, 'g', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
