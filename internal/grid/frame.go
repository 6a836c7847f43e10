package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"
)

// Frame holds hourly time series for one region: a shared timestamp index
// plus named float64 columns of the same length. Column order is preserved
// so that stored CSVs are stable.
type Frame struct {
	index   []time.Time
	order   []string
	columns map[string][]float64
}

func NewFrame(index []time.Time) *Frame {
	return &Frame{index: index, columns: map[string][]float64{}}
}

func (f *Frame) Len() int           { return len(f.index) }
func (f *Frame) Index() []time.Time { return f.index }
func (f *Frame) Columns() []string  { return f.order }

func (f *Frame) Has(name string) bool {
	_, ok := f.columns[name]
	return ok
}

// Column returns the named series, or nil when absent.
func (f *Frame) Column(name string) []float64 {
	return f.columns[name]
}

// Ensure returns the named series, creating a zero column when absent.
func (f *Frame) Ensure(name string) []float64 {
	if col, ok := f.columns[name]; ok {
		return col
	}
	col := make([]float64, len(f.index))
	f.order = append(f.order, name)
	f.columns[name] = col
	return col
}

// Set stores a column, which must match the index length.
func (f *Frame) Set(name string, values []float64) error {
	if len(values) != len(f.index) {
		return fmt.Errorf("column %q has %d values for %d timestamps",
			name, len(values), len(f.index))
	}
	if _, ok := f.columns[name]; !ok {
		f.order = append(f.order, name)
	}
	f.columns[name] = values
	return nil
}

// Append concatenates another frame below this one. Used to chain multiple
// weather years into one model horizon; both frames must carry the same
// columns.
func (f *Frame) Append(other *Frame) error {
	if len(f.order) != len(other.order) {
		return fmt.Errorf("appending frame with %d columns to frame with %d",
			len(other.order), len(f.order))
	}
	for _, name := range f.order {
		col, ok := other.columns[name]
		if !ok {
			return fmt.Errorf("appended frame is missing column %q", name)
		}
		f.columns[name] = append(f.columns[name], col...)
	}
	f.index = append(f.index, other.index...)
	return nil
}

// UnionIndex merges sorted hourly indexes into one sorted index without
// duplicates.
func UnionIndex(indexes ...[]time.Time) []time.Time {
	out := []time.Time{}
	cursors := make([]int, len(indexes))
	for {
		var next time.Time
		found := false
		for i, idx := range indexes {
			if cursors[i] >= len(idx) {
				continue
			}
			if !found || idx[cursors[i]].Before(next) {
				next = idx[cursors[i]]
				found = true
			}
		}
		if !found {
			return out
		}
		for i, idx := range indexes {
			for cursors[i] < len(idx) && idx[cursors[i]].Equal(next) {
				cursors[i]++
			}
		}
		out = append(out, next)
	}
}

// Reindex maps the frame onto a new index. Timestamps present in the frame
// keep their values; short gaps are backfilled from the next known hour, up
// to maxBackfill steps, and anything beyond that becomes zero.
func (f *Frame) Reindex(index []time.Time, maxBackfill int) *Frame {
	// For each new position, the source row or -1.
	sourceRow := make([]int, len(index))
	j := 0
	for i, ts := range index {
		for j < len(f.index) && f.index[j].Before(ts) {
			j++
		}
		if j < len(f.index) && f.index[j].Equal(ts) {
			sourceRow[i] = j
		} else {
			sourceRow[i] = -1
		}
	}
	// Backfill limited gaps from the next known row.
	next := -1
	for i := len(index) - 1; i >= 0; i-- {
		if sourceRow[i] >= 0 {
			next = i
			continue
		}
		if next >= 0 && next-i <= maxBackfill {
			sourceRow[i] = sourceRow[next]
		}
	}

	out := NewFrame(index)
	for _, name := range f.order {
		src := f.columns[name]
		col := out.Ensure(name)
		for i, row := range sourceRow {
			if row >= 0 {
				col[i] = src[row]
			}
		}
	}
	return out
}

// AddWithFill sums two frames element-wise over the union of their columns,
// treating a missing column as zero. Both frames must share the index.
func (f *Frame) AddWithFill(other *Frame) (*Frame, error) {
	if len(f.index) != len(other.index) {
		return nil, fmt.Errorf("adding frames of different lengths %d and %d",
			len(f.index), len(other.index))
	}
	out := NewFrame(f.index)
	addColumns := func(src *Frame) {
		for _, name := range src.order {
			col := out.Ensure(name)
			for i, v := range src.columns[name] {
				col[i] += v
			}
		}
	}
	addColumns(f)
	addColumns(other)
	return out, nil
}

// FilterDays keeps only rows whose day of year satisfies the predicate.
func (f *Frame) FilterDays(keep func(dayOfYear int) bool) *Frame {
	rows := []int{}
	for i, ts := range f.index {
		if keep(ts.YearDay()) {
			rows = append(rows, i)
		}
	}
	index := make([]time.Time, len(rows))
	for i, row := range rows {
		index[i] = f.index[row]
	}
	out := NewFrame(index)
	for _, name := range f.order {
		src := f.columns[name]
		col := out.Ensure(name)
		for i, row := range rows {
			col[i] = src[row]
		}
	}
	return out
}

// Summer and winter splits used by seasonal statistics. Summer is the middle
// half of the year.
const (
	summerStartDay = 92  // ceil(365/4)
	summerEndDay   = 274 // ceil(3*365/4)
)

func (f *Frame) SummerSlice() *Frame {
	return f.FilterDays(func(day int) bool {
		return day >= summerStartDay && day < summerEndDay
	})
}

func (f *Frame) WinterSlice() *Frame {
	return f.FilterDays(func(day int) bool {
		return day < summerStartDay || day >= summerEndDay
	})
}

// Sum returns the column total, zero for a missing column.
func (f *Frame) Sum(name string) float64 {
	total := 0.0
	for _, v := range f.columns[name] {
		total += v
	}
	return total
}

// WriteCSV stores the frame with a leading Date column. Extra string
// columns (e.g. the price-setting source) are appended after the numeric
// ones.
func (f *Frame) WriteCSV(w io.Writer, extra map[string][]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	extraNames := make([]string, 0, len(extra))
	for name := range extra {
		extraNames = append(extraNames, name)
	}
	sort.Strings(extraNames)

	header := append([]string{"Date"}, f.order...)
	header = append(header, extraNames...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, ts := range f.index {
		row[0] = ts.Format(time.RFC3339)
		for c, name := range f.order {
			row[c+1] = fmtFloat(f.columns[name][i])
		}
		for c, name := range extraNames {
			row[1+len(f.order)+c] = extra[name][i]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// ReadCSV restores a frame written by WriteCSV. Columns that fail float
// parsing wholesale are returned as string columns instead.
func ReadCSV(r io.Reader) (*Frame, map[string][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV")
	}
	header := records[0]
	if len(header) == 0 || header[0] != "Date" {
		return nil, nil, fmt.Errorf("first CSV column must be Date, got %q", header)
	}
	rows := records[1:]

	index := make([]time.Time, len(rows))
	for i, rec := range rows {
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		index[i] = ts
	}

	frame := NewFrame(index)
	extra := map[string][]string{}
	for c := 1; c < len(header); c++ {
		values := make([]float64, len(rows))
		numeric := true
		for i, rec := range rows {
			v, err := strconv.ParseFloat(rec[c], 64)
			if err != nil {
				numeric = false
				break
			}
			values[i] = v
		}
		if numeric {
			if err := frame.Set(header[c], values); err != nil {
				return nil, nil, err
			}
			continue
		}
		strs := make([]string, len(rows))
		for i, rec := range rows {
			strs[i] = rec[c]
		}
		extra[header[c]] = strs
	}
	return frame, extra, nil
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
