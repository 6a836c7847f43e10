package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// TransformDemandEstimates converts the wide national demand-estimates CSV
// into the long parquet layout consumed by PecdLoader. The input has one row
// per country and hour with one column per weather year:
//
//	country,month,day,hour,1995,1996,...,2019
//
// and the output has one parquet row per country, weather year and hour.
func TransformDemandEstimates(r io.Reader, w io.Writer) error {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading demand estimates header: %w", err)
	}
	if len(header) < 5 || header[0] != "country" || header[1] != "month" ||
		header[2] != "day" || header[3] != "hour" {
		return fmt.Errorf("unexpected demand estimates header %v", header)
	}
	years := make([]int32, len(header)-4)
	for i, name := range header[4:] {
		year, err := strconv.Atoi(name)
		if err != nil {
			return fmt.Errorf("weather year column %q: %w", name, err)
		}
		years[i] = int32(year)
	}

	writer := parquet.NewGenericWriter[demandRow](w)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading demand estimates: %w", err)
		}
		line++

		if err := transformDemandRecord(writer, record, years); err != nil {
			return fmt.Errorf("demand estimates line %d: %w", line, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writing demand estimates parquet: %w", err)
	}
	return nil
}

func transformDemandRecord(writer *parquet.GenericWriter[demandRow],
	record []string, years []int32) error {
	month, err := parseInt32(record[1])
	if err != nil {
		return fmt.Errorf("month: %w", err)
	}
	day, err := parseInt32(record[2])
	if err != nil {
		return fmt.Errorf("day: %w", err)
	}
	hour, err := parseInt32(record[3])
	if err != nil {
		return fmt.Errorf("hour: %w", err)
	}

	rows := make([]demandRow, len(years))
	for i, year := range years {
		demand, err := strconv.ParseFloat(record[4+i], 64)
		if err != nil {
			return fmt.Errorf("demand value for year %d: %w", year, err)
		}
		rows[i] = demandRow{
			Country: record[0],
			Year:    year,
			Month:   month,
			Day:     day,
			Hour:    hour,
			DemMW:   demand,
		}
	}
	_, err = writer.Write(rows)
	return err
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.Atoi(s)
	return int32(v), err
}
