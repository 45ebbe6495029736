package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"taxi-fare-model/models"
)

const (
	colKey              = "key"
	colFare             = "fare_amount"
	colPickupDatetime   = "pickup_datetime"
	colPickupLongitude  = "pickup_longitude"
	colPickupLatitude   = "pickup_latitude"
	colDropoffLongitude = "dropoff_longitude"
	colDropoffLatitude  = "dropoff_latitude"
	colPassengerCount   = "passenger_count"
)

var requiredColumns = []string{
	colPickupDatetime,
	colPickupLongitude,
	colPickupLatitude,
	colDropoffLongitude,
	colDropoffLatitude,
	colPassengerCount,
}

// ReadCSV parses at most nrows trip rows (all rows when nrows <= 0) from a CSV
// stream with a header line. Columns are matched by name; extra columns are
// ignored. Empty fields mark the row as Missing instead of failing, so that
// Clean can drop it.
func ReadCSV(r io.Reader, nrows int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	_, hasFare := index[colFare]

	table := &Table{HasFare: hasFare}
	line := 1
	for nrows <= 0 || len(table.Rows) < nrows {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		p := rowParser{record: record, index: index, line: line}
		trip := models.Trip{
			PickupDatetime:   p.str(colPickupDatetime),
			PickupLongitude:  p.float(colPickupLongitude),
			PickupLatitude:   p.float(colPickupLatitude),
			DropoffLongitude: p.float(colDropoffLongitude),
			DropoffLatitude:  p.float(colDropoffLatitude),
			PassengerCount:   p.int(colPassengerCount),
		}
		if _, ok := index[colKey]; ok {
			trip.Key = p.str(colKey)
		}
		if hasFare {
			trip.FareAmount = p.float(colFare)
		}
		if p.err != nil {
			return nil, p.err
		}
		trip.Missing = p.missing
		table.Rows = append(table.Rows, trip)
	}
	return table, nil
}

// rowParser keeps the first conversion error of a record and whether any
// field was empty.
type rowParser struct {
	record  []string
	index   map[string]int
	line    int
	missing bool
	err     error
}

func (p *rowParser) str(col string) string {
	v := strings.TrimSpace(p.record[p.index[col]])
	if v == "" {
		p.missing = true
	}
	return v
}

func (p *rowParser) float(col string) float64 {
	v := p.str(col)
	if v == "" || p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.err = fmt.Errorf("line %d: column %s: %w", p.line, col, err)
		return 0
	}
	if math.IsNaN(f) {
		p.missing = true
	}
	return f
}

func (p *rowParser) int(col string) int {
	v := p.str(col)
	if v == "" || p.err != nil {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err == nil {
		return n
	}
	// Integer columns with gaps are often written as floats ("1.0").
	f, ferr := strconv.ParseFloat(v, 64)
	if ferr != nil || f != math.Trunc(f) {
		p.err = fmt.Errorf("line %d: column %s: %w", p.line, col, err)
		return 0
	}
	return int(f)
}
