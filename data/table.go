package data

import (
	"errors"

	"taxi-fare-model/models"
)

var (
	ErrUnknownSource = errors.New("unknown data source")
	ErrMissingColumn = errors.New("missing required column")
)

// Table is a set of trip rows read from one source.
type Table struct {
	Rows []models.Trip
	// HasFare reports whether the source carried a fare_amount column.
	// Inference-time tables do not.
	HasFare bool
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
