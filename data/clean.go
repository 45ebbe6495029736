package data

import (
	"taxi-fare-model/geo"
	"taxi-fare-model/models"
)

const (
	MinFare       = 0.0
	MaxFare       = 4000.0
	MinPassengers = 0
	MaxPassengers = 8 // exclusive
)

// Clean returns a new table holding only the rows of t that pass every filter:
// no empty fields, no (0,0) endpoints, fare in [MinFare, MaxFare] when the table
// has fares, passenger count in [MinPassengers, MaxPassengers), and both
// endpoints inside the NYC boxes. Dropped rows are not reported.
func Clean(t *Table) *Table {
	out := &Table{HasFare: t.HasFare, Rows: make([]models.Trip, 0, len(t.Rows))}
	for _, trip := range t.Rows {
		if keep(trip, t.HasFare) {
			out.Rows = append(out.Rows, trip)
		}
	}
	return out
}

func keep(t models.Trip, hasFare bool) bool {
	if t.Missing {
		return false
	}
	if t.PickupLatitude == 0 && t.PickupLongitude == 0 {
		return false
	}
	if t.DropoffLatitude == 0 && t.DropoffLongitude == 0 {
		return false
	}
	if hasFare && (t.FareAmount < MinFare || t.FareAmount > MaxFare) {
		return false
	}
	if t.PassengerCount < MinPassengers || t.PassengerCount >= MaxPassengers {
		return false
	}
	return geo.PickupBounds.Contains(t.PickupLatitude, t.PickupLongitude) &&
		geo.DropoffBounds.Contains(t.DropoffLatitude, t.DropoffLongitude)
}
