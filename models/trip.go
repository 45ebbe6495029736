package models

// TripTimeLayout is how pickup timestamps are stored: UTC wall clock with a zone suffix.
const TripTimeLayout = "2006-01-02 15:04:05 UTC"

type Trip struct {
	Key              string  `json:"key"`
	FareAmount       float64 `json:"fare_amount"`
	PickupDatetime   string  `json:"pickup_datetime"`
	PickupLongitude  float64 `json:"pickup_longitude"`
	PickupLatitude   float64 `json:"pickup_latitude"`
	DropoffLongitude float64 `json:"dropoff_longitude"`
	DropoffLatitude  float64 `json:"dropoff_latitude"`
	PassengerCount   int     `json:"passenger_count"`

	// Missing is set when the source row had at least one empty field.
	Missing bool `json:"-"`
}

// Fares returns the fare column of trips.
func Fares(trips []Trip) []float64 {
	y := make([]float64, len(trips))
	for i, t := range trips {
		y[i] = t.FareAmount
	}
	return y
}
