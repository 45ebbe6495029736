package encoders

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"taxi-fare-model/models"
)

// TimeFeatureNames lists the columns TimeFeaturesEncoder emits, in order.
var TimeFeatureNames = []string{"dow", "hour", "month", "year"}

// TimeFeaturesEncoder converts each pickup timestamp from UTC to Location and
// emits its weekday (Monday=0), hour, month and year.
type TimeFeaturesEncoder struct {
	// Location is an IANA zone name, e.g. "America/New_York".
	Location string
}

func NewTimeFeaturesEncoder(location string) *TimeFeaturesEncoder {
	return &TimeFeaturesEncoder{Location: location}
}

// Fit learns nothing; it only resolves the zone so a bad name fails early.
func (e *TimeFeaturesEncoder) Fit([]models.Trip) error {
	_, err := e.location()
	return err
}

func (e *TimeFeaturesEncoder) Transform(trips []models.Trip) (*mat.Dense, error) {
	if len(trips) == 0 {
		return nil, ErrEmptyInput
	}
	loc, err := e.location()
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(trips), len(TimeFeatureNames), nil)
	for i, t := range trips {
		ts, err := ParsePickup(t.PickupDatetime)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		ts = ts.In(loc)
		// time.Weekday counts from Sunday; shift so Monday is 0.
		dow := (int(ts.Weekday()) + 6) % 7
		out.SetRow(i, []float64{float64(dow), float64(ts.Hour()), float64(ts.Month()), float64(ts.Year())})
	}
	return out, nil
}

func (e *TimeFeaturesEncoder) location() (*time.Location, error) {
	name := e.Location
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", name, err)
	}
	return loc, nil
}

// ParsePickup parses a stored pickup timestamp. The dataset layout
// ("2013-07-02 19:54:00 UTC") is tried first, then RFC 3339.
func ParsePickup(s string) (time.Time, error) {
	ts, err := time.Parse(models.TripTimeLayout, s)
	if err == nil {
		return ts, nil
	}
	if ts, rerr := time.Parse(time.RFC3339, s); rerr == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("parse pickup_datetime: %w", err)
}
