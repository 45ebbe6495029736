package encoders

import (
	"gonum.org/v1/gonum/mat"

	"taxi-fare-model/geo"
	"taxi-fare-model/models"
)

// DistanceTransformer emits one column: the great-circle distance between
// each trip's pickup and dropoff on a sphere of the given radius.
type DistanceTransformer struct {
	// RadiusKm defaults to geo.EarthRadiusKm when zero.
	RadiusKm float64
}

// Fit learns nothing.
func (DistanceTransformer) Fit([]models.Trip) error { return nil }

func (d DistanceTransformer) Transform(trips []models.Trip) (*mat.Dense, error) {
	if len(trips) == 0 {
		return nil, ErrEmptyInput
	}
	radius := d.RadiusKm
	if radius == 0 {
		radius = geo.EarthRadiusKm
	}
	out := mat.NewDense(len(trips), 1, nil)
	for i, t := range trips {
		out.Set(i, 0, radius*geo.CentralAngle(t.PickupLatitude, t.PickupLongitude, t.DropoffLatitude, t.DropoffLongitude))
	}
	return out, nil
}
