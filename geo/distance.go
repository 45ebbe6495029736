package geo

import "math"

// EarthRadiusKm is the mean earth radius of the spherical approximation.
const EarthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres between two points
// given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusKm * CentralAngle(lat1, lon1, lat2, lon2)
}

// CentralAngle returns the angle in radians subtended at the centre of a
// sphere by two points given in degrees, using the haversine formula.
func CentralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
