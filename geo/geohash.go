package geo

import (
	"github.com/mmcloughlin/geohash"
)

// TripPrecision is the geohash length stored for trip endpoints (~150m cells).
const TripPrecision = 7

// Encode coordinates into a geohash with specified precision.
func Encode(lat, lon float64, precision uint) string {
	return geohash.EncodeWithPrecision(lat, lon, precision)
}

// Area returns hash followed by the eight cells around it, so that a prefix
// search over the result also catches points just across a cell edge.
func Area(hash string) []string {
	return append([]string{hash}, geohash.Neighbors(hash)...)
}
