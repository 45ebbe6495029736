package geo

// Bounds is a latitude/longitude box, inclusive on every edge.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// NYC boxes used when cleaning training data. Dropoffs are held to a tighter
// western edge than pickups.
var (
	PickupBounds  = Bounds{MinLat: 40, MaxLat: 42, MinLon: -74.3, MaxLon: -72.9}
	DropoffBounds = Bounds{MinLat: 40, MaxLat: 42, MinLon: -74, MaxLon: -72.9}
)

// Contains checks if the point is within the bounds
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
