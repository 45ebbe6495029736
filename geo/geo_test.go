package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine_SamePointIsZero(t *testing.T) {
	points := [][2]float64{
		{40.7128, -74.0060},
		{0, 0},
		{-33.8688, 151.2093},
		{89.9, 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Haversine(p[0], p[1], p[0], p[1]))
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := [2]float64{40.7128, -74.0060}
	b := [2]float64{40.7308, -73.9973}

	ab := Haversine(a[0], a[1], b[0], b[1])
	ba := Haversine(b[0], b[1], a[0], a[1])

	assert.InDelta(t, ab, ba, 1e-12)
	// Lower Manhattan to the Village is about 2km.
	assert.InDelta(t, 2.13, ab, 0.05)
}

func TestHaversine_OneDegreeOfLatitude(t *testing.T) {
	d := Haversine(40, -74, 41, -74)
	assert.InDelta(t, EarthRadiusKm*3.141592653589793/180, d, 1e-9)
}

func TestBounds_Contains(t *testing.T) {
	tests := []struct {
		name   string
		bounds Bounds
		lat    float64
		lon    float64
		want   bool
	}{
		{"inside pickup", PickupBounds, 40.75, -73.98, true},
		{"pickup west edge inclusive", PickupBounds, 40.75, -74.3, true},
		{"pickup too far west", PickupBounds, 40.75, -74.31, false},
		{"dropoff west of -74", DropoffBounds, 40.75, -74.1, false},
		{"dropoff east edge inclusive", DropoffBounds, 42, -72.9, true},
		{"null island", PickupBounds, 0, 0, false},
		{"south of box", DropoffBounds, 39.99, -73.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bounds.Contains(tt.lat, tt.lon))
		})
	}
}

func TestEncode(t *testing.T) {
	hash := Encode(40.7128, -74.0060, TripPrecision)
	assert.Len(t, hash, TripPrecision)
	assert.Equal(t, "dr5r", hash[:4])
}

func TestArea(t *testing.T) {
	hash := Encode(40.7128, -74.0060, 5)
	cells := Area(hash)

	require.Len(t, cells, 9)
	assert.Equal(t, hash, cells[0])
	seen := map[string]bool{}
	for _, c := range cells {
		assert.Len(t, c, 5)
		seen[c] = true
	}
	assert.Len(t, seen, 9, "cells are distinct")
}
