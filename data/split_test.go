package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-fare-model/models"
)

func tripsWithKeys(n int) []models.Trip {
	trips := make([]models.Trip, n)
	for i := range trips {
		trips[i] = validTrip()
		trips[i].Key = string(rune('a' + i%26)) + string(rune('0'+i/26))
	}
	return trips
}

func TestTrainTestSplit(t *testing.T) {
	trips := tripsWithKeys(101)

	train, test, err := TrainTestSplit(trips, 0.2, 7)
	require.NoError(t, err)

	assert.Len(t, test, 21, "ceil(101*0.2)")
	assert.Len(t, train, 80)

	seen := map[string]bool{}
	for _, tr := range append(append([]models.Trip{}, train...), test...) {
		assert.False(t, seen[tr.Key], "duplicate %s", tr.Key)
		seen[tr.Key] = true
	}
	assert.Len(t, seen, 101)
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	trips := tripsWithKeys(50)

	a, _, err := TrainTestSplit(trips, 0.3, 1)
	require.NoError(t, err)
	b, _, err := TrainTestSplit(trips, 0.3, 1)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTrainTestSplit_Invalid(t *testing.T) {
	_, _, err := TrainTestSplit(tripsWithKeys(10), 0, 1)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(tripsWithKeys(10), 1, 1)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(tripsWithKeys(1), 0.2, 1)
	assert.Error(t, err, "a single row leaves nothing to train on")
}
