package data

import (
	"fmt"
	"math"
	"math/rand"

	"taxi-fare-model/models"
)

// TrainTestSplit shuffles trips with a seeded source and holds out
// ceil(n*testSize) of them for testing.
func TrainTestSplit(trips []models.Trip, testSize float64, seed int64) (train, test []models.Trip, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size %v must be in (0, 1)", testSize)
	}
	n := len(trips)
	nTest := int(math.Ceil(float64(n) * testSize))
	if nTest >= n {
		return nil, nil, fmt.Errorf("cannot split %d rows with test size %v: empty training set", n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	test = make([]models.Trip, 0, nTest)
	train = make([]models.Trip, 0, n-nTest)
	for i, idx := range perm {
		if i < nTest {
			test = append(test, trips[idx])
		} else {
			train = append(train, trips[idx])
		}
	}
	return train, test, nil
}
