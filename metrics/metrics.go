package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("predicted and actual lengths differ")
	ErrEmpty          = errors.New("no values to score")
)

// RMSE returns the root mean squared error between pred and actual.
func RMSE(pred, actual []float64) (float64, error) {
	if err := check(pred, actual); err != nil {
		return 0, err
	}
	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, actual)
	return math.Sqrt(floats.Dot(diff, diff) / float64(len(diff))), nil
}

// R2 returns the coefficient of determination of pred against actual. A
// constant actual vector scores 1 when matched exactly and 0 otherwise.
func R2(pred, actual []float64) (float64, error) {
	if err := check(pred, actual); err != nil {
		return 0, err
	}
	mean := stat.Mean(actual, nil)
	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - pred[i]
		ssRes += r * r
		d := actual[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

func check(pred, actual []float64) error {
	if len(pred) != len(actual) {
		return ErrLengthMismatch
	}
	if len(pred) == 0 {
		return ErrEmpty
	}
	return nil
}
