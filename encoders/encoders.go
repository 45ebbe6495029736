// Package encoders holds the fit/transform steps of the fare pipeline. Trip
// transformers turn raw trips into numeric columns; matrix transformers
// rescale or expand those columns.
package encoders

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"taxi-fare-model/models"
)

var (
	ErrNotFitted      = errors.New("transformer is not fitted")
	ErrColumnMismatch = errors.New("column count differs from fit")
	ErrEmptyInput     = errors.New("empty input")
)

// TripTransformer derives numeric columns from trips.
type TripTransformer interface {
	Fit(trips []models.Trip) error
	Transform(trips []models.Trip) (*mat.Dense, error)
}

// MatrixTransformer maps one numeric matrix to another, learning its
// parameters in Fit.
type MatrixTransformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// FitTransform fits t on X and transforms X.
func FitTransform(t MatrixTransformer, X mat.Matrix) (*mat.Dense, error) {
	if err := t.Fit(X); err != nil {
		return nil, err
	}
	return t.Transform(X)
}
