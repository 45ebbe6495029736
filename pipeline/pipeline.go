// Package pipeline composes the fare model: a distance branch (haversine
// distance, standardised) and a time branch (pickup weekday, hour, month and
// year, one-hot encoded) are fitted side by side, their columns joined, and
// the result fed to a linear SVR. Trip fields neither branch reads, such as
// the key and the passenger count, are dropped.
package pipeline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"taxi-fare-model/encoders"
	"taxi-fare-model/models"
	"taxi-fare-model/svm"
)

var (
	ErrNotFitted     = errors.New("pipeline is not fitted")
	ErrMissingValues = errors.New("trips contain missing values")
	ErrShape         = errors.New("trip and target counts differ")
)

// Params are the tunable settings of a pipeline.
type Params struct {
	C        float64
	Tol      float64
	Epsilon  float64
	MaxIter  int
	Seed     int64
	TimeZone string
}

func DefaultParams() Params {
	return Params{
		C:        svm.DefaultC,
		Tol:      svm.DefaultTol,
		MaxIter:  svm.DefaultMaxIter,
		TimeZone: "America/New_York",
	}
}

// Pipeline is the fitted fare model. It is gob-encodable and must not be
// modified after Fit; Predict is safe for concurrent use.
type Pipeline struct {
	Distance encoders.DistanceTransformer
	Scaler   encoders.StandardScaler
	Time     encoders.TimeFeaturesEncoder
	OneHot   encoders.OneHotEncoder
	Model    svm.LinearSVR
	Fitted   bool
}

// New returns an unfitted pipeline.
func New(p Params) *Pipeline {
	model := svm.NewLinearSVR()
	model.C = p.C
	model.Tol = p.Tol
	model.Epsilon = p.Epsilon
	model.MaxIter = p.MaxIter
	model.Seed = p.Seed
	return &Pipeline{
		Time:  *encoders.NewTimeFeaturesEncoder(p.TimeZone),
		Model: *model,
	}
}

// Params returns the settings the pipeline was built with.
func (p *Pipeline) Params() Params {
	return Params{
		C:        p.Model.C,
		Tol:      p.Model.Tol,
		Epsilon:  p.Model.Epsilon,
		MaxIter:  p.Model.MaxIter,
		Seed:     p.Model.Seed,
		TimeZone: p.Time.Location,
	}
}

// Fit fits every step on trips and the estimator on y, replacing anything
// learned before.
func (p *Pipeline) Fit(trips []models.Trip, y []float64) error {
	if len(trips) != len(y) {
		return ErrShape
	}
	p.Fitted = false
	X, err := p.features(trips, true)
	if err != nil {
		return err
	}
	if err := p.Model.Fit(X, y); err != nil {
		return err
	}
	p.Fitted = true
	return nil
}

// Predict returns one fare per trip.
func (p *Pipeline) Predict(trips []models.Trip) ([]float64, error) {
	if !p.Fitted {
		return nil, ErrNotFitted
	}
	X, err := p.features(trips, false)
	if err != nil {
		return nil, err
	}
	return p.Model.Predict(X)
}

// features runs both branches and joins their columns, fitting each step
// first when fit is set.
func (p *Pipeline) features(trips []models.Trip, fit bool) (*mat.Dense, error) {
	for i := range trips {
		if trips[i].Missing {
			return nil, fmt.Errorf("%w: row %d", ErrMissingValues, i)
		}
	}

	dist, err := branch(&p.Distance, &p.Scaler, trips, fit)
	if err != nil {
		return nil, fmt.Errorf("distance: %w", err)
	}
	tf, err := branch(&p.Time, &p.OneHot, trips, fit)
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	var X mat.Dense
	X.Augment(dist, tf)
	return &X, nil
}

func branch(src encoders.TripTransformer, step encoders.MatrixTransformer, trips []models.Trip, fit bool) (*mat.Dense, error) {
	if fit {
		if err := src.Fit(trips); err != nil {
			return nil, err
		}
	}
	raw, err := src.Transform(trips)
	if err != nil {
		return nil, err
	}
	if fit {
		return encoders.FitTransform(step, raw)
	}
	return step.Transform(raw)
}
