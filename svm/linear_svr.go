// Package svm implements a linear support-vector regressor.
//
// LinearSVR minimises
//
//	0.5*||w||² + C * Σ max(0, |y_i - w·x_i - b| - ε)
//
// by coordinate descent on the dual problem, one training row at a time, the
// method liblinear uses for L2-regularised L1-loss SVR. The intercept is
// learned as the weight of a constant InterceptScaling feature appended to
// every row, so it is regularised like the other weights.
package svm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted       = errors.New("svm: model is not fitted")
	ErrFeatureMismatch = errors.New("svm: feature count differs from fit")
	ErrShape           = errors.New("svm: row count of X and y differ")
)

// Defaults match the usual LinearSVR settings.
const (
	DefaultC         = 1.0
	DefaultTol       = 1e-4
	DefaultMaxIter   = 1000
	DefaultIntercept = 1.0
)

type LinearSVR struct {
	C                float64
	Tol              float64
	Epsilon          float64
	MaxIter          int
	InterceptScaling float64
	Seed             int64

	Coef      []float64
	Intercept float64
	// Iterations is the number of passes over the data the last Fit made.
	Iterations int
}

// NewLinearSVR returns a regressor with default settings.
func NewLinearSVR() *LinearSVR {
	return &LinearSVR{
		C:                DefaultC,
		Tol:              DefaultTol,
		MaxIter:          DefaultMaxIter,
		InterceptScaling: DefaultIntercept,
	}
}

// Fit learns Coef and Intercept from X (n×d) and y (n).
func (m *LinearSVR) Fit(X mat.Matrix, y []float64) error {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return fmt.Errorf("svm: empty training set")
	}
	if n != len(y) {
		return ErrShape
	}
	if m.C <= 0 {
		return fmt.Errorf("svm: C must be positive, got %v", m.C)
	}
	tol := m.Tol
	if tol <= 0 {
		tol = DefaultTol
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	bias := m.InterceptScaling
	if bias == 0 {
		bias = DefaultIntercept
	}

	// Rows augmented with the bias feature, kept contiguous for the inner loop.
	rows := make([][]float64, n)
	qd := make([]float64, n)
	for i := range rows {
		row := make([]float64, d+1)
		mat.Row(row[:d], i, X)
		row[d] = bias
		rows[i] = row
		qd[i] = floats.Dot(row, row)
	}

	w := make([]float64, d+1)
	beta := make([]float64, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(m.Seed))
	upper := m.C
	p := m.Epsilon

	var gnormInit float64
	iter := 0
	for iter < maxIter {
		rng.Shuffle(n, func(a, b int) { order[a], order[b] = order[b], order[a] })

		var gnorm float64
		for _, i := range order {
			xi := rows[i]
			h := qd[i]
			g := floats.Dot(w, xi) - y[i]
			gp := g + p
			gn := g - p

			// Projected-gradient violation of the optimality conditions.
			var violation float64
			switch {
			case beta[i] == 0:
				if gp < 0 {
					violation = -gp
				} else if gn > 0 {
					violation = gn
				}
			case beta[i] >= upper:
				if gp > 0 {
					violation = gp
				}
			case beta[i] <= -upper:
				if gn < 0 {
					violation = -gn
				}
			case beta[i] > 0:
				violation = math.Abs(gp)
			default:
				violation = math.Abs(gn)
			}
			gnorm += violation

			// Newton step on the one-variable subproblem.
			var step float64
			switch {
			case gp < h*beta[i]:
				step = -gp / h
			case gn > h*beta[i]:
				step = -gn / h
			default:
				step = -beta[i]
			}
			if math.Abs(step) < 1e-12 {
				continue
			}
			old := beta[i]
			beta[i] = math.Min(math.Max(beta[i]+step, -upper), upper)
			if delta := beta[i] - old; delta != 0 {
				floats.AddScaled(w, delta, xi)
			}
		}

		if iter == 0 {
			gnormInit = gnorm
		}
		iter++
		if gnorm <= tol*gnormInit {
			break
		}
	}

	m.Coef = w[:d]
	m.Intercept = w[d] * bias
	m.Iterations = iter
	return nil
}

// Predict returns X·Coef + Intercept.
func (m *LinearSVR) Predict(X mat.Matrix) ([]float64, error) {
	if m.Coef == nil {
		return nil, ErrNotFitted
	}
	n, d := X.Dims()
	if d != len(m.Coef) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureMismatch, d, len(m.Coef))
	}
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(d, m.Coef))
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = out.AtVec(i) + m.Intercept
	}
	return pred, nil
}
