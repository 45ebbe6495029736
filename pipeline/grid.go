package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"taxi-fare-model/metrics"
	"taxi-fare-model/models"
)

var ErrTooFewSamples = errors.New("fewer samples than folds")

// Grid lists the candidate values of each searched parameter.
type Grid struct {
	C   []float64
	Tol []float64
}

// Candidate is one parameter combination and its cross-validated score.
type Candidate struct {
	C          float64   `json:"C"`
	Tol        float64   `json:"tol"`
	FoldScores []float64 `json:"fold_scores"`
	MeanScore  float64   `json:"mean_score"`
}

// GridResult is the outcome of a grid search. Best is nil unless the search
// was asked to refit.
type GridResult struct {
	BestParams Params
	BestScore  float64
	Candidates []Candidate
	Best       *Pipeline
}

// Map returns the best searched parameters under the names they are tracked by.
func (r *GridResult) Map() map[string]float64 {
	return map[string]float64{
		"C":   r.BestParams.C,
		"tol": r.BestParams.Tol,
	}
}

// GridSearch scores every C × Tol combination (other settings taken from base)
// by k-fold cross-validation and returns the combination with the highest
// mean R² on the held-out folds; the first one listed wins ties. Folds are
// contiguous and unshuffled, the first n%k of them one row larger. Every
// candidate is refitted once per fold, so the cost grows with
// len(C)*len(Tol)*folds*len(trips). With refit set, the best combination is
// fitted once more on all rows and returned in Best.
func GridSearch(ctx context.Context, base Params, grid Grid, folds int, trips []models.Trip, y []float64, refit bool) (*GridResult, error) {
	if len(trips) != len(y) {
		return nil, ErrShape
	}
	if folds < 2 {
		return nil, fmt.Errorf("%w: need at least 2 folds, got %d", ErrTooFewSamples, folds)
	}
	if len(trips) < folds {
		return nil, fmt.Errorf("%w: %d folds for %d samples", ErrTooFewSamples, folds, len(trips))
	}
	if len(grid.C) == 0 || len(grid.Tol) == 0 {
		return nil, errors.New("empty parameter grid")
	}

	splits := KFold(len(trips), folds)
	result := &GridResult{BestScore: math.Inf(-1)}
	for _, c := range grid.C {
		for _, tol := range grid.Tol {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			params := base
			params.C = c
			params.Tol = tol

			cand := Candidate{C: c, Tol: tol}
			for _, s := range splits {
				score, err := scoreSplit(params, s, trips, y)
				if err != nil {
					return nil, fmt.Errorf("C=%v tol=%v: %w", c, tol, err)
				}
				cand.FoldScores = append(cand.FoldScores, score)
			}
			for _, s := range cand.FoldScores {
				cand.MeanScore += s
			}
			cand.MeanScore /= float64(len(cand.FoldScores))

			result.Candidates = append(result.Candidates, cand)
			if cand.MeanScore > result.BestScore {
				result.BestScore = cand.MeanScore
				result.BestParams = params
			}
		}
	}

	if refit {
		best := New(result.BestParams)
		if err := best.Fit(trips, y); err != nil {
			return nil, fmt.Errorf("refit: %w", err)
		}
		result.Best = best
	}
	return result, nil
}

func scoreSplit(params Params, s Split, trips []models.Trip, y []float64) (float64, error) {
	trainX, trainY := subset(trips, y, s.Train)
	testX, testY := subset(trips, y, s.Test)

	p := New(params)
	if err := p.Fit(trainX, trainY); err != nil {
		return 0, err
	}
	pred, err := p.Predict(testX)
	if err != nil {
		return 0, err
	}
	return metrics.R2(pred, testY)
}

// Split holds the row indices of one cross-validation fold.
type Split struct {
	Train []int
	Test  []int
}

// KFold partitions 0..n-1 into k contiguous test folds. The first n%k folds
// get one extra row.
func KFold(n, k int) []Split {
	splits := make([]Split, 0, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		end := start + size
		var s Split
		for i := 0; i < n; i++ {
			if i >= start && i < end {
				s.Test = append(s.Test, i)
			} else {
				s.Train = append(s.Train, i)
			}
		}
		splits = append(splits, s)
		start = end
	}
	return splits
}

func subset(trips []models.Trip, y []float64, idx []int) ([]models.Trip, []float64) {
	outX := make([]models.Trip, len(idx))
	outY := make([]float64, len(idx))
	for i, j := range idx {
		outX[i] = trips[j]
		outY[i] = y[j]
	}
	return outX, outY
}
