// Package trainer drives one training run: build the pipeline, fit it, search
// its hyperparameters, evaluate it on held-out trips, record the run and save
// the model.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"taxi-fare-model/config"
	"taxi-fare-model/metrics"
	"taxi-fare-model/models"
	"taxi-fare-model/pipeline"
	"taxi-fare-model/tracking"
)

var ErrNoPipeline = errors.New("trainer: pipeline not set")

// Trainer holds the training split and the pipeline fitted on it.
type Trainer struct {
	X   []models.Trip
	y   []float64
	cfg config.TrainingConfig

	pipeline *pipeline.Pipeline
}

func New(X []models.Trip, y []float64, cfg config.TrainingConfig) *Trainer {
	return &Trainer{X: X, y: y, cfg: cfg}
}

// Params are the pipeline settings derived from the training config.
func (t *Trainer) Params() pipeline.Params {
	p := pipeline.DefaultParams()
	p.Epsilon = t.cfg.Epsilon
	p.Seed = t.cfg.Seed
	if t.cfg.MaxIter > 0 {
		p.MaxIter = t.cfg.MaxIter
	}
	if t.cfg.TimeZone != "" {
		p.TimeZone = t.cfg.TimeZone
	}
	return p
}

// SetPipeline replaces the pipeline with a fresh, unfitted one.
func (t *Trainer) SetPipeline() {
	t.pipeline = pipeline.New(t.Params())
}

// Pipeline returns the current pipeline, nil before SetPipeline.
func (t *Trainer) Pipeline() *pipeline.Pipeline {
	return t.pipeline
}

// Run fits the pipeline on the training split.
func (t *Trainer) Run() error {
	if t.pipeline == nil {
		return ErrNoPipeline
	}
	return t.pipeline.Fit(t.X, t.y)
}

// GridSearch cross-validates the configured C × tol grid on the training
// split and returns the winner. With refit_best set, the refitted winner
// replaces the current pipeline; otherwise the pipeline is left as it was.
func (t *Trainer) GridSearch(ctx context.Context) (*pipeline.GridResult, error) {
	if t.pipeline == nil {
		return nil, ErrNoPipeline
	}
	grid := pipeline.Grid{C: t.cfg.Grid.C, Tol: t.cfg.Grid.Tol}
	res, err := pipeline.GridSearch(ctx, t.pipeline.Params(), grid, t.cfg.Folds, t.X, t.y, t.cfg.RefitBest)
	if err != nil {
		return nil, fmt.Errorf("grid search: %w", err)
	}
	if res.Best != nil {
		t.pipeline = res.Best
	}
	log.Printf("Grid search best params C=%v tol=%v (mean R² %.4f)", res.BestParams.C, res.BestParams.Tol, res.BestScore)
	return res, nil
}

// Evaluate returns the RMSE of the pipeline on X against y.
func (t *Trainer) Evaluate(X []models.Trip, y []float64) (float64, error) {
	if t.pipeline == nil {
		return 0, ErrNoPipeline
	}
	pred, err := t.pipeline.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.RMSE(pred, y)
}

// Track records one run: the RMSE on X/y as metric "rmse", then extra and
// best as params, best overriding extra on shared keys. The run ends FINISHED,
// or FAILED when any logging call failed. The RMSE is returned either way once
// computed.
func (t *Trainer) Track(ctx context.Context, client *tracking.Client, X []models.Trip, y []float64, best map[string]float64, extra map[string]interface{}) (float64, error) {
	rmse, err := t.Evaluate(X, y)
	if err != nil {
		return 0, err
	}
	if err := client.CreateRun(ctx); err != nil {
		return rmse, err
	}

	logErr := logRun(ctx, client, rmse, best, extra)
	status := models.RunStatusFinished
	if logErr != nil {
		status = models.RunStatusFailed
	}
	if err := client.EndRun(ctx, status); err != nil {
		return rmse, errors.Join(logErr, err)
	}
	return rmse, logErr
}

func logRun(ctx context.Context, client *tracking.Client, rmse float64, best map[string]float64, extra map[string]interface{}) error {
	if err := client.LogMetric(ctx, "rmse", rmse); err != nil {
		return err
	}

	params := make(map[string]interface{}, len(extra)+len(best))
	for k, v := range extra {
		params[k] = v
	}
	for k, v := range best {
		params[k] = v
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := client.LogParam(ctx, k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

// SaveModel writes the pipeline to path.
func (t *Trainer) SaveModel(path string) error {
	if t.pipeline == nil {
		return ErrNoPipeline
	}
	if err := pipeline.Save(path, t.pipeline); err != nil {
		return err
	}
	log.Printf("Model saved to %s", path)
	return nil
}
