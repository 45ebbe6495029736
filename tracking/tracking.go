// Package tracking records training runs, their parameters and their metrics
// in an experiment-tracking backend.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxi-fare-model/models"
)

var (
	ErrNotFound      = errors.New("tracking: resource does not exist")
	ErrAlreadyExists = errors.New("tracking: resource already exists")
	ErrNoActiveRun   = errors.New("tracking: no active run")
)

// Backend is one experiment-tracking store. Every method is a single remote
// call; failures are returned as is, without retries.
type Backend interface {
	// GetExperimentByName returns ErrNotFound when no experiment has the name.
	GetExperimentByName(ctx context.Context, name string) (string, error)
	// CreateExperiment returns ErrAlreadyExists when the name is taken.
	CreateExperiment(ctx context.Context, name string) (string, error)
	CreateRun(ctx context.Context, experimentID string, start time.Time) (string, error)
	LogParam(ctx context.Context, runID, key, value string) error
	LogMetric(ctx context.Context, runID, key string, value float64, ts time.Time) error
	UpdateRun(ctx context.Context, runID string, status models.RunStatus, end time.Time) error
}

// GetOrCreateExperiment resolves name to an experiment id, creating the
// experiment when it does not exist yet.
//
// The lookup and the create are separate calls, so this is not atomic. When
// another caller creates the experiment in between, the backend reports
// ErrAlreadyExists and the lookup is repeated. Backends that allow duplicate
// names (none of the supported ones do) could end up with two experiments.
// Any other failure, including a connectivity error, is returned.
func GetOrCreateExperiment(ctx context.Context, b Backend, name string) (string, error) {
	id, err := b.GetExperimentByName(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("get experiment %q: %w", name, err)
	}

	id, err = b.CreateExperiment(ctx, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrAlreadyExists) {
		return "", fmt.Errorf("create experiment %q: %w", name, err)
	}

	id, err = b.GetExperimentByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("get experiment %q after concurrent create: %w", name, err)
	}
	return id, nil
}

// Client logs runs of one experiment.
type Client struct {
	backend      Backend
	experimentID string
	run          *models.RunRecord
	now          func() time.Time
}

// NewClient resolves experimentName on the backend, creating the experiment
// if needed.
func NewClient(ctx context.Context, b Backend, experimentName string) (*Client, error) {
	id, err := GetOrCreateExperiment(ctx, b, experimentName)
	if err != nil {
		return nil, err
	}
	return &Client{backend: b, experimentID: id, now: time.Now}, nil
}

func (c *Client) ExperimentID() string {
	return c.experimentID
}

// CreateRun opens a new run; later Log calls attach to it.
func (c *Client) CreateRun(ctx context.Context) error {
	start := c.now()
	runID, err := c.backend.CreateRun(ctx, c.experimentID, start)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	c.run = &models.RunRecord{
		ExperimentID: c.experimentID,
		RunID:        runID,
		Status:       models.RunStatusRunning,
		StartTime:    start,
		Params:       map[string]string{},
		Metrics:      map[string]float64{},
	}
	return nil
}

// LogParam records a parameter of the current run. Values are stored as text.
func (c *Client) LogParam(ctx context.Context, key string, value interface{}) error {
	if c.run == nil {
		return ErrNoActiveRun
	}
	v := fmt.Sprint(value)
	if err := c.backend.LogParam(ctx, c.run.RunID, key, v); err != nil {
		return fmt.Errorf("log param %s: %w", key, err)
	}
	c.run.Params[key] = v
	return nil
}

// LogMetric records a metric of the current run.
func (c *Client) LogMetric(ctx context.Context, key string, value float64) error {
	if c.run == nil {
		return ErrNoActiveRun
	}
	if err := c.backend.LogMetric(ctx, c.run.RunID, key, value, c.now()); err != nil {
		return fmt.Errorf("log metric %s: %w", key, err)
	}
	c.run.Metrics[key] = value
	return nil
}

// EndRun marks the current run as finished or failed and detaches it.
func (c *Client) EndRun(ctx context.Context, status models.RunStatus) error {
	if c.run == nil {
		return ErrNoActiveRun
	}
	end := c.now()
	if err := c.backend.UpdateRun(ctx, c.run.RunID, status, end); err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	c.run.Status = status
	c.run.EndTime = &end
	c.run = nil
	return nil
}

// Record returns a copy of what has been logged to the current run, or nil.
func (c *Client) Record() *models.RunRecord {
	if c.run == nil {
		return nil
	}
	rec := *c.run
	rec.Params = make(map[string]string, len(c.run.Params))
	for k, v := range c.run.Params {
		rec.Params[k] = v
	}
	rec.Metrics = make(map[string]float64, len(c.run.Metrics))
	for k, v := range c.run.Metrics {
		rec.Metrics[k] = v
	}
	return &rec
}
