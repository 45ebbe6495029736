package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-fare-model/models"
)

// fakeBackend scripts the experiment lookups and records run calls.
type fakeBackend struct {
	getResults []getResult
	getCalls   int
	createID   string
	createErr  error
	createCall int

	runs    map[string]models.RunStatus
	params  map[string]string
	metrics map[string]float64
	logErr  error
}

type getResult struct {
	id  string
	err error
}

func newFakeBackend(gets ...getResult) *fakeBackend {
	return &fakeBackend{
		getResults: gets,
		runs:       map[string]models.RunStatus{},
		params:     map[string]string{},
		metrics:    map[string]float64{},
	}
}

func (f *fakeBackend) GetExperimentByName(_ context.Context, _ string) (string, error) {
	r := f.getResults[f.getCalls]
	f.getCalls++
	return r.id, r.err
}

func (f *fakeBackend) CreateExperiment(_ context.Context, _ string) (string, error) {
	f.createCall++
	return f.createID, f.createErr
}

func (f *fakeBackend) CreateRun(_ context.Context, experimentID string, _ time.Time) (string, error) {
	id := experimentID + "-run"
	f.runs[id] = models.RunStatusRunning
	return id, nil
}

func (f *fakeBackend) LogParam(_ context.Context, _, key, value string) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.params[key] = value
	return nil
}

func (f *fakeBackend) LogMetric(_ context.Context, _, key string, value float64, _ time.Time) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.metrics[key] = value
	return nil
}

func (f *fakeBackend) UpdateRun(_ context.Context, runID string, status models.RunStatus, _ time.Time) error {
	if _, ok := f.runs[runID]; !ok {
		return ErrNotFound
	}
	f.runs[runID] = status
	return nil
}

func TestGetOrCreateExperiment(t *testing.T) {
	ctx := context.Background()
	offline := errors.New("dial tcp: connection refused")

	t.Run("existing", func(t *testing.T) {
		b := newFakeBackend(getResult{id: "7"})
		id, err := GetOrCreateExperiment(ctx, b, "taxi")
		require.NoError(t, err)
		assert.Equal(t, "7", id)
		assert.Zero(t, b.createCall)
	})

	t.Run("created", func(t *testing.T) {
		b := newFakeBackend(getResult{err: ErrNotFound})
		b.createID = "8"
		id, err := GetOrCreateExperiment(ctx, b, "taxi")
		require.NoError(t, err)
		assert.Equal(t, "8", id)
	})

	t.Run("concurrent create falls back to lookup", func(t *testing.T) {
		b := newFakeBackend(getResult{err: ErrNotFound}, getResult{id: "9"})
		b.createErr = ErrAlreadyExists
		id, err := GetOrCreateExperiment(ctx, b, "taxi")
		require.NoError(t, err)
		assert.Equal(t, "9", id)
		assert.Equal(t, 2, b.getCalls)
	})

	t.Run("create failure is not swallowed", func(t *testing.T) {
		b := newFakeBackend(getResult{err: ErrNotFound})
		b.createErr = offline
		_, err := GetOrCreateExperiment(ctx, b, "taxi")
		assert.ErrorIs(t, err, offline)
		assert.Equal(t, 1, b.getCalls, "no lookup after a non-conflict failure")
	})

	t.Run("lookup failure is not swallowed", func(t *testing.T) {
		b := newFakeBackend(getResult{err: offline})
		_, err := GetOrCreateExperiment(ctx, b, "taxi")
		assert.ErrorIs(t, err, offline)
		assert.Zero(t, b.createCall)
	})
}

func TestClient_Run(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(getResult{id: "3"})

	c, err := NewClient(ctx, b, "taxi")
	require.NoError(t, err)
	assert.Equal(t, "3", c.ExperimentID())

	assert.ErrorIs(t, c.LogParam(ctx, "model", "svr"), ErrNoActiveRun)

	require.NoError(t, c.CreateRun(ctx))
	require.NoError(t, c.LogParam(ctx, "n_rows", 10000))
	require.NoError(t, c.LogParam(ctx, "test_split", 0.2))
	require.NoError(t, c.LogMetric(ctx, "rmse", 4.25))

	rec := c.Record()
	require.NotNil(t, rec)
	assert.Equal(t, "3", rec.ExperimentID)
	assert.Equal(t, "3-run", rec.RunID)
	assert.Equal(t, map[string]string{"n_rows": "10000", "test_split": "0.2"}, rec.Params)
	assert.Equal(t, map[string]float64{"rmse": 4.25}, rec.Metrics)
	assert.Equal(t, "10000", b.params["n_rows"])

	// The copy is detached from the client.
	rec.Params["n_rows"] = "changed"
	assert.Equal(t, "10000", c.Record().Params["n_rows"])

	require.NoError(t, c.EndRun(ctx, models.RunStatusFinished))
	assert.Equal(t, models.RunStatusFinished, b.runs["3-run"])
	assert.Nil(t, c.Record())
	assert.ErrorIs(t, c.EndRun(ctx, models.RunStatusFinished), ErrNoActiveRun)
}

func TestClient_LogErrorPropagates(t *testing.T) {
	ctx := context.Background()
	b := newFakeBackend(getResult{id: "1"})
	c, err := NewClient(ctx, b, "taxi")
	require.NoError(t, err)
	require.NoError(t, c.CreateRun(ctx))

	b.logErr = errors.New("503")
	assert.ErrorIs(t, c.LogMetric(ctx, "rmse", 1), b.logErr)
	assert.Empty(t, c.Record().Metrics)
}
