package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-fare-model/database/dbtest"
	"taxi-fare-model/models"
)

func TestPostgres_RunLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	backend := NewPostgres(db)

	_, err := backend.GetExperimentByName(ctx, "taxi")
	assert.ErrorIs(t, err, ErrNotFound)

	c, err := NewClient(ctx, backend, "taxi")
	require.NoError(t, err)

	_, err = backend.CreateExperiment(ctx, "taxi")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	again, err := NewClient(ctx, backend, "taxi")
	require.NoError(t, err)
	assert.Equal(t, c.ExperimentID(), again.ExperimentID())

	require.NoError(t, c.CreateRun(ctx))
	runID := c.Record().RunID
	require.NoError(t, c.LogParam(ctx, "model", "linear_svr"))
	require.NoError(t, c.LogMetric(ctx, "rmse", 3.5))
	assert.ErrorIs(t, backend.LogParam(ctx, runID, "model", "other"), ErrAlreadyExists)
	require.NoError(t, c.EndRun(ctx, models.RunStatusFinished))

	var status, value string
	require.NoError(t, db.QueryRow(`SELECT status FROM runs WHERE id=$1`, runID).Scan(&status))
	assert.Equal(t, "FINISHED", status)
	require.NoError(t, db.QueryRow(`SELECT value FROM run_params WHERE run_id=$1 AND key='model'`, runID).Scan(&value))
	assert.Equal(t, "linear_svr", value)
}

func TestPostgres_UnknownRun(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	backend := NewPostgres(db)

	assert.ErrorIs(t, backend.LogParam(ctx, "missing", "k", "v"), ErrNotFound)
	assert.ErrorIs(t, backend.UpdateRun(ctx, "missing", models.RunStatusFailed, time.Now()), ErrNotFound)
	_, err := backend.CreateRun(ctx, "not-a-number", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}
