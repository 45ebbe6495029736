package tracking

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taxi-fare-model/models"
)

// Postgres SQLSTATE codes.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Postgres stores experiments and runs in the tables created by the
// migration package.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) GetExperimentByName(ctx context.Context, name string) (string, error) {
	var id int64
	err := p.db.QueryRowContext(ctx, `SELECT id FROM experiments WHERE name=$1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) CreateExperiment(ctx context.Context, name string) (string, error) {
	var id int64
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO experiments (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		return "", translate(err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (p *Postgres) CreateRun(ctx context.Context, experimentID string, start time.Time) (string, error) {
	expID, err := strconv.ParseInt(experimentID, 10, 64)
	if err != nil {
		return "", ErrNotFound
	}
	runID := uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO runs (id, experiment_id, status, start_time) VALUES ($1, $2, $3, $4)`,
		runID, expID, string(models.RunStatusRunning), start,
	)
	if err != nil {
		return "", translate(err)
	}
	return runID, nil
}

// LogParam fails with ErrAlreadyExists when the run already has key; params
// are write-once.
func (p *Postgres) LogParam(ctx context.Context, runID, key, value string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO run_params (run_id, key, value) VALUES ($1, $2, $3)`,
		runID, key, value,
	)
	return translate(err)
}

// LogMetric appends a value to the metric's history.
func (p *Postgres) LogMetric(ctx context.Context, runID, key string, value float64, ts time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO run_metrics (run_id, key, value, logged_at) VALUES ($1, $2, $3, $4)`,
		runID, key, value, ts,
	)
	return translate(err)
}

func (p *Postgres) UpdateRun(ctx context.Context, runID string, status models.RunStatus, end time.Time) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE runs SET status=$1, end_time=$2 WHERE id=$3`,
		string(status), end, runID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrAlreadyExists
		case foreignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
