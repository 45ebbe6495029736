package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"taxi-fare-model/models"
)

// fakeMLflow is a minimal in-memory MLflow tracking server.
type fakeMLflow struct {
	mu          sync.Mutex
	experiments map[string]string
	params      map[string]string
	metrics     map[string]float64
	status      string
	requests    []string
}

func newFakeMLflow() *fakeMLflow {
	return &fakeMLflow{
		experiments: map[string]string{},
		params:      map[string]string{},
		metrics:     map[string]float64{},
	}
}

func (f *fakeMLflow) locked(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

func (f *fakeMLflow) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	var body map[string]interface{}
	if r.Method == http.MethodPost {
		json.NewDecoder(r.Body).Decode(&body)
	}
	writeErr := func(status int, code string) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error_code": code, "message": "fake"})
	}

	switch r.URL.Path {
	case "/api/2.0/mlflow/experiments/get-by-name":
		id, ok := f.experiments[r.URL.Query().Get("experiment_name")]
		if !ok {
			writeErr(http.StatusNotFound, "RESOURCE_DOES_NOT_EXIST")
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"experiment": map[string]string{"experiment_id": id}})
	case "/api/2.0/mlflow/experiments/create":
		name := body["name"].(string)
		if _, ok := f.experiments[name]; ok {
			writeErr(http.StatusBadRequest, "RESOURCE_ALREADY_EXISTS")
			return
		}
		f.experiments[name] = "42"
		json.NewEncoder(w).Encode(map[string]string{"experiment_id": "42"})
	case "/api/2.0/mlflow/runs/create":
		json.NewEncoder(w).Encode(map[string]interface{}{
			"run": map[string]interface{}{"info": map[string]string{"run_id": "run-" + body["experiment_id"].(string)}},
		})
	case "/api/2.0/mlflow/runs/log-parameter":
		f.params[body["key"].(string)] = body["value"].(string)
		w.Write([]byte("{}"))
	case "/api/2.0/mlflow/runs/log-metric":
		f.metrics[body["key"].(string)] = body["value"].(float64)
		w.Write([]byte("{}"))
	case "/api/2.0/mlflow/runs/update":
		f.status = body["status"].(string)
		w.Write([]byte("{}"))
	default:
		http.NotFound(w, r)
	}
}

func TestMLflow_EndToEnd(t *testing.T) {
	fake := newFakeMLflow()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	backend := NewMLflow(srv.URL+"/", MLflowOptions{HTTPClient: srv.Client()})

	c, err := NewClient(ctx, backend, "[CN][SH][login]Taxi03")
	require.NoError(t, err)
	assert.Equal(t, "42", c.ExperimentID())

	require.NoError(t, c.CreateRun(ctx))
	assert.Equal(t, "run-42", c.Record().RunID)
	require.NoError(t, c.LogParam(ctx, "model", "linear_svr"))
	require.NoError(t, c.LogMetric(ctx, "rmse", 5.5))
	require.NoError(t, c.EndRun(ctx, models.RunStatusFinished))

	fake.locked(func() {
		assert.Equal(t, "linear_svr", fake.params["model"])
		assert.Equal(t, 5.5, fake.metrics["rmse"])
		assert.Equal(t, "FINISHED", fake.status)
	})

	// A second client finds the experiment instead of creating it again.
	again, err := NewClient(ctx, backend, "[CN][SH][login]Taxi03")
	require.NoError(t, err)
	assert.Equal(t, "42", again.ExperimentID())
}

func TestMLflow_ErrorMapping(t *testing.T) {
	fake := newFakeMLflow()
	fake.experiments["taken"] = "1"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	backend := NewMLflow(srv.URL, MLflowOptions{})

	_, err := backend.GetExperimentByName(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = backend.CreateExperiment(ctx, "taken")
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMLflow_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(context.Background(), NewMLflow(srv.URL, MLflowOptions{}), "taxi")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestMLflow_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewClient(ctx, NewMLflow(url, MLflowOptions{Timeout: time.Second}), "taxi")
	assert.Error(t, err)
}

func TestMLflow_RateLimit(t *testing.T) {
	fake := newFakeMLflow()
	fake.experiments["taxi"] = "5"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	backend := NewMLflow(srv.URL, MLflowOptions{RateLimit: rate.Every(time.Hour)})

	_, err := backend.GetExperimentByName(context.Background(), "taxi")
	require.NoError(t, err)

	// The next token is an hour away, past the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = backend.GetExperimentByName(ctx, "taxi")
	assert.Error(t, err)
	fake.locked(func() { assert.Len(t, fake.requests, 1) })
}
