package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"taxi-fare-model/models"
)

const apiPrefix = "api/2.0/mlflow/"

// DefaultMLflowTimeout bounds each request when no HTTP client is supplied.
const DefaultMLflowTimeout = 30 * time.Second

// MLflow talks to an MLflow tracking server over its REST API.
type MLflow struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// MLflowOptions configures the MLflow backend.
type MLflowOptions struct {
	// RateLimit caps requests per second; zero means unlimited.
	RateLimit rate.Limit
	// Timeout applies when HTTPClient is nil (default 30 seconds).
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewMLflow returns a backend for the tracking server at uri.
func NewMLflow(uri string, options MLflowOptions) *MLflow {
	if options.RateLimit == 0 {
		options.RateLimit = rate.Inf
	}
	if options.Timeout == 0 {
		options.Timeout = DefaultMLflowTimeout
	}
	client := options.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: options.Timeout}
	}
	return &MLflow{
		baseURL:    strings.TrimRight(uri, "/") + "/",
		httpClient: client,
		limiter:    rate.NewLimiter(options.RateLimit, 1),
	}
}

// apiError is the error body MLflow returns with non-2xx responses.
type apiError struct {
	Status    int    `json:"-"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("mlflow: %d %s: %s", e.Status, e.ErrorCode, e.Message)
}

func (e *apiError) Unwrap() error {
	switch e.ErrorCode {
	case "RESOURCE_DOES_NOT_EXIST":
		return ErrNotFound
	case "RESOURCE_ALREADY_EXISTS":
		return ErrAlreadyExists
	}
	return nil
}

func (m *MLflow) GetExperimentByName(ctx context.Context, name string) (string, error) {
	var resp struct {
		Experiment struct {
			ExperimentID string `json:"experiment_id"`
		} `json:"experiment"`
	}
	q := url.Values{"experiment_name": {name}}
	if err := m.do(ctx, http.MethodGet, "experiments/get-by-name?"+q.Encode(), nil, &resp); err != nil {
		return "", err
	}
	return resp.Experiment.ExperimentID, nil
}

func (m *MLflow) CreateExperiment(ctx context.Context, name string) (string, error) {
	var resp struct {
		ExperimentID string `json:"experiment_id"`
	}
	req := map[string]string{"name": name}
	if err := m.do(ctx, http.MethodPost, "experiments/create", req, &resp); err != nil {
		return "", err
	}
	return resp.ExperimentID, nil
}

func (m *MLflow) CreateRun(ctx context.Context, experimentID string, start time.Time) (string, error) {
	var resp struct {
		Run struct {
			Info struct {
				RunID string `json:"run_id"`
			} `json:"info"`
		} `json:"run"`
	}
	req := map[string]interface{}{
		"experiment_id": experimentID,
		"start_time":    start.UnixMilli(),
	}
	if err := m.do(ctx, http.MethodPost, "runs/create", req, &resp); err != nil {
		return "", err
	}
	return resp.Run.Info.RunID, nil
}

func (m *MLflow) LogParam(ctx context.Context, runID, key, value string) error {
	req := map[string]string{"run_id": runID, "key": key, "value": value}
	return m.do(ctx, http.MethodPost, "runs/log-parameter", req, nil)
}

func (m *MLflow) LogMetric(ctx context.Context, runID, key string, value float64, ts time.Time) error {
	req := map[string]interface{}{
		"run_id":    runID,
		"key":       key,
		"value":     value,
		"timestamp": ts.UnixMilli(),
		"step":      0,
	}
	return m.do(ctx, http.MethodPost, "runs/log-metric", req, nil)
}

func (m *MLflow) UpdateRun(ctx context.Context, runID string, status models.RunStatus, end time.Time) error {
	req := map[string]interface{}{
		"run_id":   runID,
		"status":   string(status),
		"end_time": end.UnixMilli(),
	}
	return m.do(ctx, http.MethodPost, "runs/update", req, nil)
}

func (m *MLflow) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.ErrorCode == "" {
			apiErr.ErrorCode = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("mlflow: decode %s response: %w", path, err)
	}
	return nil
}
