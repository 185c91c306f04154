package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────────────────
// HTTP Client Helpers
// ────────────────────────────────────────────────────────────

// StartAnalysis posts an analyze request and returns the parsed result.
// Blocks until the run finishes; use StartAnalysisAsync for held runs.
func (app *TestApp) StartAnalysis(t *testing.T, videoURL string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/analyze",
		map[string]interface{}{"url": videoURL}, http.StatusOK)
}

// AnalyzeResponse carries an async analyze outcome across goroutines.
type AnalyzeResponse struct {
	Status int
	Body   map[string]interface{}
	Err    error
}

// StartAnalysisAsync posts an analyze request from a background goroutine and
// delivers the outcome on the returned channel. Safe to consume after the run
// has been cancelled or released.
func (app *TestApp) StartAnalysisAsync(videoURL string) <-chan AnalyzeResponse {
	ch := make(chan AnalyzeResponse, 1)
	go func() {
		status, body, err := app.doPost("/api/v1/analyze",
			map[string]interface{}{"url": videoURL})
		ch <- AnalyzeResponse{Status: status, Body: body, Err: err}
	}()
	return ch
}

// SearchChat posts a search request and returns the parsed result.
func (app *TestApp) SearchChat(t *testing.T, videoURL, query string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/search",
		map[string]interface{}{"url": videoURL, "query": query}, http.StatusOK)
}

// CancelAnalysis posts a cancel for the given video id.
func (app *TestApp) CancelAnalysis(t *testing.T, videoID string) map[string]interface{} {
	t.Helper()
	return app.postJSON(t, "/api/v1/analyses/"+videoID+"/cancel", nil, http.StatusOK)
}

// GetActiveAnalyses calls GET /api/v1/analyses.
func (app *TestApp) GetActiveAnalyses(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/analyses", http.StatusOK)
}

// GetStats calls GET /api/v1/stats.
func (app *TestApp) GetStats(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/api/v1/stats", http.StatusOK)
}

// GetHealth calls GET /health.
func (app *TestApp) GetHealth(t *testing.T) map[string]interface{} {
	t.Helper()
	return app.getJSON(t, "/health", http.StatusOK)
}

// GetMetrics calls GET /metrics and returns the raw exposition text.
func (app *TestApp) GetMetrics(t *testing.T) string {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+"/metrics", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode, "GET /metrics: unexpected status")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (app *TestApp) postJSON(t *testing.T, path string, body interface{}, expectedStatus int) map[string]interface{} {
	t.Helper()
	status, result, err := app.doPost(path, body)
	require.NoError(t, err)
	require.Equal(t, expectedStatus, status, "POST %s: unexpected status (body: %v)", path, result)
	return result
}

func (app *TestApp) getJSON(t *testing.T, path string, expectedStatus int) map[string]interface{} {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, expectedStatus, resp.StatusCode, "GET %s: unexpected status", path)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// doGet issues a GET without touching testing.T, so it is safe to call from
// polling loops and non-test goroutines.
func (app *TestApp) doGet(path string) (int, map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, result, nil
}

// doPost issues a POST without touching testing.T, so it is safe to call
// from non-test goroutines.
func (app *TestApp) doPost(path string, body interface{}) (int, map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, app.BaseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, result, nil
}

// toInt converts a JSON-decoded numeric value (typically float64) to int.
// Returns 0 if the value is nil or not a recognized numeric type.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case float32:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
