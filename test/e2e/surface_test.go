package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthSurface(t *testing.T) {
	app := NewTestApp(t)

	health := app.GetHealth(t)
	assert.Equal(t, "healthy", health["status"])
	assert.NotEmpty(t, health["version"])

	checks, ok := health["checks"].(map[string]interface{})
	require.True(t, ok, "health response missing checks: %v", health)

	db, ok := checks["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "not_configured", db["status"])

	wsCheck, ok := checks["websocket"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "healthy", wsCheck["status"])

	_, ok = checks["analyses"].(map[string]interface{})
	assert.True(t, ok, "health should report in-flight analyses")
}

func TestStatsCountScans(t *testing.T) {
	app := NewTestApp(t)
	app.Feed.AddVideo("88888", calmPage(0, 30))
	app.Feed.AddVideo("88889", calmPage(0, 30))

	stats := app.GetStats(t)
	assert.Equal(t, 0, toInt(stats["scansPerformed"]))

	app.StartAnalysis(t, "https://www.twitch.tv/videos/88888")
	app.StartAnalysis(t, "https://www.twitch.tv/videos/88889")

	stats = app.GetStats(t)
	assert.Equal(t, 2, toInt(stats["scansPerformed"]))
}

func TestMetricsExposition(t *testing.T) {
	app := NewTestApp(t)
	app.Feed.AddVideo("88890", calmPage(0, 30))
	app.StartAnalysis(t, "https://www.twitch.tv/videos/88890")

	body := app.GetMetrics(t)
	assert.Contains(t, body, "clippnj_analyses_started_total")
	assert.Contains(t, body, "clippnj_ws_connections_active")
}

func TestClipWithoutCutterIsNotImplemented(t *testing.T) {
	app := NewTestApp(t)

	status, body, err := app.doPost("/api/v1/clip", map[string]interface{}{
		"url":         "https://www.twitch.tv/videos/99999",
		"startSec":    10,
		"durationSec": 30,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotImplemented, status)
	assert.Equal(t, "not-implemented", body["category"])
}

// pathCutter fabricates artifact paths without touching any video data.
type pathCutter struct{}

func (pathCutter) Cut(_ context.Context, videoID string, startSec, durationSec int) (string, error) {
	return fmt.Sprintf("/clips/%s-%d-%d.mp4", videoID, startSec, durationSec), nil
}

func TestClipWithCutter(t *testing.T) {
	app := NewTestApp(t, WithCutter(pathCutter{}))

	result := app.postJSON(t, "/api/v1/clip", map[string]interface{}{
		"url":         "https://www.twitch.tv/videos/99999",
		"startSec":    10,
		"durationSec": 30,
	}, http.StatusOK)

	assert.Equal(t, "99999", result["videoId"])
	assert.Equal(t, "/clips/99999-10-30.mp4", result["artifactPath"])
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	app := NewTestApp(t)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, app.BaseURL+"/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
}
