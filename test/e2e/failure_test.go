package e2e

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpstreamFailurePropagates(t *testing.T) {
	app := NewTestApp(t)
	app.Feed.FailNext(10, http.StatusInternalServerError, "gql exploded")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ws, err := WSConnect(ctx, app.WSURL)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()
	require.NoError(t, ws.Subscribe("video:66666"))
	_, err = ws.WaitForEventType("subscription.confirmed", 5*time.Second)
	require.NoError(t, err)

	status, body, err := app.doPost("/api/v1/analyze",
		map[string]interface{}{"url": "https://www.twitch.tv/videos/66666"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "upstream-unavailable", body["category"])
	msg, _ := body["message"].(string)
	assert.Contains(t, msg, "gql exploded", "upstream diagnostics should survive to the response")

	// Subscribers see the failure too.
	failed, err := ws.WaitForEventType("analysis.failed", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "66666", failed.Parsed["videoId"])
	assert.Equal(t, "upstream-unavailable", failed.Parsed["category"])

	// An HTTP 500 from the feed is not retried.
	assert.Equal(t, 1, app.Feed.Requests())

	// Failed runs do not count as scans.
	stats := app.GetStats(t)
	assert.Equal(t, 0, toInt(stats["scansPerformed"]))
}

func TestSearchUpstreamFailure(t *testing.T) {
	app := NewTestApp(t)
	app.Feed.FailNext(10, http.StatusInternalServerError, "feed down")

	status, body, err := app.doPost("/api/v1/search",
		map[string]interface{}{"url": "https://www.twitch.tv/videos/66667", "query": "pog"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "upstream-unavailable", body["category"])
}
