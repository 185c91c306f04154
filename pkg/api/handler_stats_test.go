package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
)

func TestStatsHandler(t *testing.T) {
	feed := newStubFeed()
	feed.script("12345", messagePage("", 0, 10, "hello"))
	s := newTestServer(feed)

	rec := doJSON(s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scansPerformed":0}`, rec.Body.String())

	// A completed analysis bumps the counter.
	analyzeRec := doJSON(s, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{URL: "12345"})
	require.Equal(t, http.StatusOK, analyzeRec.Code, analyzeRec.Body.String())

	rec = doJSON(s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.ScanStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(1), snap.ScansPerformed)
}

// fixedCutter returns a constant artifact path.
type fixedCutter struct {
	artifact string
	err      error
}

func (f *fixedCutter) Cut(_ context.Context, _ string, _, _ int) (string, error) {
	return f.artifact, f.err
}

func TestClipHandler(t *testing.T) {
	t.Run("not implemented without a cutter", func(t *testing.T) {
		s := newTestServer(newStubFeed())

		rec := doJSON(s, http.MethodPost, "/api/v1/clip",
			ClipRequest{URL: "12345", StartSec: 10, DurationSec: 30})
		assert.Equal(t, http.StatusNotImplemented, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, services.CategoryNotImplemented, resp.Category)
	})

	t.Run("delegates to the wired cutter", func(t *testing.T) {
		s := newTestServer(newStubFeed())
		s.SetCutter(&fixedCutter{artifact: "/clips/12345-10-30.mp4"})

		rec := doJSON(s, http.MethodPost, "/api/v1/clip",
			ClipRequest{URL: "https://www.twitch.tv/videos/12345", StartSec: 10, DurationSec: 30})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ClipResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "12345", resp.VideoID)
		assert.Equal(t, "/clips/12345-10-30.mp4", resp.ArtifactPath)
	})

	t.Run("validates the range", func(t *testing.T) {
		s := newTestServer(newStubFeed())
		s.SetCutter(&fixedCutter{artifact: "x"})

		rec := doJSON(s, http.MethodPost, "/api/v1/clip",
			ClipRequest{URL: "12345", StartSec: -1, DurationSec: 30})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doJSON(s, http.MethodPost, "/api/v1/clip",
			ClipRequest{URL: "12345", StartSec: 0, DurationSec: 0})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
