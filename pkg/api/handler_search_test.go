package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

func TestSearchHandler(t *testing.T) {
	feed := newStubFeed()
	feed.script("12345", twitch.CommentPage{Messages: []models.ChatMessage{
		models.NewChatMessage(10, "alice", []models.Fragment{models.TextFragment{Text: "first blood"}}),
		models.NewChatMessage(20, "bob", []models.Fragment{models.TextFragment{Text: "nothing here"}}),
	}})
	s := newTestServer(feed)

	rec := doJSON(s, http.MethodPost, "/api/v1/search",
		SearchRequest{URL: "https://twitch.tv/videos/12345", Query: "FIRST"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "12345", result.VideoID)
	assert.Equal(t, 2, result.TotalScanned)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "first blood", result.Matches[0].Text)
	assert.False(t, result.Truncated)
}

func TestSearchHandler_Validation(t *testing.T) {
	s := newTestServer(newStubFeed())

	t.Run("missing url", func(t *testing.T) {
		rec := doJSON(s, http.MethodPost, "/api/v1/search", SearchRequest{Query: "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, services.CategoryInvalidInput, decodeError(t, rec).Category)
	})

	t.Run("empty query", func(t *testing.T) {
		rec := doJSON(s, http.MethodPost, "/api/v1/search", SearchRequest{URL: "12345", Query: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, services.CategoryInvalidInput, resp.Category)
		assert.Contains(t, resp.Message, "query")
	})

	t.Run("negative maxResults", func(t *testing.T) {
		rec := doJSON(s, http.MethodPost, "/api/v1/search",
			SearchRequest{URL: "12345", Query: "x", MaxResults: -5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSearchHandler_UpstreamFailure(t *testing.T) {
	feed := newStubFeed()
	feed.err = &twitch.FeedError{Message: "service error"}
	s := newTestServer(feed)

	rec := doJSON(s, http.MethodPost, "/api/v1/search", SearchRequest{URL: "12345", Query: "x"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, services.CategoryUpstreamUnavailable, decodeError(t, rec).Category)
}
