package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Mindyourbiz9000/clippnj/pkg/config"
	"github.com/Mindyourbiz9000/clippnj/pkg/metrics"
	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// errSearchLimit stops the chat walk once enough matches are collected. It
// never escapes Search.
var errSearchLimit = errors.New("search result limit reached")

// SearchOptions carries per-request tuning. Zero fields keep the configured
// defaults.
type SearchOptions struct {
	MaxResults         int
	MaxPages           int
	StartOffsetSeconds int
}

// SearchService streams replay chat through the iterator and collects
// messages matching a query. Searches are stateless: no per-video
// single-flight and no events, just a bounded walk.
type SearchService struct {
	src      twitch.CommentSource
	defaults config.SearchConfig
}

// NewSearchService creates the service.
func NewSearchService(src twitch.CommentSource, defaults config.SearchConfig) *SearchService {
	if src == nil {
		panic("NewSearchService: src must not be nil")
	}
	return &SearchService{src: src, defaults: defaults}
}

// Search scans the video's chat for messages containing the query
// (case-insensitive) and returns them in stream order. The walk stops early
// once MaxResults matches are found; Truncated reports whether it did.
func (s *SearchService) Search(ctx context.Context, rawURL, query string, opts SearchOptions) (*models.SearchResult, error) {
	videoID, err := twitch.ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, NewValidationError("query", "must not be empty")
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.defaults.MaxResults
	}
	if maxResults > config.MaxSearchResultsCap {
		maxResults = config.MaxSearchResultsCap
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = s.defaults.MaxPages
	}

	start := time.Now()
	needle := strings.ToLower(query)
	result := &models.SearchResult{
		VideoID: videoID,
		Query:   query,
		Matches: make([]models.SearchMatch, 0, maxResults),
	}

	onBatch := func(messages []models.ChatMessage) error {
		for _, msg := range messages {
			result.TotalScanned++
			if !strings.Contains(strings.ToLower(msg.Text), needle) {
				continue
			}
			result.Matches = append(result.Matches, models.SearchMatch{
				OffsetSeconds: msg.OffsetSeconds,
				Author:        msg.Author,
				Text:          msg.Text,
			})
			if len(result.Matches) >= maxResults {
				result.Truncated = true
				return errSearchLimit
			}
		}
		return nil
	}

	iterStats, err := twitch.IterateChat(ctx, s.src, videoID, onBatch, twitch.IterateOptions{
		MaxPages:           maxPages,
		StartOffsetSeconds: opts.StartOffsetSeconds,
	})
	result.PagesProcessed = iterStats.PagesProcessed
	if err != nil && !errors.Is(err, errSearchLimit) {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	metrics.RecordSearch(time.Since(start))
	slog.Info("Chat search complete",
		"video_id", videoID,
		"matches", len(result.Matches),
		"scanned", result.TotalScanned,
		"pages", result.PagesProcessed,
		"truncated", result.Truncated)

	return result, nil
}
