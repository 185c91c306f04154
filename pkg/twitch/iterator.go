package twitch

import (
	"context"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
)

// DefaultMaxPages bounds a chat walk when the caller does not set a budget.
const DefaultMaxPages = 10000

// BatchFunc consumes one non-empty page of messages in source order.
// Returning an error stops the walk immediately; the error is propagated
// to the caller untranslated.
type BatchFunc func(messages []models.ChatMessage) error

// IterateOptions controls a chat walk.
type IterateOptions struct {
	// MaxPages caps the number of pages handed to the callback.
	// Zero or negative means DefaultMaxPages.
	MaxPages int
	// StartOffsetSeconds seeds the position of the first page.
	StartOffsetSeconds int
}

// IterationStats reports how far a walk got, whether it completed or not.
type IterationStats struct {
	PagesProcessed    int
	LastOffsetSeconds int
}

// IterateChat walks the comment feed for a video from a starting offset,
// following cursors until the feed ends, a page comes back empty, or the
// page budget is reached. Pages are fetched one at a time and handed to
// onBatch synchronously before the next fetch is issued.
func IterateChat(ctx context.Context, src CommentSource, videoID string, onBatch BatchFunc, opts IterateOptions) (IterationStats, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var stats IterationStats
	cursor := ""
	for stats.PagesProcessed < maxPages {
		page, err := src.FetchCommentPage(ctx, videoID, cursor, opts.StartOffsetSeconds)
		if err != nil {
			return stats, err
		}
		if len(page.Messages) == 0 {
			return stats, nil
		}

		stats.PagesProcessed++
		stats.LastOffsetSeconds = page.Messages[len(page.Messages)-1].OffsetSeconds

		if err := onBatch(page.Messages); err != nil {
			return stats, err
		}

		if page.Cursor == "" {
			return stats, nil
		}
		cursor = page.Cursor
	}
	return stats, nil
}
