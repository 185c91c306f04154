package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// fakeFeed replays scripted pages; calls past the script return an empty
// page. errAt fails the Nth call (1-based) with err.
type fakeFeed struct {
	pages   []twitch.CommentPage
	errAt   int
	err     error
	calls   int
	offsets []int
}

func (f *fakeFeed) FetchCommentPage(_ context.Context, _, _ string, offsetSeconds int) (*twitch.CommentPage, error) {
	f.calls++
	f.offsets = append(f.offsets, offsetSeconds)
	if f.errAt > 0 && f.calls == f.errAt {
		return nil, f.err
	}
	if f.calls > len(f.pages) {
		return &twitch.CommentPage{}, nil
	}
	p := f.pages[f.calls-1]
	return &p, nil
}

func threePageFeed() *fakeFeed {
	spike := make([]models.ChatMessage, 0, 12)
	for i := 0; i < 12; i++ {
		spike = append(spike, chatAt(65+i, "lol"))
	}
	return &fakeFeed{pages: []twitch.CommentPage{
		{Messages: []models.ChatMessage{chatAt(5, neutralText), chatAt(10, neutralText)}, Cursor: "c1"},
		{Messages: []models.ChatMessage{chatAt(35, neutralText), chatAt(40, neutralText)}, Cursor: "c2"},
		{Messages: spike},
	}}
}

func TestAnalyzer_Run(t *testing.T) {
	feed := threePageFeed()
	analyzer := NewAnalyzer(feed)

	var snapshots []Progress
	result, err := analyzer.Run(context.Background(), "123456", DefaultOptions(), func(p Progress) {
		snapshots = append(snapshots, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "123456", result.VideoID)
	assert.Equal(t, 16, result.TotalMessages)
	assert.Equal(t, 3, result.BucketsAnalyzed)

	require.Len(t, result.Moments, 1)
	m := result.Moments[0]
	assert.Equal(t, 40, m.StartSec)
	assert.Equal(t, 70, m.EndSec)
	assert.Equal(t, models.CategoryFun, m.Tag)
	assert.Equal(t, 12, m.MessageCount)

	assert.Equal(t, []models.TimelinePoint{
		{Sec: 0, Count: 2},
		{Sec: 30, Count: 2},
		{Sec: 60, Count: 12},
	}, result.Timeline)

	// One progress snapshot per page, cumulative.
	require.Len(t, snapshots, 3)
	assert.Equal(t, Progress{PagesProcessed: 1, TotalMessages: 2, LastOffsetSeconds: 10}, snapshots[0])
	assert.Equal(t, Progress{PagesProcessed: 2, TotalMessages: 4, LastOffsetSeconds: 40}, snapshots[1])
	assert.Equal(t, Progress{PagesProcessed: 3, TotalMessages: 16, LastOffsetSeconds: 76}, snapshots[2])
}

func TestAnalyzer_Run_InvalidVideoID(t *testing.T) {
	feed := &fakeFeed{}
	analyzer := NewAnalyzer(feed)

	for _, id := range []string{"", "abc", "12a4", "12 34"} {
		_, err := analyzer.Run(context.Background(), id, DefaultOptions(), nil)
		assert.ErrorIs(t, err, ErrInvalidVideoID, "id %q", id)
	}
	assert.Zero(t, feed.calls, "invalid ids must not reach the feed")
}

func TestAnalyzer_Run_NoMessages(t *testing.T) {
	analyzer := NewAnalyzer(&fakeFeed{})

	_, err := analyzer.Run(context.Background(), "123", DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestAnalyzer_Run_UpstreamFailurePropagates(t *testing.T) {
	boom := errors.New("gql exploded")
	analyzer := NewAnalyzer(&fakeFeed{errAt: 1, err: boom})

	result, err := analyzer.Run(context.Background(), "123", DefaultOptions(), nil)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, result)
}

func TestAnalyzer_Run_TimeoutKeepsPartialResults(t *testing.T) {
	feed := threePageFeed()
	analyzer := NewAnalyzer(feed)

	opts := DefaultOptions()
	opts.Timeout = time.Nanosecond // expires after the first page lands

	result, err := analyzer.Run(context.Background(), "123", opts, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, feed.calls)
	assert.Equal(t, 2, result.TotalMessages)
	assert.Equal(t, 1, result.BucketsAnalyzed)
}

func TestAnalyzer_Run_CancellationKeepsPartialResults(t *testing.T) {
	feed := threePageFeed()
	feed.errAt = 2
	feed.err = fmt.Errorf("fetch: %w", context.Canceled)
	analyzer := NewAnalyzer(feed)

	result, err := analyzer.Run(context.Background(), "123", DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalMessages)
	assert.Equal(t, 1, result.BucketsAnalyzed)
}

func TestAnalyzer_Run_PageBudgetIsSuccess(t *testing.T) {
	feed := threePageFeed()
	analyzer := NewAnalyzer(feed)

	opts := DefaultOptions()
	opts.MaxPages = 2

	result, err := analyzer.Run(context.Background(), "123", opts, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, feed.calls)
	assert.Equal(t, 4, result.TotalMessages)
	assert.Equal(t, 2, result.BucketsAnalyzed)
}

func TestAnalyzer_Run_StartOffsetForwarded(t *testing.T) {
	feed := threePageFeed()
	analyzer := NewAnalyzer(feed)

	opts := DefaultOptions()
	opts.StartOffsetSeconds = 500

	_, err := analyzer.Run(context.Background(), "123", opts, nil)
	require.NoError(t, err)
	require.NotEmpty(t, feed.offsets)
	assert.Equal(t, 500, feed.offsets[0])
}

func TestOptions_Normalized(t *testing.T) {
	got := Options{}.normalized()

	assert.Equal(t, DefaultWindowSec, got.WindowSec)
	assert.Equal(t, DefaultClipDurationSec, got.ClipDurationSec)
	assert.Equal(t, DefaultMinGapSec, got.MinGapSec)
	assert.Equal(t, DefaultMaxPages, got.MaxPages)
	assert.Equal(t, DefaultTimeout, got.Timeout)

	custom := Options{WindowSec: 10, MaxPages: 3, Timeout: time.Minute}.normalized()
	assert.Equal(t, 10, custom.WindowSec)
	assert.Equal(t, 3, custom.MaxPages)
	assert.Equal(t, time.Minute, custom.Timeout)
}
