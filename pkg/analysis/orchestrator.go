package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// Orchestration defaults.
const (
	DefaultMaxPages = 15000
	DefaultTimeout  = 180 * time.Second
)

// ErrNoMessages is returned when ingestion finishes without a single bucket.
var ErrNoMessages = errors.New("no chat messages found for video")

// ErrInvalidVideoID is returned for video ids that are not digits-only.
var ErrInvalidVideoID = errors.New("video id must be digits only")

// errBudgetExceeded is the distinguished cancellation raised from the batch
// callback when the wall-clock ceiling is breached. It never escapes Run:
// budget exhaustion yields a successful partial result.
var errBudgetExceeded = errors.New("analysis wall-clock budget exceeded")

// Options tunes one analysis run. Callers should start from DefaultOptions
// and override; Run normalizes non-positive fields back to the defaults.
type Options struct {
	WindowSec          int
	ClipDurationSec    int
	MinGapSec          int
	ThresholdFactor    float64
	MaxHighlights      int
	MaxPages           int
	StartOffsetSeconds int
	Timeout            time.Duration
}

// DefaultOptions returns the standard analysis tuning.
func DefaultOptions() Options {
	return Options{
		WindowSec:       DefaultWindowSec,
		ClipDurationSec: DefaultClipDurationSec,
		MinGapSec:       DefaultMinGapSec,
		ThresholdFactor: 1.0,
		MaxPages:        DefaultMaxPages,
		Timeout:         DefaultTimeout,
	}
}

// Progress reports how far an in-flight analysis has come. Delivered to the
// optional callback after every ingested page.
type Progress struct {
	PagesProcessed    int
	TotalMessages     int
	LastOffsetSeconds int
}

// ProgressFunc consumes progress snapshots. Called synchronously from the
// ingestion loop, so implementations must be fast and must not block.
type ProgressFunc func(Progress)

// Analyzer runs the full chat-analysis pipeline for one video at a time:
// iterate the comment feed, accumulate scored messages into buckets, detect
// peaks, and shape the response.
type Analyzer struct {
	src twitch.CommentSource
}

// NewAnalyzer creates an analyzer reading chat from the given source.
func NewAnalyzer(src twitch.CommentSource) *Analyzer {
	return &Analyzer{src: src}
}

// Run analyzes the replay chat of one video. The wall-clock ceiling is
// checked in the ingestion callback after each page so the accumulator is
// always in a consistent state; on breach, on caller cancellation, or when
// the page budget is reached, the buckets gathered so far are analyzed and
// returned as a successful partial result. An ingestion run that produces no
// buckets at all fails with ErrNoMessages.
func (a *Analyzer) Run(ctx context.Context, videoID string, opts Options, onProgress ProgressFunc) (*models.AnalysisResult, error) {
	if !isDigits(videoID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}
	opts = opts.normalized()

	log := slog.With("video_id", videoID)
	log.Info("Starting chat analysis",
		"window_sec", opts.WindowSec,
		"max_pages", opts.MaxPages,
		"timeout", opts.Timeout)

	acc := NewAccumulator(opts.WindowSec)
	deadline := time.Now().Add(opts.Timeout)

	var progress Progress
	onBatch := func(messages []models.ChatMessage) error {
		acc.AddBatch(messages)

		progress.PagesProcessed++
		progress.TotalMessages = acc.TotalMessages()
		progress.LastOffsetSeconds = messages[len(messages)-1].OffsetSeconds
		if onProgress != nil {
			onProgress(progress)
		}

		if time.Now().After(deadline) {
			return errBudgetExceeded
		}
		return nil
	}

	stats, err := twitch.IterateChat(ctx, a.src, videoID, onBatch, twitch.IterateOptions{
		MaxPages:           opts.MaxPages,
		StartOffsetSeconds: opts.StartOffsetSeconds,
	})
	if err != nil {
		if !isBudgetExhaustion(err) {
			return nil, fmt.Errorf("chat iteration failed: %w", err)
		}
		log.Warn("Analysis budget exhausted, keeping partial results",
			"pages_processed", stats.PagesProcessed,
			"last_offset_seconds", stats.LastOffsetSeconds,
			"reason", err)
	}

	buckets := acc.Buckets()
	if len(buckets) == 0 {
		return nil, ErrNoMessages
	}

	moments := DetectMoments(buckets, DetectorOptions{
		WindowSec:       opts.WindowSec,
		ClipDurationSec: opts.ClipDurationSec,
		MinGapSec:       opts.MinGapSec,
		ThresholdFactor: opts.ThresholdFactor,
		MaxHighlights:   opts.MaxHighlights,
	})

	log.Info("Chat analysis complete",
		"pages_processed", stats.PagesProcessed,
		"total_messages", acc.TotalMessages(),
		"buckets", len(buckets),
		"moments", len(moments))

	return &models.AnalysisResult{
		VideoID:         videoID,
		TotalMessages:   acc.TotalMessages(),
		BucketsAnalyzed: len(buckets),
		Moments:         moments,
		Timeline:        buildTimeline(buckets),
	}, nil
}

func (o Options) normalized() Options {
	if o.WindowSec <= 0 {
		o.WindowSec = DefaultWindowSec
	}
	if o.ClipDurationSec <= 0 {
		o.ClipDurationSec = DefaultClipDurationSec
	}
	if o.MinGapSec <= 0 {
		o.MinGapSec = DefaultMinGapSec
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// isBudgetExhaustion reports whether iteration ended by running out of budget
// rather than by upstream failure: the callback's wall-clock signal, the
// caller's context being cancelled, or its deadline passing.
func isBudgetExhaustion(err error) bool {
	return errors.Is(err, errBudgetExceeded) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// buildTimeline shapes the populated buckets into chronological
// (second, count) pairs for plotting.
func buildTimeline(buckets map[int]*models.ChatBucket) []models.TimelinePoint {
	timeline := make([]models.TimelinePoint, 0, len(buckets))
	for key, bucket := range buckets {
		timeline = append(timeline, models.TimelinePoint{Sec: key, Count: bucket.MessageCount})
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i].Sec < timeline[j].Sec })
	return timeline
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
