package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Mindyourbiz9000/clippnj/pkg/analysis"
	"github.com/Mindyourbiz9000/clippnj/pkg/config"
	"github.com/Mindyourbiz9000/clippnj/pkg/events"
	"github.com/Mindyourbiz9000/clippnj/pkg/metrics"
	"github.com/Mindyourbiz9000/clippnj/pkg/models"
	"github.com/Mindyourbiz9000/clippnj/pkg/stats"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// AnalyzeOverrides carries per-request tuning. Zero fields keep the
// configured defaults; ThresholdFactor is a pointer because an explicit zero
// ("threshold = mean") differs from "use the default".
type AnalyzeOverrides struct {
	WindowSec       int
	ClipDurationSec int
	MinGapSec       int
	ThresholdFactor *float64
	MaxHighlights   int
	MaxPages        int
	Timeout         time.Duration
}

// AnalysisService gates analysis runs: one run per video at a time, a global
// concurrency cap across videos, and a cancel registry for explicit
// cancellation. Around each run it publishes progress events, bumps the scan
// counter, and records metrics.
type AnalysisService struct {
	analyzer  *analysis.Analyzer
	publisher *events.Publisher
	stats     stats.Store
	defaults  config.AnalysisConfig

	// slots is the global concurrency semaphore.
	slots chan struct{}

	// active maps a video id to the cancel func of its in-flight run.
	mu     sync.Mutex
	active map[string]context.CancelFunc
}

// NewAnalysisService creates the service. publisher may be nil for headless
// deployments; stats must not be nil.
func NewAnalysisService(analyzer *analysis.Analyzer, publisher *events.Publisher, store stats.Store, defaults config.AnalysisConfig) *AnalysisService {
	if analyzer == nil {
		panic("NewAnalysisService: analyzer must not be nil")
	}
	if store == nil {
		panic("NewAnalysisService: store must not be nil")
	}
	maxConcurrent := defaults.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &AnalysisService{
		analyzer:  analyzer,
		publisher: publisher,
		stats:     store,
		defaults:  defaults,
		slots:     make(chan struct{}, maxConcurrent),
		active:    make(map[string]context.CancelFunc),
	}
}

// Analyze runs the full pipeline for the video named by rawURL. Duplicate
// requests for a video already being analyzed fail with
// ErrAnalysisInProgress; otherwise the call blocks for a free slot, runs to
// completion, and returns the result. Budget exhaustion and explicit
// cancellation still yield a (partial) result.
func (s *AnalysisService) Analyze(ctx context.Context, rawURL string, overrides AnalyzeOverrides) (*models.AnalysisResult, error) {
	videoID, err := twitch.ParseVideoURL(rawURL)
	if err != nil {
		return nil, err
	}

	runCtx, err := s.register(ctx, videoID)
	if err != nil {
		return nil, err
	}
	defer s.unregister(videoID)

	select {
	case s.slots <- struct{}{}:
		defer func() { <-s.slots }()
	case <-runCtx.Done():
		return nil, fmt.Errorf("analysis cancelled while waiting for a slot: %w", runCtx.Err())
	}

	metrics.RecordAnalysisStarted()
	start := time.Now()
	s.publishStarted(videoID)

	var lastProgress analysis.Progress
	onProgress := func(p analysis.Progress) {
		lastProgress = p
		s.publishProgress(videoID, p)
	}

	result, err := s.analyzer.Run(runCtx, videoID, s.effectiveOptions(overrides), onProgress)
	duration := time.Since(start)

	if err != nil {
		err = s.classifyRunError(err)
		s.publishFailed(videoID, err)
		metrics.RecordAnalysisFinished(metrics.OutcomeFailed, duration,
			lastProgress.PagesProcessed, lastProgress.TotalMessages, 0)
		return nil, err
	}

	if err := s.stats.IncrementScans(ctx); err != nil {
		// The run itself succeeded; a counter hiccup must not fail it.
		slog.Warn("Failed to increment scan counter", "video_id", videoID, "error", err)
	}

	outcome := metrics.OutcomeCompleted
	if runCtx.Err() != nil {
		outcome = metrics.OutcomeCancelled
	}
	metrics.RecordAnalysisFinished(outcome, duration,
		lastProgress.PagesProcessed, result.TotalMessages, len(result.Moments))
	s.publishCompleted(videoID, result, duration)

	return result, nil
}

// Cancel stops an in-flight analysis for the video. It reports whether a run
// was actually active; cancelling an idle video is a no-op.
func (s *AnalysisService) Cancel(videoID string) bool {
	s.mu.Lock()
	cancel, ok := s.active[videoID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	slog.Info("Cancelling analysis", "video_id", videoID)
	cancel()
	return true
}

// CancelAll stops every in-flight analysis. Used during shutdown; the runs
// finish with partial results.
func (s *AnalysisService) CancelAll() {
	s.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(s.active))
	for _, cancel := range s.active {
		cancels = append(cancels, cancel)
	}
	count := len(cancels)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	if count > 0 {
		slog.Info("Cancelled active analyses", "count", count)
	}
}

// Active returns the ids of videos currently being analyzed, sorted.
func (s *AnalysisService) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// register enforces per-video single-flight and hands back the run context.
func (s *AnalysisService) register(ctx context.Context, videoID string) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.active[videoID]; running {
		return nil, fmt.Errorf("%w: video %s", ErrAnalysisInProgress, videoID)
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.active[videoID] = cancel
	return runCtx, nil
}

func (s *AnalysisService) unregister(videoID string) {
	s.mu.Lock()
	cancel, ok := s.active[videoID]
	delete(s.active, videoID)
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// effectiveOptions resolves per-request overrides over the configured
// defaults.
func (s *AnalysisService) effectiveOptions(o AnalyzeOverrides) analysis.Options {
	opts := analysis.Options{
		WindowSec:       s.defaults.WindowSec,
		ClipDurationSec: s.defaults.ClipDurationSec,
		MinGapSec:       s.defaults.MinGapSec,
		ThresholdFactor: s.defaults.ThresholdFactor,
		MaxHighlights:   s.defaults.MaxHighlights,
		MaxPages:        s.defaults.MaxPages,
		Timeout:         s.defaults.Timeout,
	}
	if o.WindowSec > 0 {
		opts.WindowSec = o.WindowSec
	}
	if o.ClipDurationSec > 0 {
		opts.ClipDurationSec = o.ClipDurationSec
	}
	if o.MinGapSec > 0 {
		opts.MinGapSec = o.MinGapSec
	}
	if o.ThresholdFactor != nil {
		opts.ThresholdFactor = *o.ThresholdFactor
	}
	if o.MaxHighlights > 0 {
		opts.MaxHighlights = o.MaxHighlights
	}
	if o.MaxPages > 0 {
		opts.MaxPages = o.MaxPages
	}
	if o.Timeout > 0 {
		opts.Timeout = o.Timeout
	}
	return opts
}

// classifyRunError tags pipeline failures for the error taxonomy. Input and
// no-data errors pass through; everything else a run can fail with comes
// from the comment feed.
func (s *AnalysisService) classifyRunError(err error) error {
	if errors.Is(err, analysis.ErrInvalidVideoID) || errors.Is(err, analysis.ErrNoMessages) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
}

func (s *AnalysisService) publishStarted(videoID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisStarted(videoID, events.AnalysisStartedPayload{
		Type:      events.EventTypeAnalysisStarted,
		VideoID:   videoID,
		Timestamp: eventTimestamp(),
	}); err != nil {
		slog.Warn("Failed to publish analysis.started", "video_id", videoID, "error", err)
	}
}

func (s *AnalysisService) publishProgress(videoID string, p analysis.Progress) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisProgress(videoID, events.AnalysisProgressPayload{
		Type:              events.EventTypeAnalysisProgress,
		VideoID:           videoID,
		PagesProcessed:    p.PagesProcessed,
		TotalMessages:     p.TotalMessages,
		LastOffsetSeconds: p.LastOffsetSeconds,
		Timestamp:         eventTimestamp(),
	}); err != nil {
		slog.Warn("Failed to publish analysis.progress", "video_id", videoID, "error", err)
	}
}

func (s *AnalysisService) publishCompleted(videoID string, result *models.AnalysisResult, duration time.Duration) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisCompleted(videoID, events.AnalysisCompletedPayload{
		Type:          events.EventTypeAnalysisCompleted,
		VideoID:       videoID,
		Moments:       len(result.Moments),
		TotalMessages: result.TotalMessages,
		DurationMs:    duration.Milliseconds(),
		Timestamp:     eventTimestamp(),
	}); err != nil {
		slog.Warn("Failed to publish analysis.completed", "video_id", videoID, "error", err)
	}
}

func (s *AnalysisService) publishFailed(videoID string, runErr error) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAnalysisFailed(videoID, events.AnalysisFailedPayload{
		Type:      events.EventTypeAnalysisFailed,
		VideoID:   videoID,
		Category:  Categorize(runErr),
		Message:   runErr.Error(),
		Timestamp: eventTimestamp(),
	}); err != nil {
		slog.Warn("Failed to publish analysis.failed", "video_id", videoID, "error", err)
	}
}

func eventTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
