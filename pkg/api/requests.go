package api

import (
	"errors"
	"time"

	"github.com/Mindyourbiz9000/clippnj/pkg/services"
)

// AnalyzeRequest is the HTTP request body for POST /api/v1/analyze. All
// tuning fields are optional; zero values keep the configured defaults.
type AnalyzeRequest struct {
	URL               string   `json:"url"`
	WindowSec         int      `json:"windowSec,omitempty"`
	ClipDurationSec   int      `json:"clipDurationSec,omitempty"`
	MinGapSec         int      `json:"minGapSec,omitempty"`
	ThresholdFactor   *float64 `json:"thresholdFactor,omitempty"`
	MaxHighlights     int      `json:"maxHighlights,omitempty"`
	MaxPages          int      `json:"maxPages,omitempty"`
	AnalysisTimeoutMs int      `json:"analysisTimeoutMs,omitempty"`
}

// overrides validates the tuning fields and converts them to service
// overrides.
func (r *AnalyzeRequest) overrides() (services.AnalyzeOverrides, error) {
	if r.WindowSec < 0 || r.ClipDurationSec < 0 || r.MinGapSec < 0 ||
		r.MaxHighlights < 0 || r.MaxPages < 0 || r.AnalysisTimeoutMs < 0 {
		return services.AnalyzeOverrides{}, errors.New("tuning overrides must not be negative")
	}
	if r.ThresholdFactor != nil && *r.ThresholdFactor < 0 {
		return services.AnalyzeOverrides{}, errors.New("thresholdFactor must not be negative")
	}
	return services.AnalyzeOverrides{
		WindowSec:       r.WindowSec,
		ClipDurationSec: r.ClipDurationSec,
		MinGapSec:       r.MinGapSec,
		ThresholdFactor: r.ThresholdFactor,
		MaxHighlights:   r.MaxHighlights,
		MaxPages:        r.MaxPages,
		Timeout:         time.Duration(r.AnalysisTimeoutMs) * time.Millisecond,
	}, nil
}

// SearchRequest is the HTTP request body for POST /api/v1/search.
type SearchRequest struct {
	URL                string `json:"url"`
	Query              string `json:"query"`
	MaxResults         int    `json:"maxResults,omitempty"`
	MaxPages           int    `json:"maxPages,omitempty"`
	StartOffsetSeconds int    `json:"startOffsetSeconds,omitempty"`
}

// ClipRequest is the HTTP request body for POST /api/v1/clip.
type ClipRequest struct {
	URL         string `json:"url"`
	StartSec    int    `json:"startSec"`
	DurationSec int    `json:"durationSec"`
}
