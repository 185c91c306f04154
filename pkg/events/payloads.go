package events

// AnalysisStartedPayload is the payload for analysis.started events.
// Published when an analysis run is accepted and begins ingesting chat.
type AnalysisStartedPayload struct {
	Type      string `json:"type"`      // always EventTypeAnalysisStarted
	VideoID   string `json:"videoId"`   // video being analyzed
	Timestamp string `json:"timestamp"` // RFC3339Nano
}

// AnalysisProgressPayload is the payload for analysis.progress events.
// Published after every ingested page — high frequency, ephemeral.
type AnalysisProgressPayload struct {
	Type              string `json:"type"` // always EventTypeAnalysisProgress
	VideoID           string `json:"videoId"`
	PagesProcessed    int    `json:"pagesProcessed"`
	TotalMessages     int    `json:"totalMessages"`
	LastOffsetSeconds int    `json:"lastOffsetSeconds"` // stream offset of the newest ingested message
	Timestamp         string `json:"timestamp"`         // RFC3339Nano
}

// AnalysisCompletedPayload is the payload for analysis.completed events.
// The full result travels on the HTTP response; this event only announces it.
type AnalysisCompletedPayload struct {
	Type          string `json:"type"` // always EventTypeAnalysisCompleted
	VideoID       string `json:"videoId"`
	Moments       int    `json:"moments"` // number of detected moments
	TotalMessages int    `json:"totalMessages"`
	DurationMs    int64  `json:"durationMs"` // wall-clock run duration
	Timestamp     string `json:"timestamp"`  // RFC3339Nano
}

// AnalysisFailedPayload is the payload for analysis.failed events.
type AnalysisFailedPayload struct {
	Type      string `json:"type"` // always EventTypeAnalysisFailed
	VideoID   string `json:"videoId"`
	Category  string `json:"category"` // error category, e.g. "upstream-unavailable"
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // RFC3339Nano
}
