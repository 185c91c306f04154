// Package events provides real-time delivery of analysis progress over
// WebSocket. Publishing is process-local: the Publisher marshals typed
// payloads and the ConnectionManager fans them out to every client
// subscribed to the video's channel. Nothing is persisted — a client that
// connects mid-run sees only the events published after it subscribes.
package events

// Event types published during an analysis run.
const (
	EventTypeAnalysisStarted   = "analysis.started"
	EventTypeAnalysisProgress  = "analysis.progress"
	EventTypeAnalysisCompleted = "analysis.completed"
	EventTypeAnalysisFailed    = "analysis.failed"
)

// VideoChannel returns the channel name for a specific video's events.
// Format: "video:{video_id}"
func VideoChannel(videoID string) string {
	return "video:" + videoID
}

// ClientMessage is the JSON structure for client → server WebSocket messages.
type ClientMessage struct {
	Action  string `json:"action"`            // "subscribe", "unsubscribe", "ping"
	Channel string `json:"channel,omitempty"` // Channel name (e.g., "video:2233445566")
}
