package api

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// CancelResponse is returned by POST /api/v1/analyses/:videoId/cancel.
// Cancelled is false when no run was active for the video.
type CancelResponse struct {
	VideoID   string `json:"videoId"`
	Cancelled bool   `json:"cancelled"`
}

// ActiveAnalysesResponse is returned by GET /api/v1/analyses.
type ActiveAnalysesResponse struct {
	Active []string `json:"active"`
}

// ClipResponse is returned by POST /api/v1/clip once a cutter is wired.
type ClipResponse struct {
	VideoID      string `json:"videoId"`
	ArtifactPath string `json:"artifactPath"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Checks  map[string]HealthCheck `json:"checks"`
}

// HealthCheck is one component's state within HealthResponse.
type HealthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
