package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// analyzeHandler handles POST /api/v1/analyze.
// Runs the full pipeline synchronously and returns the analysis result;
// progress is streamed to WebSocket subscribers while the call is in flight.
func (s *Server) analyzeHandler(c *echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if req.URL == "" {
		return badRequest(c, "url field is required")
	}

	overrides, err := req.overrides()
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := s.analysisService.Analyze(c.Request().Context(), req.URL, overrides)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// cancelAnalysisHandler handles POST /api/v1/analyses/:videoId/cancel.
// Cancelling a video with no active run is a no-op, reported in the response.
func (s *Server) cancelAnalysisHandler(c *echo.Context) error {
	videoID := c.Param("videoId")
	if videoID == "" {
		return badRequest(c, "video id is required")
	}

	cancelled := s.analysisService.Cancel(videoID)

	return c.JSON(http.StatusOK, &CancelResponse{
		VideoID:   videoID,
		Cancelled: cancelled,
	})
}

// activeAnalysesHandler handles GET /api/v1/analyses.
func (s *Server) activeAnalysesHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &ActiveAnalysesResponse{
		Active: s.analysisService.Active(),
	})
}
