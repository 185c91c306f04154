package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/Mindyourbiz9000/clippnj/pkg/clip"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// clipHandler handles POST /api/v1/clip. Without a wired cutter every
// well-formed request answers 501.
func (s *Server) clipHandler(c *echo.Context) error {
	var req ClipRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	if s.cutter == nil {
		return mapServiceError(c, clip.ErrNotConfigured)
	}

	videoID, err := twitch.ParseVideoURL(req.URL)
	if err != nil {
		return mapServiceError(c, err)
	}
	if req.StartSec < 0 {
		return badRequest(c, "startSec must not be negative")
	}
	if req.DurationSec <= 0 {
		return badRequest(c, "durationSec must be positive")
	}

	artifact, err := s.cutter.Cut(c.Request().Context(), videoID, req.StartSec, req.DurationSec)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, &ClipResponse{
		VideoID:      videoID,
		ArtifactPath: artifact,
	})
}
