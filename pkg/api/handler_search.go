package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/Mindyourbiz9000/clippnj/pkg/services"
)

// searchHandler handles POST /api/v1/search.
func (s *Server) searchHandler(c *echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if req.URL == "" {
		return badRequest(c, "url field is required")
	}
	if req.MaxResults < 0 || req.MaxPages < 0 || req.StartOffsetSeconds < 0 {
		return badRequest(c, "tuning overrides must not be negative")
	}

	result, err := s.searchService.Search(c.Request().Context(), req.URL, req.Query, services.SearchOptions{
		MaxResults:         req.MaxResults,
		MaxPages:           req.MaxPages,
		StartOffsetSeconds: req.StartOffsetSeconds,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}
