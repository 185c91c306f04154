package api

import (
	"fmt"
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// statsHandler handles GET /api/v1/stats.
func (s *Server) statsHandler(c *echo.Context) error {
	snapshot, err := s.statsStore.Snapshot(c.Request().Context())
	if err != nil {
		return mapServiceError(c, fmt.Errorf("reading stats: %w", err))
	}
	return c.JSON(http.StatusOK, snapshot)
}
