package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/Mindyourbiz9000/clippnj/pkg/database"
	"github.com/Mindyourbiz9000/clippnj/pkg/version"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
)

// healthHandler handles GET /health.
// Always answers 200: the service analyzes chat without the database, so a
// DB outage degrades the stats counter but must not restart the pod.
func (s *Server) healthHandler(c *echo.Context) error {
	reqCtx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]HealthCheck)
	status := healthStatusHealthy

	if s.dbClient != nil {
		if _, err := database.Health(reqCtx, s.dbClient.DB()); err != nil {
			status = healthStatusDegraded
			checks["database"] = HealthCheck{Status: "unhealthy", Message: err.Error()}
		} else {
			checks["database"] = HealthCheck{Status: healthStatusHealthy}
		}
	} else {
		checks["database"] = HealthCheck{Status: "not_configured", Message: "stats counter is in-memory"}
	}

	if s.connManager != nil {
		checks["websocket"] = HealthCheck{
			Status:  healthStatusHealthy,
			Message: fmt.Sprintf("%d active connections", s.connManager.ActiveConnections()),
		}
	}

	checks["analyses"] = HealthCheck{
		Status:  healthStatusHealthy,
		Message: fmt.Sprintf("%d in flight", len(s.analysisService.Active())),
	}

	return c.JSON(http.StatusOK, &HealthResponse{
		Status:  status,
		Version: version.GitCommit,
		Checks:  checks,
	})
}
