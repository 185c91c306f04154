// Package api exposes the analysis pipeline over HTTP: JSON endpoints for
// starting and cancelling runs, chat search, service stats, a WebSocket
// endpoint for progress events, and Prometheus metrics.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"

	"github.com/Mindyourbiz9000/clippnj/pkg/clip"
	"github.com/Mindyourbiz9000/clippnj/pkg/config"
	"github.com/Mindyourbiz9000/clippnj/pkg/database"
	"github.com/Mindyourbiz9000/clippnj/pkg/events"
	"github.com/Mindyourbiz9000/clippnj/pkg/metrics"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
	"github.com/Mindyourbiz9000/clippnj/pkg/stats"
)

// maxBodyBytes caps JSON request bodies on the /api/v1 endpoints.
const maxBodyBytes = 1 << 20 // 1 MiB

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg             *config.Config
	dbClient        *database.Client // nil when running without PostgreSQL
	analysisService *services.AnalysisService
	searchService   *services.SearchService
	statsStore      stats.Store
	connManager     *events.ConnectionManager
	cutter          clip.Cutter // nil until a deployment wires one
}

// NewServer creates the API server and registers all routes. dbClient may be
// nil (health then reports the stats store as in-memory).
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	analysisService *services.AnalysisService,
	searchService *services.SearchService,
	statsStore stats.Store,
	connManager *events.ConnectionManager,
) *Server {
	s := &Server{
		echo:            echo.New(),
		cfg:             cfg,
		dbClient:        dbClient,
		analysisService: analysisService,
		searchService:   searchService,
		statsStore:      statsStore,
		connManager:     connManager,
	}
	s.registerRoutes()
	return s
}

// SetCutter wires a clip cutter implementation. Without one, POST
// /api/v1/clip answers 501.
func (s *Server) SetCutter(cutter clip.Cutter) {
	s.cutter = cutter
}

func (s *Server) registerRoutes() {
	e := s.echo
	e.Use(requestLogger())
	e.Use(recoverPanics())
	e.Use(securityHeaders())
	e.Use(corsMiddleware(s.cfg.Server.CORSOrigins))

	api := e.Group("/api/v1")
	api.Use(bodyLimit(maxBodyBytes))
	api.POST("/analyze", s.analyzeHandler)
	api.POST("/search", s.searchHandler)
	api.POST("/analyses/:videoId/cancel", s.cancelAnalysisHandler)
	api.GET("/analyses", s.activeAnalysesHandler)
	api.GET("/stats", s.statsHandler)
	api.POST("/clip", s.clipHandler)

	e.GET("/health", s.healthHandler)
	e.GET("/ws", s.wsHandler)
	e.GET("/metrics", s.metricsHandler)
}

// metricsHandler handles GET /metrics.
func (s *Server) metricsHandler(c *echo.Context) error {
	metrics.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// Start listens on addr and serves until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener serves on an already-bound listener. Tests use this to
// run on an ephemeral port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.Serve(ln)
}

// Shutdown stops accepting new connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
