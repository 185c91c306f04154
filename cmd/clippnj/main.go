// clippnj server — reads Twitch VOD replay chat, surfaces clip-worthy
// moments, and serves the analysis over HTTP and WebSocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mindyourbiz9000/clippnj/pkg/analysis"
	"github.com/Mindyourbiz9000/clippnj/pkg/api"
	"github.com/Mindyourbiz9000/clippnj/pkg/config"
	"github.com/Mindyourbiz9000/clippnj/pkg/database"
	"github.com/Mindyourbiz9000/clippnj/pkg/events"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
	"github.com/Mindyourbiz9000/clippnj/pkg/stats"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
	"github.com/Mindyourbiz9000/clippnj/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// Parse command-line flags
	configPath := flag.String("config",
		getEnv("CLIPPNJ_CONFIG", ""),
		"Path to YAML configuration file (optional; defaults apply without it)")
	flag.Parse()

	// Load .env before anything reads the environment
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, continuing with existing environment", "error", err)
	} else {
		slog.Info("Loaded environment from .env")
	}

	ctx := context.Background()

	// 1. Initialize configuration
	cfg, err := config.Initialize(*configPath)
	if err != nil {
		slog.Error("Failed to initialize configuration", "error", err)
		os.Exit(1)
	}

	// Structured JSON logging at the configured level
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Starting clippnj",
		"version", version.GitCommit,
		"listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))

	// 2. Initialize the stats store: PostgreSQL when configured, otherwise
	// in-memory (the counter then resets on restart).
	var statsStore stats.Store
	var dbClient *database.Client
	if database.EnvConfigured() {
		dbConfig, err := database.LoadConfigFromEnv()
		if err != nil {
			slog.Error("Failed to load database config", "error", err)
			os.Exit(1)
		}
		dbClient, err = database.NewClient(ctx, dbConfig)
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				slog.Error("Error closing database client", "error", err)
			}
		}()
		statsStore = stats.NewPostgresStore(dbClient.DB())
		slog.Info("Connected to PostgreSQL database")
	} else {
		statsStore = stats.NewMemoryStore()
		slog.Info("No database configured, stats counter is in-memory")
	}

	// 3. Create the comment feed client and analyzer
	feed := twitch.NewClient(twitch.ClientConfig{
		GQLURL:         cfg.Upstream.GQLURL,
		ClientID:       cfg.Upstream.ClientID,
		RequestTimeout: cfg.Upstream.RequestTimeout,
		RateLimitRPS:   cfg.Upstream.RateLimitRPS,
		RateLimitBurst: cfg.Upstream.RateLimitBurst,
	})
	analyzer := analysis.NewAnalyzer(feed)

	// 4. Initialize the event fan-out and services
	connManager := events.NewConnectionManager(events.DefaultWriteTimeout)
	publisher := events.NewPublisher(connManager)

	analysisService := services.NewAnalysisService(analyzer, publisher, statsStore, cfg.Analysis)
	searchService := services.NewSearchService(feed, cfg.Search)
	slog.Info("Services initialized", "max_concurrent_analyses", cfg.Analysis.MaxConcurrent)

	// 5. Create HTTP server
	httpServer := api.NewServer(cfg, dbClient, analysisService, searchService, statsStore, connManager)

	// 6. Start HTTP server (non-blocking)
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	slog.Info("clippnj started successfully")

	// 7. Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	// 8. Graceful shutdown: stop accepting HTTP, then cancel in-flight
	// analyses, then drop WebSocket clients.
	httpShutdownCtx, httpCancel := context.WithTimeout(ctx, 10*time.Second)
	defer httpCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	analysisService.CancelAll()
	connManager.CloseAll()

	slog.Info("Shutdown complete")
}
