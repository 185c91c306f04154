// Package e2e boots a complete clippnj instance against a scripted comment
// feed and exercises it over real HTTP and WebSocket connections.
package e2e

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mindyourbiz9000/clippnj/pkg/analysis"
	"github.com/Mindyourbiz9000/clippnj/pkg/api"
	"github.com/Mindyourbiz9000/clippnj/pkg/clip"
	"github.com/Mindyourbiz9000/clippnj/pkg/config"
	"github.com/Mindyourbiz9000/clippnj/pkg/events"
	"github.com/Mindyourbiz9000/clippnj/pkg/services"
	"github.com/Mindyourbiz9000/clippnj/pkg/stats"
	"github.com/Mindyourbiz9000/clippnj/pkg/twitch"
)

// TestApp boots a complete clippnj instance for e2e testing: a scripted
// comment feed, the real client/analyzer/services, and the HTTP server on an
// ephemeral port. The stats store is in-memory and no database is attached.
type TestApp struct {
	Config          *config.Config
	Feed            *ScriptedFeed
	StatsStore      stats.Store
	ConnManager     *events.ConnectionManager
	AnalysisService *services.AnalysisService
	SearchService   *services.SearchService
	Server          *api.Server

	BaseURL string // e.g. "http://127.0.0.1:54321"
	WSURL   string // e.g. "ws://127.0.0.1:54321/ws"

	t *testing.T
}

// testAppConfig holds options accumulated before creating the TestApp.
type testAppConfig struct {
	cfg    *config.Config
	cutter clip.Cutter
}

// TestAppOption configures the test app.
type TestAppOption func(*testAppConfig)

// WithConfig sets a custom config.
func WithConfig(cfg *config.Config) TestAppOption {
	return func(c *testAppConfig) { c.cfg = cfg }
}

// WithCutter wires a clip cutter into the server.
func WithCutter(cutter clip.Cutter) TestAppOption {
	return func(c *testAppConfig) { c.cutter = cutter }
}

// NewTestApp creates and starts a full clippnj test instance.
// Shutdown is registered via t.Cleanup automatically.
func NewTestApp(t *testing.T, opts ...TestAppOption) *TestApp {
	t.Helper()

	tc := &testAppConfig{}
	for _, opt := range opts {
		opt(tc)
	}
	if tc.cfg == nil {
		tc.cfg = defaultTestConfig()
	}

	// 1. Scripted upstream feed, wired in as the GQL endpoint.
	feed := NewScriptedFeed()
	tc.cfg.Upstream.GQLURL = feed.URL()

	// 2. Real comment client and analyzer against the scripted feed.
	client := twitch.NewClient(twitch.ClientConfig{
		GQLURL:         tc.cfg.Upstream.GQLURL,
		ClientID:       tc.cfg.Upstream.ClientID,
		RequestTimeout: tc.cfg.Upstream.RequestTimeout,
		RateLimitRPS:   tc.cfg.Upstream.RateLimitRPS,
		RateLimitBurst: tc.cfg.Upstream.RateLimitBurst,
	})
	analyzer := analysis.NewAnalyzer(client)

	// 3. Event fan-out, stats, services.
	connManager := events.NewConnectionManager(events.DefaultWriteTimeout)
	publisher := events.NewPublisher(connManager)
	store := stats.NewMemoryStore()
	analysisService := services.NewAnalysisService(analyzer, publisher, store, tc.cfg.Analysis)
	searchService := services.NewSearchService(client, tc.cfg.Search)

	// 4. HTTP server on an ephemeral port, no database.
	server := api.NewServer(tc.cfg, nil, analysisService, searchService, store, connManager)
	if tc.cutter != nil {
		server.SetCutter(tc.cutter)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = server.StartWithListener(ln)
	}()

	addr := ln.Addr().String()
	app := &TestApp{
		Config:          tc.cfg,
		Feed:            feed,
		StatsStore:      store,
		ConnManager:     connManager,
		AnalysisService: analysisService,
		SearchService:   searchService,
		Server:          server,
		BaseURL:         fmt.Sprintf("http://%s", addr),
		WSURL:           fmt.Sprintf("ws://%s/ws", addr),
		t:               t,
	}

	// Register cleanup: abort in-flight runs first so the HTTP drain below
	// is not stuck behind a held feed request.
	t.Cleanup(func() {
		analysisService.CancelAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		connManager.CloseAll()
		feed.Close()
	})

	return app
}

// defaultTestConfig starts from the shipped defaults and retunes them for a
// local scripted feed: no outbound politeness, short timeouts.
func defaultTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Upstream.RequestTimeout = 10 * time.Second
	cfg.Upstream.RateLimitRPS = 5000
	cfg.Upstream.RateLimitBurst = 5000
	cfg.Analysis.Timeout = 30 * time.Second
	return cfg
}
