// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package main is the entry point for the Crowdpulse server.
//
// Crowdpulse ingests engagement events from connected social platforms
// and turns them into audience intelligence: per-member profiles,
// LLM-assisted audience segments, posting-time recommendations,
// sentiment trends and real-time crisis alerts.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file and env vars (Koanf v2)
//  2. Database: DuckDB for engagement events, segments and alerts
//  3. Sentiment: lexicon scorer, optionally LLM-assisted
//  4. Segmentation engine with persisted history
//  5. Crisis engine with its detectors and webhook notifier
//  6. WebSocket hub for real-time alert delivery
//  7. HTTP server (chi) with the REST API
//
// All long-running components run under a Suture supervisor tree.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables (JWT_SECRET, HTTP_PORT, DUCKDB_PATH, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Required in production:
//   - JWT_SECRET: 32+ character token signing secret
//   - ADMIN_USERNAME / ADMIN_PASSWORD
//
// The LLM integration is optional; without AI_API_KEY all analysis
// uses the built-in heuristics.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests, closes WebSocket
// clients and then the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/ai"
	"github.com/crowdpulse/crowdpulse/internal/api"
	"github.com/crowdpulse/crowdpulse/internal/auth"
	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/crisis"
	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/segment"
	"github.com/crowdpulse/crowdpulse/internal/sentiment"
	"github.com/crowdpulse/crowdpulse/internal/supervisor"
	ws "github.com/crowdpulse/crowdpulse/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("ai_enabled", cfg.AI.Enabled).
		Bool("crisis_enabled", cfg.Crisis.Enabled).
		Msg("Starting Crowdpulse")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	segmentStore := segment.NewStore(db.Conn())
	if err := segmentStore.InitSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize segment schema")
	}

	alertStore := crisis.NewDuckDBStore(db.Conn())
	if err := alertStore.InitSchema(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize alert schema")
	}

	// LLM client. Disabled without an API key; every consumer has a
	// heuristic fallback.
	llm := ai.New(&cfg.AI)
	if llm.Enabled() {
		logging.Info().Str("model", cfg.AI.Model).Msg("LLM assistance enabled")
	} else {
		logging.Info().Msg("LLM assistance disabled, using heuristics")
	}

	scorer := sentiment.NewScorer(sentiment.NewAnalyzer(), llm)

	segmentEngine := segment.NewEngine(&cfg.Segment, segment.NewDBProvider(db), llm, logging.Logger())
	segmentEngine.SetStore(segmentStore)

	// WebSocket hub delivers alerts and stats to tenant dashboards.
	hub := ws.NewHub()

	history := crisis.NewDBHistory(db)
	crisisEngine := crisis.NewEngine(alertStore, history, hub, cfg.Crisis.CheckInterval)
	crisisEngine.RegisterDetector(crisis.NewSentimentSpikeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewVolumeSpikeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewInfluencerNegativeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewKeywordWatchlistDetector(history))
	crisisEngine.SetEnabled(cfg.Crisis.Enabled)

	if cfg.Crisis.WebhookURL != "" {
		crisisEngine.RegisterNotifier(crisis.NewWebhookNotifier(crisis.WebhookConfig{
			WebhookURL: cfg.Crisis.WebhookURL,
			Timeout:    cfg.Crisis.WebhookTimeout,
		}))
		logging.Info().Msg("Crisis webhook notifier enabled")
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	handlers := api.NewHandlers(db, scorer, segmentEngine, segmentStore, crisisEngine, alertStore, jwtManager, hub, cfg)
	router := api.NewRouter(handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAnalyticsService(supervisor.NewRunnerService(hub))
	tree.AddAnalyticsService(supervisor.NewRunnerService(crisisEngine))
	if cfg.Segment.Enabled {
		tree.AddAnalyticsService(supervisor.NewSegmentRefresherService(segmentEngine, db, cfg.Segment.RefreshInterval))
	}
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Crowdpulse stopped gracefully")
}
