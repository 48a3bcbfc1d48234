// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crowdpulse/crowdpulse/internal/auth"
	"github.com/crowdpulse/crowdpulse/internal/middleware"
)

// NewRouter assembles the HTTP routing tree. Health probes, metrics
// and login are public; everything under /api/v1 requires a valid
// bearer token carrying a tenant claim.
func NewRouter(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if !h.cfg.Security.RateLimitDisabled {
		r.Use(httprate.LimitByIP(h.cfg.Security.RateLimitReqs, h.cfg.Security.RateLimitWindow))
	}

	// Public surface. Probes and metrics never require a token so
	// that orchestrators and scrapers work without credentials.
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/api/v1/auth/login", h.HandleLogin)

	// Tenant-scoped API.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(h.jwt))
		r.Use(middleware.PrometheusMetrics)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.HandleIngestEvent)
			r.Post("/batch", h.HandleIngestBatch)
			r.Get("/", h.HandleListEvents)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/audience", h.HandleAudienceProfiles)
			r.Get("/audience/{handle}", h.HandleAudienceProfile)
			r.Get("/sentiment-trend", h.HandleSentimentTrend)
			r.Get("/summary", h.HandleEngagementSummary)
			r.Get("/posting-times", h.HandlePostingTimes)
		})

		r.Route("/segments", func(r chi.Router) {
			r.Get("/", h.HandleGetSegments)
			r.Post("/refresh", h.HandleRefreshSegments)
			r.Get("/history", h.HandleSegmentHistory)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", h.HandleListAlerts)
			r.Get("/{id}", h.HandleGetAlert)
			r.Post("/{id}/ack", h.HandleAcknowledgeAlert)
		})

		r.Route("/detectors", func(r chi.Router) {
			r.Get("/", h.HandleListDetectors)
			r.Put("/{type}", h.HandleConfigureDetector)
			r.Put("/{type}/enabled", h.HandleSetDetectorEnabled)
		})

		r.Get("/ws", h.HandleWebSocket)
	})

	return r
}
