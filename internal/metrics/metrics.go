// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Engagement ingestion
// - LLM requests and heuristic fallbacks
// - Segment refreshes and cache efficiency
// - Crisis detection
// - WebSocket connections

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Ingestion Metrics
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_ingested_total",
			Help: "Total number of engagement events ingested",
		},
		[]string{"platform", "event_type"},
	)

	IngestBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_ingest_batch_size",
			Help:    "Number of events per ingestion batch",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		},
	)

	SentimentScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_scored_total",
			Help: "Total number of events scored by the sentiment analyzer",
		},
		[]string{"label"},
	)

	// LLM Metrics
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM completion requests",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "error", "rejected"
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM completion request duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"operation"},
	)

	LLMFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_heuristic_fallbacks_total",
			Help: "Total number of times the heuristic fallback replaced an LLM result",
		},
		[]string{"operation", "reason"}, // reason: "disabled", "error", "invalid_response", "circuit_open"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Segment Metrics
	SegmentRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "segment_refreshes_total",
			Help: "Total number of segment set refreshes",
		},
		[]string{"source"}, // "llm" or "heuristic"
	)

	SegmentRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "segment_refresh_duration_seconds",
			Help:    "Duration of segment set refreshes in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SegmentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "segment_cache_hits_total",
			Help: "Total number of segment cache hits",
		},
	)

	SegmentCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "segment_cache_misses_total",
			Help: "Total number of segment cache misses",
		},
	)

	// Crisis Detection Metrics
	CrisisChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_checks_total",
			Help: "Total number of crisis detector checks",
		},
		[]string{"detector"},
	)

	CrisisAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_alerts_total",
			Help: "Total number of crisis alerts raised",
		},
		[]string{"detector", "severity"},
	)

	CrisisCheckErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_check_errors_total",
			Help: "Total number of crisis detector errors",
		},
		[]string{"detector"},
	)

	CrisisNotifyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crisis_notify_errors_total",
			Help: "Total number of alert notification failures",
		},
		[]string{"notifier"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records query duration and errors.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordLLMRequest records an LLM request and its outcome.
func RecordLLMRequest(operation, outcome string, duration time.Duration) {
	LLMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	LLMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordLLMFallback records a heuristic fallback and its trigger.
func RecordLLMFallback(operation, reason string) {
	LLMFallbacks.WithLabelValues(operation, reason).Inc()
}

// RecordIngest records ingested events by platform and type.
func RecordIngest(platform, eventType string, count int) {
	EventsIngested.WithLabelValues(platform, eventType).Add(float64(count))
}

// TrackActiveRequest increments/decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
