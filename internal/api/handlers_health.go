// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"
	"time"
)

// HealthStatus is returned by the health endpoints.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Database      string `json:"database,omitempty"`
}

// HandleLiveness reports process liveness. It never touches dependencies.
func (h *Handlers) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// HandleReadiness reports whether the service can serve traffic. The
// database is the only hard dependency; a missing LLM never fails readiness.
func (h *Handlers) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Database:      "ok",
	}

	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unreachable")
		return
	}

	rw.Success(status)
}
