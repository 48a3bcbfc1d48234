// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

const (
	defaultLookbackDays = 90
	maxLookbackDays     = 365

	defaultTrendBucketHours = 24
	maxTrendBucketHours     = 168
)

// lookbackFilter builds a tenant-scoped filter for the requested
// lookback window (days query parameter, bounded).
func lookbackFilter(r *http.Request, tenantID string) database.EventFilter {
	days := queryInt(r, "days", defaultLookbackDays)
	if days <= 0 {
		days = defaultLookbackDays
	}
	if days > maxLookbackDays {
		days = maxLookbackDays
	}
	start := time.Now().UTC().AddDate(0, 0, -days)

	return database.EventFilter{
		TenantID:  tenantID,
		Platform:  r.URL.Query().Get("platform"),
		Topic:     r.URL.Query().Get("topic"),
		StartDate: &start,
	}
}

// HandleAudienceProfiles returns per-member engagement rollups.
func (h *Handlers) HandleAudienceProfiles(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	filter := lookbackFilter(r, tenantID)
	limit, offset := h.pagination(r)
	filter.Limit = limit
	filter.Offset = offset

	profiles, err := h.db.GetAudienceProfiles(r.Context(), filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(profiles, &PaginationMeta{
		Count:   len(profiles),
		Offset:  offset,
		Limit:   limit,
		HasMore: len(profiles) == limit,
	})
}

// HandleAudienceProfile returns the rollup for one member handle.
func (h *Handlers) HandleAudienceProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	handle := chi.URLParam(r, "handle")
	if handle == "" {
		rw.BadRequest("member handle is required")
		return
	}

	profile, err := h.db.GetAudienceProfile(r.Context(), tenantID, handle)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if profile == nil {
		rw.NotFound("no events recorded for member")
		return
	}

	rw.Success(profile)
}

// HandleSentimentTrend returns windowed sentiment averages and volumes.
func (h *Handlers) HandleSentimentTrend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	bucketHours := queryInt(r, "bucket_hours", defaultTrendBucketHours)
	if bucketHours <= 0 {
		bucketHours = defaultTrendBucketHours
	}
	if bucketHours > maxTrendBucketHours {
		bucketHours = maxTrendBucketHours
	}

	trend, err := h.db.GetSentimentTrend(r.Context(), lookbackFilter(r, tenantID), bucketHours)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(trend)
}

// HandleEngagementSummary returns tenant-level engagement totals.
func (h *Handlers) HandleEngagementSummary(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.db.GetEngagementSummary(r.Context(), lookbackFilter(r, tenantID))
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(summary)
}

// HandlePostingTimes returns scored posting slots and the recommended
// top slots for a platform.
func (h *Handlers) HandlePostingTimes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	platform := models.Platform(r.URL.Query().Get("platform"))
	if platform != "" && !models.IsKnownPlatform(platform) {
		rw.BadRequest("unsupported platform")
		return
	}

	report, err := h.segments.PostingTimes(r.Context(), tenantID, platform)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.Success(report)
}
