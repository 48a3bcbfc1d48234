// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// LoginRequest authenticates the admin account for one tenant.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=256"`
	TenantID string `json:"tenant_id" validate:"required,min=2,max=64"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	TenantID  string    `json:"tenant_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IngestEventRequest is one engagement event to record. The tenant is
// taken from the bearer token, never from the body.
type IngestEventRequest struct {
	PostID          string    `json:"post_id" validate:"required,max=128"`
	Platform        string    `json:"platform" validate:"required,platform"`
	ContentType     string    `json:"content_type" validate:"omitempty,oneof=text image video link"`
	Topic           string    `json:"topic" validate:"omitempty,max=128"`
	MemberHandle    string    `json:"member_handle" validate:"required,max=128"`
	MemberFollowers int64     `json:"member_followers" validate:"min=0"`
	MemberVerified  bool      `json:"member_verified"`
	EventType       string    `json:"event_type" validate:"required,oneof=like share comment mention click impression"`
	Text            string    `json:"text" validate:"omitempty,max=4096"`
	Impressions     int64     `json:"impressions" validate:"min=0"`
	Clicks          int64     `json:"clicks" validate:"min=0"`
	OccurredAt      time.Time `json:"occurred_at" validate:"required"`
}

// toEvent converts the request into a storage event for the tenant.
func (r *IngestEventRequest) toEvent(tenantID string) *models.EngagementEvent {
	return &models.EngagementEvent{
		TenantID:        tenantID,
		PostID:          r.PostID,
		Platform:        models.Platform(r.Platform),
		ContentType:     r.ContentType,
		Topic:           r.Topic,
		MemberHandle:    r.MemberHandle,
		MemberFollowers: r.MemberFollowers,
		MemberVerified:  r.MemberVerified,
		EventType:       models.EventType(r.EventType),
		Text:            r.Text,
		Impressions:     r.Impressions,
		Clicks:          r.Clicks,
		OccurredAt:      r.OccurredAt,
	}
}

// BatchIngestRequest records many events in one transaction.
type BatchIngestRequest struct {
	Events []IngestEventRequest `json:"events" validate:"required,min=1,max=5000,dive"`
}

// AcknowledgeAlertRequest marks an alert as handled by an operator.
type AcknowledgeAlertRequest struct {
	AcknowledgedBy string `json:"acknowledged_by" validate:"required,max=128"`
}

// DetectorEnabledRequest toggles a crisis detector.
type DetectorEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}
