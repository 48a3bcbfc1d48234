// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"context"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// Segment sources. Every segment set carries the path that produced it
// so consumers can tell an LLM clustering from the heuristic fallback.
const (
	SourceLLM       = "llm"
	SourceHeuristic = "heuristic"
)

// Heuristic segment names. The fallback classifier assigns every member
// to exactly one of these.
const (
	SegmentAdvocates     = "advocates"
	SegmentAtRisk        = "at_risk_detractors"
	SegmentHighlyEngaged = "highly_engaged"
	SegmentCasual        = "casual"
	SegmentDormant       = "dormant"
)

// Segment is one audience cluster with engagement guidance.
type Segment struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Members         []string `json:"members"` // member handles
	Recommendations []string `json:"recommendations"`
}

// SegmentSet is a full clustering of a tenant's audience at a point in time.
type SegmentSet struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Source      string    `json:"source"` // "llm" or "heuristic"
	Model       string    `json:"model,omitempty"`
	Segments    []Segment `json:"segments"`
	MemberCount int       `json:"member_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DataProvider is the engine's view of the storage layer. The production
// implementation wraps the database package; tests use fakes.
type DataProvider interface {
	// AudienceProfiles returns per-member rollups for a tenant over the
	// lookback window, ordered by activity.
	AudienceProfiles(ctx context.Context, tenantID string, lookback time.Duration, limit int) ([]*models.AudienceProfile, error)

	// PostingSlots returns the raw hour-of-week activity grid. An empty
	// platform means all platforms.
	PostingSlots(ctx context.Context, tenantID, platform string, lookback time.Duration) ([]models.PostingSlot, error)
}
