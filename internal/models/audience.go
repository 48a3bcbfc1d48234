// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package models

import "time"

// AudienceProfile is the per-member engagement/sentiment rollup that feeds
// the segmentation engine. One row per (tenant, member handle).
type AudienceProfile struct {
	TenantID     string `json:"tenant_id"`
	MemberHandle string `json:"member_handle"`

	// Reach
	Followers int64 `json:"followers"`
	Verified  bool  `json:"verified"`

	// Activity
	TotalEvents   int64     `json:"total_events"`
	Likes         int64     `json:"likes"`
	Shares        int64     `json:"shares"`
	Comments      int64     `json:"comments"`
	Mentions      int64     `json:"mentions"`
	ActiveDays    int64     `json:"active_days"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	DaysSinceSeen int       `json:"days_since_seen"`
	TopPlatform   Platform  `json:"top_platform,omitempty"`
	TopTopic      string    `json:"top_topic,omitempty"`

	// Sentiment
	AvgSentiment  float64 `json:"avg_sentiment"`
	NegativeRatio float64 `json:"negative_ratio"`
	ScoredEvents  int64   `json:"scored_events"`

	// Derived
	EngagementScore float64 `json:"engagement_score"` // weighted activity score
}

// PostingSlot is one hour-of-week cell of the posting-time analysis.
type PostingSlot struct {
	DayOfWeek     int     `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	DayName       string  `json:"day_name"`
	HourOfDay     int     `json:"hour_of_day"` // 0..23
	EventCount    int64   `json:"event_count"`
	UniqueMembers int64   `json:"unique_members"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	Score         float64 `json:"score"`      // normalized 0..100 within the tenant/platform
	Confidence    float64 `json:"confidence"` // 0..1, derived from sample size
}

// PostingTimeReport is the posting-time recommendation payload.
type PostingTimeReport struct {
	TenantID    string        `json:"tenant_id"`
	Platform    Platform      `json:"platform,omitempty"` // empty = all platforms
	Slots       []PostingSlot `json:"slots"`              // full hour x day grid with activity
	Recommended []PostingSlot `json:"recommended"`        // top-N scored slots
	GeneratedAt time.Time     `json:"generated_at"`
}

// SentimentPoint is one bucket of the windowed sentiment trend.
type SentimentPoint struct {
	BucketStart   time.Time `json:"bucket_start"`
	EventCount    int64     `json:"event_count"`
	ScoredCount   int64     `json:"scored_count"`
	AvgSentiment  float64   `json:"avg_sentiment"`
	NegativeRatio float64   `json:"negative_ratio"`
	PositiveRatio float64   `json:"positive_ratio"`
}

// SentimentTrend is the sentiment-over-time payload.
type SentimentTrend struct {
	TenantID    string           `json:"tenant_id"`
	Platform    Platform         `json:"platform,omitempty"`
	BucketHours int              `json:"bucket_hours"`
	Points      []SentimentPoint `json:"points"`
}
