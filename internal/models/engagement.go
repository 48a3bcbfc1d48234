// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package models defines the data structures shared between the database
// layer and the HTTP API.
package models

import "time"

// Platform identifies a social network.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTikTok    Platform = "tiktok"
)

// KnownPlatforms lists every supported platform.
var KnownPlatforms = []Platform{
	PlatformTwitter,
	PlatformInstagram,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformTikTok,
}

// IsKnownPlatform reports whether p is a supported platform.
func IsKnownPlatform(p Platform) bool {
	for _, known := range KnownPlatforms {
		if p == known {
			return true
		}
	}
	return false
}

// EventType identifies an engagement interaction kind.
type EventType string

const (
	EventLike       EventType = "like"
	EventShare      EventType = "share"
	EventComment    EventType = "comment"
	EventMention    EventType = "mention"
	EventClick      EventType = "click"
	EventImpression EventType = "impression"
)

// EngagementEvent is a single audience interaction with a tenant's content.
// It is the unit of ingestion and the row format of the engagement_events
// table. Sentiment fields are populated at ingest time by the sentiment
// analyzer when the event carries text.
type EngagementEvent struct {
	ID       int64  `json:"id"`
	TenantID string `json:"tenant_id"`

	// Content identification
	PostID      string   `json:"post_id"`
	Platform    Platform `json:"platform"`
	ContentType string   `json:"content_type,omitempty"` // image, video, text, link
	Topic       string   `json:"topic,omitempty"`

	// Audience member
	MemberHandle    string `json:"member_handle"`
	MemberFollowers int64  `json:"member_followers,omitempty"`
	MemberVerified  bool   `json:"member_verified,omitempty"`

	// Interaction
	EventType EventType `json:"event_type"`
	Text      string    `json:"text,omitempty"` // comment/mention body, if any

	// Engagement counters carried by the event (impressions and clicks are
	// post-level counters snapshotted at event time; zero when unknown).
	Impressions int64 `json:"impressions,omitempty"`
	Clicks      int64 `json:"clicks,omitempty"`

	// Sentiment, populated by the analyzer for text-bearing events.
	SentimentScore *float64 `json:"sentiment_score,omitempty"` // -1.0 .. 1.0
	SentimentLabel string   `json:"sentiment_label,omitempty"` // positive, neutral, negative

	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// EngagementSummary aggregates a tenant's engagement over a period.
type EngagementSummary struct {
	TotalEvents    int64   `json:"total_events"`
	UniqueMembers  int64   `json:"unique_members"`
	UniquePosts    int64   `json:"unique_posts"`
	Likes          int64   `json:"likes"`
	Shares         int64   `json:"shares"`
	Comments       int64   `json:"comments"`
	Mentions       int64   `json:"mentions"`
	AvgSentiment   float64 `json:"avg_sentiment"`
	NegativeRatio  float64 `json:"negative_ratio"`
	EngagementRate float64 `json:"engagement_rate"` // interactions per impression
}
