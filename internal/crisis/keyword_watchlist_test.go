// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

func textEvents(texts ...string) []*models.EngagementEvent {
	events := make([]*models.EngagementEvent, len(texts))
	for i, text := range texts {
		events[i] = &models.EngagementEvent{
			MemberHandle: "@user",
			EventType:    models.EventComment,
			Text:         text,
		}
	}
	return events
}

func TestKeywordWatchlistDetector_Check_BelowThreshold(t *testing.T) {
	history := &mockEventHistory{
		textEvents: textEvents(
			"love the new product",
			"time to BOYCOTT this brand",
			"great support team",
		),
	}
	detector := NewKeywordWatchlistDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert below the match minimum")
	}
}

func TestKeywordWatchlistDetector_Check_MatchesTriggerWarning(t *testing.T) {
	history := &mockEventHistory{
		textEvents: textEvents(
			"time to boycott this brand",
			"heard about the lawsuit?",
			"total scam, avoid",
			"love the new product",
		),
	}
	detector := NewKeywordWatchlistDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert but got nil")
	}
	if alert.Severity != SeverityWarning {
		t.Errorf("Severity = %v, want %v", alert.Severity, SeverityWarning)
	}
	if alert.ObservedValue != 3 {
		t.Errorf("ObservedValue = %v, want 3", alert.ObservedValue)
	}
	if alert.SampleSize != 4 {
		t.Errorf("SampleSize = %d, want 4", alert.SampleSize)
	}

	var metadata KeywordWatchlistMetadata
	if err := json.Unmarshal(alert.Metadata, &metadata); err != nil {
		t.Fatalf("failed to unmarshal metadata: %v", err)
	}
	if metadata.Matches["boycott"] != 1 {
		t.Errorf("Matches[boycott] = %d, want 1", metadata.Matches["boycott"])
	}
}

func TestKeywordWatchlistDetector_Check_MatchingIsCaseInsensitive(t *testing.T) {
	history := &mockEventHistory{
		textEvents: textEvents(
			"BOYCOTT now",
			"Boycott them",
			"Class Action incoming",
		),
	}
	detector := NewKeywordWatchlistDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert but got nil")
	}

	var metadata KeywordWatchlistMetadata
	if err := json.Unmarshal(alert.Metadata, &metadata); err != nil {
		t.Fatalf("failed to unmarshal metadata: %v", err)
	}
	if metadata.Matches["boycott"] != 2 {
		t.Errorf("Matches[boycott] = %d, want 2", metadata.Matches["boycott"])
	}
}

func TestKeywordWatchlistDetector_Check_ManyMatchesIsCritical(t *testing.T) {
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = "this is a scam"
	}
	history := &mockEventHistory{textEvents: textEvents(texts...)}
	detector := NewKeywordWatchlistDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatal("expected alert but got nil")
	}
	if alert.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want %v", alert.Severity, SeverityCritical)
	}
	if !strings.Contains(alert.Message, "scam x10") {
		t.Errorf("expected top keyword in message, got %q", alert.Message)
	}
}

func TestKeywordWatchlistDetector_Configure(t *testing.T) {
	detector := NewKeywordWatchlistDetector(&mockEventHistory{})

	valid := `{"window_minutes": 60, "keywords": ["strike", "walkout"], "min_matches": 2, "critical_matches": 8}`
	if err := detector.Configure(json.RawMessage(valid)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detector.Config().Keywords) != 2 {
		t.Errorf("Keywords = %v, want 2 entries", detector.Config().Keywords)
	}

	if err := detector.Configure(json.RawMessage(`{"window_minutes": 60, "keywords": [], "min_matches": 2}`)); err == nil {
		t.Error("expected error for empty keyword list")
	}
}

func TestTopKeywords(t *testing.T) {
	matches := map[string]int{"scam": 5, "boycott": 5, "lawsuit": 2, "recall": 1}

	got := topKeywords(matches, 3)
	want := "boycott x5, scam x5, lawsuit x2"
	if got != want {
		t.Errorf("topKeywords() = %q, want %q", got, want)
	}
}
