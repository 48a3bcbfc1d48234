// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
)

func TestNewSentimentSpikeDetector(t *testing.T) {
	detector := NewSentimentSpikeDetector(&mockEventHistory{})

	if detector.Type() != DetectorSentimentSpike {
		t.Errorf("Type() = %v, want %v", detector.Type(), DetectorSentimentSpike)
	}
	if !detector.Enabled() {
		t.Error("detector should be enabled by default")
	}
}

func TestSentimentSpikeDetector_Check_Disabled(t *testing.T) {
	detector := NewSentimentSpikeDetector(&mockEventHistory{})
	detector.SetEnabled(false)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert when detector is disabled")
	}
}

func TestSentimentSpikeDetector_Check_InsufficientSamples(t *testing.T) {
	history := &mockEventHistory{
		currentStats:  &WindowStats{ScoredCount: 5, AvgSentiment: -0.8},
		baselineStats: &WindowStats{ScoredCount: 100, AvgSentiment: 0.2},
	}
	detector := NewSentimentSpikeDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert below the sample minimum")
	}
}

func TestSentimentSpikeDetector_Check_NoBaseline(t *testing.T) {
	history := &mockEventHistory{
		currentStats:  &WindowStats{ScoredCount: 50, AvgSentiment: -0.8},
		baselineStats: &WindowStats{ScoredCount: 3, AvgSentiment: 0.2},
	}
	detector := NewSentimentSpikeDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert on a cold start without baseline")
	}
}

func TestSentimentSpikeDetector_Check_NoDrop(t *testing.T) {
	history := &mockEventHistory{
		currentStats:  &WindowStats{ScoredCount: 50, AvgSentiment: 0.15},
		baselineStats: &WindowStats{ScoredCount: 200, AvgSentiment: 0.2},
	}
	detector := NewSentimentSpikeDetector(history)

	alert, err := detector.Check(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Error("expected no alert when sentiment is stable")
	}
}

func TestSentimentSpikeDetector_Check_DropTriggersWarning(t *testing.T) {
	history := &mockEventHistory{
		currentStats: &WindowStats{
			ScoredCount:   50,
			NegativeCount: 15, // 30% negative, below the critical ratio
			AvgSentiment:  -0.2,
		},
		baselineStats: &WindowStats{ScoredCount: 200, AvgSentiment: 0.3},
	}
	detector := NewSentimentSpikeDetector(history)

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
	if alert.ObservedValue != -0.2 {
		t.Errorf("ObservedValue = %v, want -0.2", alert.ObservedValue)
	}
	if alert.BaselineValue != 0.3 {
		t.Errorf("BaselineValue = %v, want 0.3", alert.BaselineValue)
	}
	if alert.SampleSize != 50 {
		t.Errorf("SampleSize = %d, want 50", alert.SampleSize)
	}

	var metadata SentimentSpikeMetadata
	if err := json.Unmarshal(alert.Metadata, &metadata); err != nil {
		t.Fatalf("failed to unmarshal metadata: %v", err)
	}
	if metadata.CurrentSamples != 50 {
		t.Errorf("metadata.CurrentSamples = %d, want 50", metadata.CurrentSamples)
	}
}

func TestSentimentSpikeDetector_Check_HighNegativeRatioIsCritical(t *testing.T) {
	history := &mockEventHistory{
		currentStats: &WindowStats{
			ScoredCount:   50,
			NegativeCount: 30, // 60% negative
			AvgSentiment:  -0.4,
		},
		baselineStats: &WindowStats{ScoredCount: 200, AvgSentiment: 0.1},
	}
	detector := NewSentimentSpikeDetector(history)

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
}

func TestSentimentSpikeDetector_Configure(t *testing.T) {
	detector := NewSentimentSpikeDetector(&mockEventHistory{})

	valid := `{"window_minutes": 30, "baseline_hours": 12, "min_samples": 10, "drop_threshold": 0.2, "negative_ratio_critical": 0.6}`
	if err := detector.Configure(json.RawMessage(valid)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detector.Config().WindowMinutes != 30 {
		t.Errorf("WindowMinutes = %d, want 30", detector.Config().WindowMinutes)
	}

	invalid := []string{
		`not json`,
		`{"window_minutes": 0, "baseline_hours": 12, "min_samples": 10, "drop_threshold": 0.2}`,
		`{"window_minutes": 30, "baseline_hours": 12, "min_samples": 10, "drop_threshold": -1}`,
	}
	for _, config := range invalid {
		if err := detector.Configure(json.RawMessage(config)); err == nil {
			t.Errorf("expected error for config %q", config)
		}
	}
}
