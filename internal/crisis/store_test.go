// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package crisis

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/crowdpulse/crowdpulse/internal/database"
)

func setupTestStore(t *testing.T) *DuckDBStore {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	store := NewDuckDBStore(db.Conn())
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("failed to init alert schema: %v", err)
	}
	return store
}

func testAlert(tenantID string, detectorType DetectorType, severity Severity) *Alert {
	return &Alert{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		DetectorType:  detectorType,
		Severity:      severity,
		Platform:      "twitter",
		Title:         "test alert",
		Message:       "something happened",
		ObservedValue: 42,
		BaselineValue: 10,
		SampleSize:    100,
		Metadata:      json.RawMessage(`{"foo":"bar"}`),
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestStoreSaveAndGetAlert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alert := testAlert("acme", DetectorSentimentSpike, SeverityWarning)
	if err := store.SaveAlert(ctx, alert); err != nil {
		t.Fatalf("failed to save alert: %v", err)
	}

	got, err := store.GetAlert(ctx, "acme", alert.ID)
	if err != nil {
		t.Fatalf("failed to get alert: %v", err)
	}
	if got.TenantID != "acme" {
		t.Errorf("TenantID = %q, want acme", got.TenantID)
	}
	if got.DetectorType != DetectorSentimentSpike {
		t.Errorf("DetectorType = %v, want %v", got.DetectorType, DetectorSentimentSpike)
	}
	if got.ObservedValue != 42 {
		t.Errorf("ObservedValue = %v, want 42", got.ObservedValue)
	}
	if got.Acknowledged {
		t.Error("new alert should not be acknowledged")
	}

	var metadata map[string]string
	if err := json.Unmarshal(got.Metadata, &metadata); err != nil {
		t.Fatalf("failed to unmarshal metadata: %v", err)
	}
	if metadata["foo"] != "bar" {
		t.Errorf("metadata = %v, want foo=bar", metadata)
	}
}

func TestStoreGetAlertScopedToTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alert := testAlert("acme", DetectorVolumeSpike, SeverityWarning)
	if err := store.SaveAlert(ctx, alert); err != nil {
		t.Fatalf("failed to save alert: %v", err)
	}

	if _, err := store.GetAlert(ctx, "globex", alert.ID); err != ErrAlertNotFound {
		t.Errorf("expected ErrAlertNotFound for wrong tenant, got %v", err)
	}
}

func TestStoreListAlertsFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alerts := []*Alert{
		testAlert("acme", DetectorSentimentSpike, SeverityWarning),
		testAlert("acme", DetectorVolumeSpike, SeverityCritical),
		testAlert("acme", DetectorKeywordWatchlist, SeverityWarning),
		testAlert("globex", DetectorSentimentSpike, SeverityCritical),
	}
	for _, alert := range alerts {
		if err := store.SaveAlert(ctx, alert); err != nil {
			t.Fatalf("failed to save alert: %v", err)
		}
	}

	got, err := store.ListAlerts(ctx, AlertFilter{TenantID: "acme"})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 alerts for acme, got %d", len(got))
	}

	got, err = store.ListAlerts(ctx, AlertFilter{
		TenantID:   "acme",
		Severities: []Severity{SeverityCritical},
	})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(got) != 1 || got[0].DetectorType != DetectorVolumeSpike {
		t.Errorf("expected 1 critical acme alert, got %d", len(got))
	}

	got, err = store.ListAlerts(ctx, AlertFilter{
		TenantID:      "acme",
		DetectorTypes: []DetectorType{DetectorSentimentSpike, DetectorVolumeSpike},
	})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 alerts for detector filter, got %d", len(got))
	}

	count, err := store.GetAlertCount(ctx, AlertFilter{TenantID: "globex"})
	if err != nil {
		t.Fatalf("failed to count alerts: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 globex alert, got %d", count)
	}
}

func TestStoreAcknowledgeAlert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alert := testAlert("acme", DetectorInfluencerNegative, SeverityCritical)
	if err := store.SaveAlert(ctx, alert); err != nil {
		t.Fatalf("failed to save alert: %v", err)
	}

	if err := store.AcknowledgeAlert(ctx, "acme", alert.ID, "operator"); err != nil {
		t.Fatalf("failed to acknowledge alert: %v", err)
	}

	got, err := store.GetAlert(ctx, "acme", alert.ID)
	if err != nil {
		t.Fatalf("failed to get alert: %v", err)
	}
	if !got.Acknowledged {
		t.Error("expected alert to be acknowledged")
	}
	if got.AcknowledgedBy != "operator" {
		t.Errorf("AcknowledgedBy = %q, want operator", got.AcknowledgedBy)
	}
	if got.AcknowledgedAt == nil {
		t.Error("expected AcknowledgedAt to be set")
	}

	// Second acknowledge is a no-op on an already acknowledged alert.
	if err := store.AcknowledgeAlert(ctx, "acme", alert.ID, "operator"); err != ErrAlertNotFound {
		t.Errorf("expected ErrAlertNotFound for repeat acknowledge, got %v", err)
	}

	unacked := false
	got2, err := store.ListAlerts(ctx, AlertFilter{TenantID: "acme", Acknowledged: &unacked})
	if err != nil {
		t.Fatalf("failed to list alerts: %v", err)
	}
	if len(got2) != 0 {
		t.Errorf("expected no unacknowledged alerts, got %d", len(got2))
	}
}

func TestStoreAcknowledgeWrongTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alert := testAlert("acme", DetectorVolumeSpike, SeverityWarning)
	if err := store.SaveAlert(ctx, alert); err != nil {
		t.Fatalf("failed to save alert: %v", err)
	}

	if err := store.AcknowledgeAlert(ctx, "globex", alert.ID, "operator"); err != ErrAlertNotFound {
		t.Errorf("expected ErrAlertNotFound for wrong tenant, got %v", err)
	}
}
