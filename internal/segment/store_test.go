// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/crowdpulse/crowdpulse/internal/database"
)

// setupTestStore creates a segment store over an in-memory database.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	store := NewStore(db.Conn())
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("Failed to initialize segment schema: %v", err)
	}

	return store
}

func testSegmentSet(tenantID string, generatedAt time.Time) *SegmentSet {
	return &SegmentSet{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Source:   SourceHeuristic,
		Segments: []Segment{
			{
				Name:            SegmentAdvocates,
				Description:     "loyal and loud",
				Members:         []string{"@alice", "@bob"},
				Recommendations: []string{"invite to beta"},
			},
			{
				Name:        SegmentDormant,
				Description: "gone quiet",
				Members:     []string{"@carol"},
			},
		},
		MemberCount: 3,
		GeneratedAt: generatedAt,
	}
}

func TestStoreSaveAndLatest(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saved := testSegmentSet("acme", time.Now().UTC())
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Latest(ctx, "acme")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected persisted set, got nil")
	}
	if got.ID != saved.ID {
		t.Errorf("ID = %s, want %s", got.ID, saved.ID)
	}
	if got.Source != SourceHeuristic || got.MemberCount != 3 {
		t.Errorf("Unexpected set fields: %+v", got)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("Expected 2 segments in payload, got %d", len(got.Segments))
	}
	if got.Segments[0].Name != SegmentAdvocates || len(got.Segments[0].Members) != 2 {
		t.Errorf("Payload did not round-trip: %+v", got.Segments[0])
	}
	if len(got.Segments[0].Recommendations) != 1 {
		t.Errorf("Expected recommendation to survive, got %+v", got.Segments[0].Recommendations)
	}
}

func TestStoreLatestEmpty(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.Latest(context.Background(), "acme")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for tenant without history, got %+v", got)
	}
}

func TestStoreLatestPicksNewestForTenant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := testSegmentSet("acme", now.Add(-2*time.Hour))
	newest := testSegmentSet("acme", now)
	other := testSegmentSet("globex", now.Add(time.Hour))

	for _, set := range []*SegmentSet{old, newest, other} {
		if err := store.Save(ctx, set); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	got, err := store.Latest(ctx, "acme")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got == nil || got.ID != newest.ID {
		t.Errorf("Expected newest acme set %s, got %+v", newest.ID, got)
	}
}

func TestStoreHistoryNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	var ids []string
	for i := 0; i < 3; i++ {
		set := testSegmentSet("acme", now.Add(-time.Duration(i)*time.Hour))
		set.MemberCount = i
		if err := store.Save(ctx, set); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		ids = append(ids, set.ID)
	}

	history, err := store.History(ctx, "acme", 2)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 sets, got %d", len(history))
	}
	if history[0].ID != ids[0] || history[1].ID != ids[1] {
		t.Errorf("Expected newest-first order %v, got [%s %s]", ids[:2], history[0].ID, history[1].ID)
	}
	if len(history[0].Segments) != 0 {
		t.Errorf("Expected history entries without payload, got %d segments", len(history[0].Segments))
	}
}

func TestStoreHistoryDefaultLimit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		set := testSegmentSet("acme", time.Now().UTC().Add(-time.Duration(i)*time.Minute))
		set.ID = fmt.Sprintf("set-%02d", i)
		if err := store.Save(ctx, set); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	history, err := store.History(ctx, "acme", 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 20 {
		t.Errorf("Expected default limit of 20, got %d", len(history))
	}
}
