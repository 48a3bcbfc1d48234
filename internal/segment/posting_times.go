// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package segment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/models"
)

// slotLookback is how far back posting-time analysis reaches.
const slotLookback = 60 * 24 * time.Hour

// sentimentWeight is how much slot sentiment shifts a slot score
// relative to pure volume.
const sentimentWeight = 0.2

// PostingTimes scores the tenant's hour-of-week engagement grid and
// returns the full grid plus the top-N recommended slots. Scores are
// normalized to 0..100 against the busiest slot, nudged by average
// sentiment, and therefore deterministic for a fixed event history.
func (e *Engine) PostingTimes(ctx context.Context, tenantID string, platform models.Platform) (*models.PostingTimeReport, error) {
	slots, err := e.provider.PostingSlots(ctx, tenantID, string(platform), slotLookback)
	if err != nil {
		return nil, fmt.Errorf("failed to load posting slots: %w", err)
	}

	scoreSlots(slots, e.cfg.MinSlotSamples)

	recommended := topSlots(slots, e.cfg.TopSlots, e.cfg.MinSlotSamples)

	return &models.PostingTimeReport{
		TenantID:    tenantID,
		Platform:    platform,
		Slots:       slots,
		Recommended: recommended,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// scoreSlots fills Score and Confidence in place.
func scoreSlots(slots []models.PostingSlot, minSamples int) {
	var maxCount int64
	for _, s := range slots {
		if s.EventCount > maxCount {
			maxCount = s.EventCount
		}
	}
	if maxCount == 0 {
		return
	}

	for i := range slots {
		s := &slots[i]

		volume := float64(s.EventCount) / float64(maxCount)
		// Sentiment in -1..1 shifts the score by up to ±sentimentWeight.
		adjusted := volume * (1 + sentimentWeight*s.AvgSentiment)
		s.Score = math.Round(clampFloat(adjusted, 0, 1)*10000) / 100

		s.Confidence = confidenceFor(s.EventCount, minSamples)
	}
}

// confidenceFor grows from 0 toward 1 as the sample count passes the
// configured minimum; minSamples events give 0.5.
func confidenceFor(count int64, minSamples int) float64 {
	if count <= 0 || minSamples <= 0 {
		return 0
	}
	c := float64(count) / float64(2*minSamples)
	return math.Round(clampFloat(c, 0, 1)*100) / 100
}

// topSlots returns the best-scored slots with at least minSamples events,
// ordered by score, then chronologically for equal scores.
func topSlots(slots []models.PostingSlot, n, minSamples int) []models.PostingSlot {
	eligible := make([]models.PostingSlot, 0, len(slots))
	for _, s := range slots {
		if s.EventCount >= int64(minSamples) {
			eligible = append(eligible, s)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		if eligible[i].DayOfWeek != eligible[j].DayOfWeek {
			return eligible[i].DayOfWeek < eligible[j].DayOfWeek
		}
		return eligible[i].HourOfDay < eligible[j].HourOfDay
	})

	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
