// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

// Package segment clusters a tenant's audience into actionable segments
// and recommends posting times. Clustering is delegated to an LLM when
// one is configured; a deterministic heuristic classifier is the
// fallback, so segmentation never fails because the LLM is unavailable
// or returns garbage.
package segment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/crowdpulse/crowdpulse/internal/ai"
	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/metrics"
	"github.com/crowdpulse/crowdpulse/internal/models"
)

// ErrNotEnoughMembers is returned when a tenant has fewer active members
// than the configured minimum for clustering.
var ErrNotEnoughMembers = errors.New("segment: not enough active members")

// profileLookback is how far back audience rollups reach.
const profileLookback = 90 * 24 * time.Hour

// Engine produces audience segments and posting-time reports.
// It is safe for concurrent use.
type Engine struct {
	cfg      *config.SegmentConfig
	logger   zerolog.Logger
	provider DataProvider
	llm      ai.Completer

	// persist is optional; when set, refreshed segment sets are stored.
	persist *Store

	cache   map[string]cacheEntry
	cacheMu sync.RWMutex

	refreshCount  atomic.Int64
	fallbackCount atomic.Int64
}

// cacheEntry holds a cached segment set.
type cacheEntry struct {
	set       *SegmentSet
	expiresAt time.Time
}

// NewEngine creates a segmentation engine. llm may be a disabled client;
// the engine then always takes the heuristic path.
func NewEngine(cfg *config.SegmentConfig, provider DataProvider, llm ai.Completer, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger.With().Str("component", "segment").Logger(),
		provider: provider,
		llm:      llm,
		cache:    make(map[string]cacheEntry),
	}
}

// Segments returns the current segment set for a tenant, recomputing it
// when the cache has expired or forceRefresh is set.
//
// The LLM path can fail in many ways (disabled client, transport error,
// open circuit breaker, schema-invalid reply); every one of them falls
// back to the heuristic classifier, so the only errors this method
// returns are data access failures and ErrNotEnoughMembers.
func (e *Engine) Segments(ctx context.Context, tenantID string, forceRefresh bool) (*SegmentSet, error) {
	if !forceRefresh {
		if set := e.cached(tenantID); set != nil {
			metrics.SegmentCacheHits.Inc()
			return set, nil
		}
		metrics.SegmentCacheMisses.Inc()

		// Cold cache after a restart: a recent persisted set is still
		// valid, so serve it instead of recomputing immediately.
		if set := e.persisted(ctx, tenantID); set != nil {
			e.store(tenantID, set)
			return set, nil
		}
	}

	start := time.Now()

	profiles, err := e.provider.AudienceProfiles(ctx, tenantID, profileLookback, e.cfg.MaxMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to load audience profiles: %w", err)
	}
	if len(profiles) < e.cfg.MinMembers {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughMembers, len(profiles), e.cfg.MinMembers)
	}

	set := e.cluster(ctx, tenantID, profiles)
	set.ID = uuid.New().String()
	set.TenantID = tenantID
	set.MemberCount = len(profiles)
	set.GeneratedAt = time.Now().UTC()

	e.refreshCount.Add(1)
	metrics.SegmentRefreshes.WithLabelValues(set.Source).Inc()
	metrics.SegmentRefreshDuration.Observe(time.Since(start).Seconds())

	e.store(tenantID, set)

	if e.persist != nil {
		if err := e.persist.Save(ctx, set); err != nil {
			e.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("failed to persist segment set")
		}
	}

	e.logger.Info().
		Str("tenant_id", tenantID).
		Str("source", set.Source).
		Int("segments", len(set.Segments)).
		Int("members", set.MemberCount).
		Dur("elapsed", time.Since(start)).
		Msg("segment set refreshed")

	return set, nil
}

// cluster runs the LLM path and falls back to heuristics.
func (e *Engine) cluster(ctx context.Context, tenantID string, profiles []*models.AudienceProfile) *SegmentSet {
	if e.llm == nil || !e.llm.Enabled() {
		return e.fallback(tenantID, profiles, "disabled")
	}

	systemPrompt, userPrompt := buildClusterPrompts(profiles)
	reply, err := e.llm.CompleteJSON(ctx, "cluster", systemPrompt, userPrompt)
	if err != nil {
		reason := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = "circuit_open"
		}
		return e.fallback(tenantID, profiles, reason)
	}

	segments, err := parseSegmentReply(reply, profiles)
	if err != nil {
		e.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("llm segment reply rejected")
		return e.fallback(tenantID, profiles, "invalid_response")
	}

	return &SegmentSet{
		Source:   SourceLLM,
		Model:    e.llm.Model(),
		Segments: segments,
	}
}

// fallback produces the heuristic segment set and records why the LLM
// path was skipped.
func (e *Engine) fallback(tenantID string, profiles []*models.AudienceProfile, reason string) *SegmentSet {
	e.fallbackCount.Add(1)
	metrics.RecordLLMFallback("cluster", reason)
	e.logger.Debug().Str("tenant_id", tenantID).Str("reason", reason).Msg("using heuristic segmentation")

	return &SegmentSet{
		Source:   SourceHeuristic,
		Segments: Classify(profiles),
	}
}

// persisted returns the newest stored segment set when it is younger
// than the cache TTL, or nil.
func (e *Engine) persisted(ctx context.Context, tenantID string) *SegmentSet {
	if e.persist == nil {
		return nil
	}

	set, err := e.persist.Latest(ctx, tenantID)
	if err != nil {
		e.logger.Warn().Str("tenant_id", tenantID).Err(err).Msg("failed to load persisted segment set")
		return nil
	}
	if set == nil || time.Since(set.GeneratedAt) > e.cfg.CacheTTL {
		return nil
	}

	e.logger.Debug().
		Str("tenant_id", tenantID).
		Str("source", set.Source).
		Time("generated_at", set.GeneratedAt).
		Msg("serving persisted segment set")

	return set
}

// cached returns a live cache entry, or nil.
func (e *Engine) cached(tenantID string) *SegmentSet {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[tenantID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil
	}
	return entry.set
}

// store caches a segment set for the configured TTL.
func (e *Engine) store(tenantID string, set *SegmentSet) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	e.cache[tenantID] = cacheEntry{
		set:       set,
		expiresAt: time.Now().Add(e.cfg.CacheTTL),
	}
}

// SetStore attaches persistence for refreshed segment sets.
func (e *Engine) SetStore(s *Store) {
	e.persist = s
}

// Stats reports engine counters.
func (e *Engine) Stats() (refreshes, fallbacks int64) {
	return e.refreshCount.Load(), e.fallbackCount.Load()
}
