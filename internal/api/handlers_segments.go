// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"errors"
	"net/http"

	"github.com/crowdpulse/crowdpulse/internal/segment"
)

// HandleGetSegments returns the tenant's current segment set, computing
// it on first access and serving from cache afterwards. Pass refresh=true
// to bypass the cache.
func (h *Handlers) HandleGetSegments(w http.ResponseWriter, r *http.Request) {
	refresh := queryBool(r, "refresh")
	h.serveSegments(w, r, refresh != nil && *refresh)
}

// HandleRefreshSegments forces recomputation of the tenant's segments.
func (h *Handlers) HandleRefreshSegments(w http.ResponseWriter, r *http.Request) {
	h.serveSegments(w, r, true)
}

func (h *Handlers) serveSegments(w http.ResponseWriter, r *http.Request, forceRefresh bool) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	set, err := h.segments.Segments(r.Context(), tenantID, forceRefresh)
	if err != nil {
		if errors.Is(err, segment.ErrNotEnoughMembers) {
			rw.InsufficientData("not enough audience members to segment yet")
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(set)
}

// HandleSegmentHistory returns previously persisted segment sets,
// newest first, without their member payloads.
func (h *Handlers) HandleSegmentHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	limit, _ := h.pagination(r)
	history, err := h.segmentStore.History(r.Context(), tenantID, limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithPagination(history, &PaginationMeta{
		Count: len(history),
		Limit: limit,
	})
}
