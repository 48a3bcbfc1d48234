// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/auth"
	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/crisis"
	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/segment"
	"github.com/crowdpulse/crowdpulse/internal/sentiment"
	"github.com/crowdpulse/crowdpulse/internal/validation"
	ws "github.com/crowdpulse/crowdpulse/internal/websocket"
)

// maxRequestBody caps request bodies. Batch ingests dominate sizing.
const maxRequestBody = 10 << 20 // 10 MB

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	db           *database.DB
	scorer       *sentiment.Scorer
	segments     *segment.Engine
	segmentStore *segment.Store
	crisisEngine *crisis.Engine
	alertStore   crisis.AlertStore
	jwt          *auth.JWTManager
	hub          *ws.Hub
	cfg          *config.Config
	startTime    time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(
	db *database.DB,
	scorer *sentiment.Scorer,
	segments *segment.Engine,
	segmentStore *segment.Store,
	crisisEngine *crisis.Engine,
	alertStore crisis.AlertStore,
	jwt *auth.JWTManager,
	hub *ws.Hub,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		db:           db,
		scorer:       scorer,
		segments:     segments,
		segmentStore: segmentStore,
		crisisEngine: crisisEngine,
		alertStore:   alertStore,
		jwt:          jwt,
		hub:          hub,
		cfg:          cfg,
		startTime:    time.Now(),
	}
}

// decodeAndValidate parses the JSON body into dst and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

// tenantFromRequest returns the authenticated tenant or writes a 401.
func tenantFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := auth.TenantFromContext(r.Context())
	if tenantID == "" {
		NewResponseWriter(w, r).Unauthorized("missing tenant scope")
		return "", false
	}
	return tenantID, true
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryTime parses an RFC3339 query parameter. Returns nil when absent
// or unparseable.
func queryTime(r *http.Request, name string) *time.Time {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

// queryBool parses a boolean query parameter. Returns nil when absent.
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// pagination extracts limit/offset bounded by the API config.
func (h *Handlers) pagination(r *http.Request) (limit, offset int) {
	limit = queryInt(r, "limit", h.cfg.API.DefaultPageSize)
	if limit <= 0 {
		limit = h.cfg.API.DefaultPageSize
	}
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	offset = queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
