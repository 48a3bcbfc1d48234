// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"net/http"
	"time"

	"github.com/crowdpulse/crowdpulse/internal/logging"
)

// HandleLogin exchanges admin credentials for a tenant-scoped token.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if !h.jwt.VerifyCredentials(req.Username, req.Password) {
		logging.Warn().Str("username", req.Username).Msg("failed login attempt")
		rw.Unauthorized("invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(req.Username, req.TenantID, "admin")
	if err != nil {
		logging.Error().Err(err).Msg("failed to generate token")
		rw.InternalError("failed to issue token")
		return
	}

	rw.Success(LoginResponse{
		Token:     token,
		TenantID:  req.TenantID,
		ExpiresAt: time.Now().Add(h.jwt.TokenTTL()),
	})
}
