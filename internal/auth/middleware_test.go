// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedHandler(t *testing.T, manager *JWTManager) (http.Handler, *string) {
	t.Helper()

	var gotTenant string
	handler := Middleware(manager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &gotTenant
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	handler, _ := authedHandler(t, testManager(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/segments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestMiddlewareRejectsInvalidToken(t *testing.T) {
	handler, _ := authedHandler(t, testManager(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/segments", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	manager := testManager(t)
	handler, gotTenant := authedHandler(t, manager)

	token, err := manager.GenerateToken("admin", "acme", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/segments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if *gotTenant != "acme" {
		t.Errorf("tenant in context = %q, want acme", *gotTenant)
	}
}

func TestMiddlewareAcceptsQueryToken(t *testing.T) {
	manager := testManager(t)
	handler, gotTenant := authedHandler(t, manager)

	token, err := manager.GenerateToken("admin", "acme", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/ws?access_token="+token, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if *gotTenant != "acme" {
		t.Errorf("tenant in context = %q, want acme", *gotTenant)
	}
}

func TestTenantFromContextWithoutClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if tenant := TenantFromContext(req.Context()); tenant != "" {
		t.Errorf("tenant = %q, want empty", tenant)
	}
}
