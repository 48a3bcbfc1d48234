// Crowdpulse - Social Media Audience Intelligence and Posting Analytics
// Copyright 2026 Crowdpulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/crowdpulse/crowdpulse

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/crowdpulse/crowdpulse/internal/auth"
	"github.com/crowdpulse/crowdpulse/internal/config"
	"github.com/crowdpulse/crowdpulse/internal/crisis"
	"github.com/crowdpulse/crowdpulse/internal/database"
	"github.com/crowdpulse/crowdpulse/internal/logging"
	"github.com/crowdpulse/crowdpulse/internal/segment"
	"github.com/crowdpulse/crowdpulse/internal/sentiment"
	ws "github.com/crowdpulse/crowdpulse/internal/websocket"
)

const (
	testJWTSecret = "0123456789abcdef0123456789abcdef"
	testUsername  = "admin"
	testPassword  = "hunter2hunter2"
	testTenant    = "tenant-a"
)

// testServer wires the full handler stack against an in-memory DuckDB.
type testServer struct {
	router     *chi.Mux
	db         *database.DB
	jwt        *auth.JWTManager
	alertStore crisis.AlertStore
	crisis     *crisis.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	ctx := context.Background()

	segStore := segment.NewStore(db.Conn())
	if err := segStore.InitSchema(ctx); err != nil {
		t.Fatalf("Failed to init segment schema: %v", err)
	}

	alertStore := crisis.NewDuckDBStore(db.Conn())
	if err := alertStore.InitSchema(ctx); err != nil {
		t.Fatalf("Failed to init alert schema: %v", err)
	}

	cfg := &config.Config{
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: config.SecurityConfig{
			JWTSecret:         testJWTSecret,
			TokenTTL:          time.Hour,
			AdminUsername:     testUsername,
			AdminPassword:     testPassword,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		Segment: config.SegmentConfig{
			MinMembers:     2,
			MaxMembers:     500,
			CacheTTL:       10 * time.Minute,
			TopSlots:       5,
			MinSlotSamples: 1,
		},
	}

	scorer := sentiment.NewScorer(sentiment.NewAnalyzer(), nil)

	segEngine := segment.NewEngine(&cfg.Segment, segment.NewDBProvider(db), nil, logging.NewTestLogger(io.Discard))
	segEngine.SetStore(segStore)

	history := crisis.NewDBHistory(db)
	hub := ws.NewHub()
	crisisEngine := crisis.NewEngine(alertStore, history, hub, time.Minute)
	crisisEngine.RegisterDetector(crisis.NewSentimentSpikeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewVolumeSpikeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewInfluencerNegativeDetector(history))
	crisisEngine.RegisterDetector(crisis.NewKeywordWatchlistDetector(history))

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("Failed to create JWT manager: %v", err)
	}

	handlers := NewHandlers(db, scorer, segEngine, segStore, crisisEngine, alertStore, jwtManager, hub, cfg)

	return &testServer{
		router:     NewRouter(handlers),
		db:         db,
		jwt:        jwtManager,
		alertStore: alertStore,
		crisis:     crisisEngine,
	}
}

// token issues a bearer token for the given tenant.
func (ts *testServer) token(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := ts.jwt.GenerateToken(testUsername, tenantID, "admin")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// request performs an HTTP request against the router. body may be nil
// or any JSON-marshalable value. token may be empty for public routes.
func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors APIResponse for decoding test responses without
// losing the payload shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

// decodeData unmarshals the envelope's data payload into dst.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("Expected success response, got error: %+v", env.Error)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("Failed to decode response data: %v", err)
	}
	return env
}

// expectErrorCode asserts an error envelope with the given status and code.
func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d (body %q)", status, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Fatal("Expected error envelope, got success")
	}
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("Expected error code %s, got %+v", code, env.Error)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from liveness, got %d", rec.Code)
	}

	rec = ts.request(t, http.MethodGet, "/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from readiness, got %d", rec.Code)
	}

	var health HealthStatus
	decodeData(t, rec, &health)
	if health.Status != "ok" {
		t.Errorf("Expected status ok, got %q", health.Status)
	}
	if health.Database != "ok" {
		t.Errorf("Expected database ok, got %q", health.Database)
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from metrics, got %d", rec.Code)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: testUsername,
		Password: testPassword,
		TenantID: testTenant,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from login, got %d (body %q)", rec.Code, rec.Body.String())
	}

	var login LoginResponse
	decodeData(t, rec, &login)
	if login.Token == "" {
		t.Fatal("Expected non-empty token")
	}
	if login.TenantID != testTenant {
		t.Errorf("Expected tenant %q, got %q", testTenant, login.TenantID)
	}

	// The issued token must be accepted by the authenticated routes.
	rec = ts.request(t, http.MethodGet, "/api/v1/events", login.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 using issued token, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: testUsername,
		Password: "wrong-password",
		TenantID: testTenant,
	})
	expectErrorCode(t, rec, http.StatusUnauthorized, ErrCodeUnauthorized)
}

func TestLoginRequiresTenant(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": testUsername,
		"password": testPassword,
	})
	expectErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestAPIRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/api/v1/events",
		"/api/v1/analytics/audience",
		"/api/v1/segments",
		"/api/v1/alerts",
		"/api/v1/detectors",
	}
	for _, path := range paths {
		rec := ts.request(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 from %s without token, got %d", path, rec.Code)
		}
	}
}

func TestRejectsTamperedToken(t *testing.T) {
	ts := newTestServer(t)

	token := ts.token(t, testTenant)
	rec := ts.request(t, http.MethodGet, "/api/v1/events", token+"x", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 with tampered token, got %d", rec.Code)
	}
}
