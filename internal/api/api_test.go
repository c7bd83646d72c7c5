// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/fetch"
	"github.com/tomtom215/worldsense/internal/likes"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/models"
	"github.com/tomtom215/worldsense/internal/session"
	ws "github.com/tomtom215/worldsense/internal/websocket"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

// stubFetcher answers every upstream call with a fixed payload.
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, ep fetch.Endpoint, _ string) (any, error) {
	switch ep {
	case fetch.EndpointMap:
		return &models.FeatureCollection{Type: "FeatureCollection"}, nil
	case fetch.EndpointStats:
		return &models.StatsResponse{Series: []models.SeriesPoint{{Date: "2025-01-01", Count: 2}}}, nil
	default:
		return &models.SearchResponse{Total: 45, Items: []models.SearchItem{
			{Country: "US", Theme: "PROTEST", Tone: -6},
		}}, nil
	}
}

type stubUpstream string

func (s stubUpstream) BreakerState() string { return string(s) }

type testServer struct {
	handler  http.Handler
	sessions *session.Manager
	likes    *likes.MemoryStore
	hub      *ws.Hub
}

// newTestServer builds the full router. authMode is "none" or "jwt".
func newTestServer(t *testing.T, authMode string) *testServer {
	t.Helper()

	cfg := &config.Config{Security: config.SecurityConfig{
		AuthMode:          authMode,
		JWTSecret:         testSecret,
		JWTIssuer:         "worldsense-test",
		RateLimitDisabled: true,
		CORSOrigins:       []string{"http://dashboard.test"},
	}}

	scfg := session.DefaultConfig()
	scfg.MoveEndDebounce = 0
	scfg.Fetch.BaseURL = "http://upstream.test"

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Serve(ctx) }()

	sessions := session.NewManager(scfg, stubFetcher{}, hub, nil)
	store := likes.NewMemoryStore()
	t.Cleanup(func() {
		sessions.CloseAll()
		cancel()
		_ = store.Close()
	})

	authMW, err := auth.NewMiddleware(&cfg.Security, WriteError)
	if err != nil {
		t.Fatalf("NewMiddleware: %v", err)
	}
	ts := &testServer{sessions: sessions, likes: store, hub: hub}

	h := NewHandler(cfg, sessions, store, hub, nil, stubUpstream("closed"))
	ts.handler = NewRouter(h, authMW, NewChiMiddlewareFromConfig(&cfg.Security)).SetupChi()
	return ts
}

func (ts *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		Username: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "worldsense-test",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// do sends a request with an optional JSON body and bearer token.
func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// envelope decodes the standard response envelope, with data left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func expectErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, w, status)
	env := decodeEnvelope(t, w, nil)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("error = %+v, want code %s", env.Error, code)
	}
}
