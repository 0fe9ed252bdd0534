package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type httpCall struct {
	method string
	route  string
	status int
}

type mockRecorder struct {
	metrics.NoOp
	calls []httpCall
}

func (m *mockRecorder) RecordHTTPRequest(method, route string, status int, _ time.Duration) {
	m.calls = append(m.calls, httpCall{method: method, route: route, status: status})
}

func TestRequestIDGeneratedAndReused(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" {
		t.Errorf("expected incoming id to be reused, got %q", seen)
	}
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name       string
		required   bool
		method     string
		header     string
		wantStatus int
		wantToken  string
	}{
		{"optional without token", false, http.MethodGet, "", http.StatusOK, ""},
		{"optional with token", false, http.MethodGet, "Bearer tok", http.StatusOK, "tok"},
		{"required without token", true, http.MethodGet, "", http.StatusUnauthorized, ""},
		{"required with basic auth", true, http.MethodGet, "Basic dXNlcg==", http.StatusUnauthorized, ""},
		{"required with token", true, http.MethodPost, "bearer  tok2 ", http.StatusOK, "tok2"},
		{"required preflight", true, http.MethodOptions, "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var token string
			h := Identity(tt.required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				token = IdentityFromContext(r.Context())
			}))

			req := httptest.NewRequest(tt.method, "/api/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/accounts", nil))
	if rec.Code != http.StatusNoContent || called {
		t.Errorf("expected 204 without calling next, got %d called=%v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	h := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Errorf("expected JSON error body, got %v (%v)", body, err)
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("expected panic log, got %q", buf.String())
	}
}

func TestLoggerWritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	h := RequestID(Logger(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("X-Request-ID", "rid")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["status"] != float64(http.StatusTeapot) || entry["request_id"] != "rid" || entry["path"] != "/api/summary" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	rec := &mockRecorder{}
	r := mux.NewRouter()
	r.Use(Metrics(rec))
	r.HandleFunc("/api/accounts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/accounts/42", nil))

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(rec.calls))
	}
	want := httpCall{method: http.MethodDelete, route: "/api/accounts/{id}", status: http.StatusNoContent}
	if rec.calls[0] != want {
		t.Errorf("recorded %+v, want %+v", rec.calls[0], want)
	}
}

func TestRouteTemplateFallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/unrouted", nil)
	if got := routeTemplate(req); got != "/unrouted" {
		t.Errorf("routeTemplate = %q", got)
	}
}
