package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/config"
	"github.com/angelmondragon/marketflow-backend/pkg/logger"
	"github.com/angelmondragon/marketflow-backend/pkg/session"
)

var testSessionCfg = config.SessionConfig{Secret: "test-secret", Issuer: "marketflow", TTLMinutes: 60}

func mintToken(t *testing.T, sessionID string) string {
	t.Helper()
	token, _, err := session.Mint(testSessionCfg, time.Now(), sessionID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return token
}

func captureSession(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSessionAcceptsBearerAndHeader(t *testing.T) {
	token := mintToken(t, "sess-42")
	for _, set := range []func(*http.Request){
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		func(r *http.Request) { r.Header.Set(SessionHeader, token) },
	} {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		set(req)
		rec := httptest.NewRecorder()
		Session(testSessionCfg, nil)(captureSession(&got)).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got != "sess-42" {
			t.Fatalf("unexpected session id %q", got)
		}
	}
}

func TestSessionRejectsMissingOrInvalidToken(t *testing.T) {
	other := config.SessionConfig{Secret: "other-secret", Issuer: "marketflow", TTLMinutes: 60}
	foreign, _, err := session.Mint(other, time.Now(), "sess-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	expired, _, err := session.Mint(testSessionCfg, time.Now().Add(-2*time.Hour), "sess-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-token",
		"foreign": "Bearer " + foreign,
		"expired": "Bearer " + expired,
	} {
		called := false
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		Session(testSessionCfg, nil)(handler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if called {
			t.Fatalf("%s: handler should not run", name)
		}
	}
}

func TestRequestIDEchoesOrGenerates(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected request id echoed, got %q", rec.Header().Get(requestIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRecovererReturnsInternalError(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Recoverer(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic.recovered") {
		t.Fatalf("expected panic log, got %s", buf.String())
	}
}

func TestLoggingRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	out := buf.String()
	if !strings.Contains(out, "request.complete") || !strings.Contains(out, `"status":418`) {
		t.Fatalf("unexpected log output %s", out)
	}
}
