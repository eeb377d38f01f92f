package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/models"
)

func bearerTestHandler(t *testing.T, captured **common.UserContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = common.UserContextFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerTokenMiddleware_ValidToken(t *testing.T) {
	cfg := common.NewDefaultConfig()
	store := newMemoryInternalStore()
	store.SaveUser(t.Context(), &models.User{
		UserID: "u-1",
		Email:  "alice@example.com",
		Role:   models.RoleUser,
	})

	token, err := signJWT(&models.User{UserID: "u-1", Email: "alice@example.com"}, &cfg.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	var captured *common.UserContext
	handler := bearerTokenMiddleware(cfg, store)(bearerTestHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil {
		t.Fatal("expected UserContext to be injected")
	}
	if captured.UserID != "u-1" {
		t.Errorf("expected UserID u-1, got %q", captured.UserID)
	}
	if captured.Role != models.RoleUser {
		t.Errorf("expected role %q, got %q", models.RoleUser, captured.Role)
	}
}

func TestBearerTokenMiddleware_InvalidToken(t *testing.T) {
	cfg := common.NewDefaultConfig()
	store := newMemoryInternalStore()

	var captured *common.UserContext
	handler := bearerTokenMiddleware(cfg, store)(bearerTestHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("expected WWW-Authenticate header")
	}
	if captured != nil {
		t.Error("handler should not run for an invalid token")
	}
}

func TestBearerTokenMiddleware_UnknownUser(t *testing.T) {
	cfg := common.NewDefaultConfig()
	store := newMemoryInternalStore()

	token, err := signJWT(&models.User{UserID: "ghost", Email: "ghost@example.com"}, &cfg.Auth)
	if err != nil {
		t.Fatalf("signJWT failed: %v", err)
	}

	var captured *common.UserContext
	handler := bearerTokenMiddleware(cfg, store)(bearerTestHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for deleted user, got %d", rec.Code)
	}
}

func TestBearerTokenMiddleware_NoHeaderPassesThrough(t *testing.T) {
	cfg := common.NewDefaultConfig()
	store := newMemoryInternalStore()

	var captured *common.UserContext
	handler := bearerTokenMiddleware(cfg, store)(bearerTestHandler(t, &captured))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if captured != nil {
		t.Error("expected no UserContext without an Authorization header")
	}
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not run for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS origin header")
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Provided ID is echoed back
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Correlation-ID"); got != "req-123" {
		t.Errorf("expected correlation ID req-123, got %q", got)
	}

	// Absent ID is generated
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected a generated correlation ID")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := common.NewSilentLogger()
	handler := recoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}
