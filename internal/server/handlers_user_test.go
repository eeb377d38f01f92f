package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mkellaway/papertrade/internal/app"
	"github.com/mkellaway/papertrade/internal/models"
)

func newUserTestServer(t *testing.T) (*Server, *memoryInternalStore) {
	t.Helper()
	store := newMemoryInternalStore()
	srv := newTestServer(func(a *app.App) {
		a.Storage = &memoryStorage{internal: store}
	})
	return srv, store
}

func TestHandleUserMe_Get(t *testing.T) {
	srv, store := newUserTestServer(t)
	store.SaveUser(t.Context(), &models.User{
		UserID:      "u-1",
		Email:       "alice@example.com",
		Name:        "Alice",
		Role:        models.RoleUser,
		CashBalance: 8500,
	})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "u-1")
	rec := doRequest(srv.handleUserMe, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["email"] != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %v", resp["email"])
	}
	if resp["cash_balance"] != 8500.0 {
		t.Errorf("expected cash_balance 8500, got %v", resp["cash_balance"])
	}
	if _, ok := resp["password_hash"]; ok {
		t.Error("password hash must never appear in responses")
	}
}

func TestHandleUserMe_GetSeedsZeroBalance(t *testing.T) {
	srv, store := newUserTestServer(t)
	store.SaveUser(t.Context(), &models.User{
		UserID: "u-2",
		Email:  "bob@example.com",
	})

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), "u-2")
	rec := doRequest(srv.handleUserMe, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["cash_balance"] != 10000.0 {
		t.Errorf("expected seeded balance 10000, got %v", resp["cash_balance"])
	}
}

func TestHandleUserMe_Unauthenticated(t *testing.T) {
	srv, _ := newUserTestServer(t)

	rec := doRequest(srv.handleUserMe, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleUserMe_UpdateName(t *testing.T) {
	srv, store := newUserTestServer(t)
	store.SaveUser(t.Context(), &models.User{
		UserID: "u-3",
		Email:  "carol@example.com",
		Name:   "Carol",
	})

	payload, _ := json.Marshal(map[string]string{"name": "Caroline"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/me", bytes.NewReader(payload))
	rec := doRequest(srv.handleUserMe, authedRequest(req, "u-3"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := store.GetUser(t.Context(), "u-3")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.Name != "Caroline" {
		t.Errorf("expected name updated to Caroline, got %q", stored.Name)
	}
}

func TestHandleUserMe_UpdateRejectsShortPassword(t *testing.T) {
	srv, store := newUserTestServer(t)
	store.SaveUser(t.Context(), &models.User{UserID: "u-4", Email: "dave@example.com"})

	payload, _ := json.Marshal(map[string]string{"password": "short"})
	req := httptest.NewRequest(http.MethodPut, "/api/users/me", bytes.NewReader(payload))
	rec := doRequest(srv.handleUserMe, authedRequest(req, "u-4"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
