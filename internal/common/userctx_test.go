package common

import (
	"context"
	"testing"
)

func TestUserContext_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Absent by default
	if uc := UserContextFromContext(ctx); uc != nil {
		t.Error("Expected nil UserContext from empty context")
	}

	// Store and retrieve
	uc := &UserContext{
		UserID: "user-123",
		Email:  "student@example.com",
		Role:   "user",
	}
	ctx = WithUserContext(ctx, uc)

	got := UserContextFromContext(ctx)
	if got == nil {
		t.Fatal("Expected non-nil UserContext")
	}
	if got.UserID != "user-123" {
		t.Errorf("Expected user-123, got %s", got.UserID)
	}
	if got.Email != "student@example.com" {
		t.Errorf("Expected student@example.com, got %s", got.Email)
	}
}

func TestResolveUserID(t *testing.T) {
	ctx := context.Background()

	// No UserContext: empty string means unauthenticated
	if got := ResolveUserID(ctx); got != "" {
		t.Errorf("Expected empty user ID, got %q", got)
	}

	ctx = WithUserContext(ctx, &UserContext{UserID: "user-456"})
	if got := ResolveUserID(ctx); got != "user-456" {
		t.Errorf("Expected user-456, got %q", got)
	}
}
