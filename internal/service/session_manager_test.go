package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSessionManagerCreate_TokensAreUnique(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := mgr.Create(context.Background(), "u1")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token too short: %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued")
		}
		seen[token] = true
	}
}

func TestSessionManagerResolve_FailsClosed(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore())

	for _, token := range []string{
		"",
		"   ",
		"unknown-token",
		"!!!not-base64url$$$",
		strings.Repeat("x", 4096),
	} {
		if _, err := mgr.Resolve(context.Background(), token); !errors.Is(err, ErrSessionAbsent) {
			t.Fatalf("token %q: expected ErrSessionAbsent, got %v", token, err)
		}
	}
}

func TestSessionManagerResolve_ExpiryWindow(t *testing.T) {
	store := NewMemorySessionStore()
	mgr := NewSessionManager(store)

	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return issued }

	token, err := mgr.Create(context.Background(), "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// A los 6 dias la sesion sigue viva.
	mgr.now = func() time.Time { return issued.Add(6 * 24 * time.Hour) }
	userID, err := mgr.Resolve(context.Background(), token)
	if err != nil || userID != "u1" {
		t.Fatalf("expected resolve at +6d, got %q %v", userID, err)
	}

	// A los 8 dias esta vencida y se elimina de forma perezosa.
	mgr.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	if _, err := mgr.Resolve(context.Background(), token); !errors.Is(err, ErrSessionAbsent) {
		t.Fatalf("expected ErrSessionAbsent at +8d, got %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), token); ok {
		t.Fatalf("expired session must be evicted from the store")
	}
}

func TestSessionManagerInvalidate_Idempotent(t *testing.T) {
	mgr := NewSessionManager(NewMemorySessionStore())

	token, err := mgr.Create(context.Background(), "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if err := mgr.Invalidate(context.Background(), token); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
	if err := mgr.Invalidate(context.Background(), ""); err != nil {
		t.Fatalf("invalidate empty token: %v", err)
	}
}
