package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/impactfest/internal/redisclient"
	"github.com/geocoder89/impactfest/internal/session"
	"github.com/google/uuid"
)

func exerciseStore(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()
	sid := uuid.NewString()

	user := session.Scope(store, sid, session.KeyUserToken)
	admin := session.Scope(store, sid, session.KeyAdminToken)

	if _, err := user.Token(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken on empty store, got %v", err)
	}

	if err := user.SetToken(ctx, "user-tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := admin.SetToken(ctx, "admin-tok"); err != nil {
		t.Fatalf("SetToken admin: %v", err)
	}

	got, err := user.Token(ctx)
	if err != nil || got != "user-tok" {
		t.Fatalf("got %q err=%v", got, err)
	}

	if err := user.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, err := user.Token(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken after clear, got %v", err)
	}

	// clearing one key leaves the other alone
	got, err = admin.Token(ctx)
	if err != nil || got != "admin-tok" {
		t.Fatalf("admin token lost: %q err=%v", got, err)
	}

	// sessions are isolated
	other := session.Scope(store, uuid.NewString(), session.KeyAdminToken)
	if _, err := other.Token(ctx); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected isolation between sessions, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStore(t, session.NewFileStore(path))

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("session file should be private, got %v", info.Mode().Perm())
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first := session.Scope(session.NewFileStore(path), "local", session.KeyUserToken)
	if err := first.SetToken(ctx, "persisted"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	second := session.Scope(session.NewFileStore(path), "local", session.KeyUserToken)
	got, err := second.Token(ctx)
	if err != nil || got != "persisted" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestScoped_BlankTokenCountsAsMissing(t *testing.T) {
	ctx := context.Background()

	for _, blank := range []string{"", " ", "\t\n  "} {
		s := session.Scope(session.NewMemoryStore(), "sid", session.KeyUserToken)
		if err := s.SetToken(ctx, blank); err != nil {
			t.Fatalf("SetToken(%q): %v", blank, err)
		}
		if _, err := s.Token(ctx); !errors.Is(err, session.ErrNoToken) {
			t.Fatalf("Token with %q stored: expected ErrNoToken, got %v", blank, err)
		}
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redisclient.New(redisclient.Config{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	exerciseStore(t, session.NewRedisStore(client.Raw(), time.Minute))
}
