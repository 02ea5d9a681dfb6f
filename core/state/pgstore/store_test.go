package pgstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/m3rciful/navmenu/core/database"
	"github.com/m3rciful/navmenu/core/state"
)

// newTestStore migrates DATABASE_URL and skips the test when it is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping postgres store test")
	}
	ctx := context.Background()
	cfg := database.Config{URL: dsn}
	if err := database.RunMigrations(ctx, cfg); err != nil {
		t.Skipf("Postgres not available, skipping test: %v", err)
	}
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		t.Skipf("Postgres not available, skipping test: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db, "main")
}

func TestPostgresStoreNavigation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const user int64 = 2001
	_ = s.Clear(ctx, user)
	t.Cleanup(func() { _ = s.Clear(ctx, user) })

	if cur, err := s.Get(ctx, user); err != nil || cur != "main" {
		t.Fatalf("Get = %q, %v", cur, err)
	}
	if err := s.GoBack(ctx, user, 1); err != nil {
		t.Fatalf("GoBack on unknown user: %v", err)
	}
	if created, err := s.Create(ctx, user); err != nil || !created {
		t.Fatalf("Create = %v, %v", created, err)
	}
	if created, _ := s.Create(ctx, user); created {
		t.Fatal("second Create should report false")
	}

	for _, m := range []string{"a", "b"} {
		if err := s.Set(ctx, user, m); err != nil {
			t.Fatalf("Set(%s): %v", m, err)
		}
	}
	if hist, _ := s.History(ctx, user); len(hist) != 2 || hist[0] != "main" || hist[1] != "a" {
		t.Fatalf("history = %v", hist)
	}
	if err := s.GoBack(ctx, user, 1); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if cur, _ := s.Get(ctx, user); cur != "a" {
		t.Fatalf("current = %q, want a", cur)
	}
	if err := s.GoBack(ctx, user, 5); err != nil {
		t.Fatalf("GoBack(5): %v", err)
	}
	if cur, _ := s.Get(ctx, user); cur != "main" {
		t.Fatalf("current = %q, want main", cur)
	}
	if err := s.GoBack(ctx, user, -3); !errors.Is(err, state.ErrInvalidGoBackCount) {
		t.Fatalf("err = %v", err)
	}
}

func TestPostgresStoreLock(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	const user int64 = 2002

	unlock, err := s.Lock(ctx, user)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	short, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if _, err := s.Lock(short, user); err == nil {
		t.Fatal("second Lock should wait until the context expires")
	}
	unlock()

	again, err := s.Lock(ctx, user)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	again()
}
