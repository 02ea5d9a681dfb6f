package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithLockTimeout(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryStore("main")
	if got := WithLockTimeout(base, 0); got != Store(base) {
		t.Fatal("zero timeout should return the store unchanged")
	}

	s := WithLockTimeout(base, 20*time.Millisecond)
	unlock, err := s.Lock(ctx, 7)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := s.Lock(ctx, 7); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second lock err = %v, want deadline exceeded", err)
	}
	unlock()

	unlock, err = s.Lock(ctx, 7)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock()

	if err := s.Set(ctx, 7, "settings"); err != nil {
		t.Fatalf("set through wrapper: %v", err)
	}
	if got, _ := base.Get(ctx, 7); got != "settings" {
		t.Fatalf("Get = %q, want settings", got)
	}
}
