package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func newStore() *MemoryStore {
	return NewMemoryStore("default")
}

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	if got, _ := s.Get(ctx, 123); got != "default" {
		t.Fatalf("Get unknown = %q, want default", got)
	}
	if err := s.Set(ctx, 123, "new_state"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := s.Get(ctx, 123); got != "new_state" {
		t.Fatalf("Get = %q, want new_state", got)
	}
	hist, _ := s.History(ctx, 123)
	if len(hist) != 1 || hist[0] != "default" {
		t.Fatalf("history = %v, want [default]", hist)
	}
}

func TestMemoryStoreCreateOnce(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	created, err := s.Create(ctx, 7)
	if err != nil || !created {
		t.Fatalf("first Create = %v, %v; want true", created, err)
	}
	for i := 0; i < 3; i++ {
		created, _ = s.Create(ctx, 7)
		if created {
			t.Fatalf("Create call %d returned true", i+2)
		}
	}
	if got, _ := s.Get(ctx, 7); got != "default" {
		t.Fatalf("Get after create = %q", got)
	}
}

func TestMemoryStoreCreateAfterSet(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_ = s.Set(ctx, 1, "a")
	if created, _ := s.Create(ctx, 1); created {
		t.Fatal("Create should report false for a user that already navigated")
	}
}

func TestMemoryStoreGoBackRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_ = s.Set(ctx, 1, "a")
	_ = s.Set(ctx, 1, "b")
	before, _ := s.History(ctx, 1)

	_ = s.Set(ctx, 1, "x")
	if err := s.GoBack(ctx, 1, 1); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if got, _ := s.Get(ctx, 1); got != "b" {
		t.Fatalf("current = %q, want b", got)
	}
	after, _ := s.History(ctx, 1)
	if len(after) != len(before) {
		t.Fatalf("history length = %d, want %d", len(after), len(before))
	}
}

func TestMemoryStoreGoBackBeyondHistory(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_ = s.Set(ctx, 1, "a")
	_ = s.Set(ctx, 1, "b")

	if err := s.GoBack(ctx, 1, 10); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if got, _ := s.Get(ctx, 1); got != "default" {
		t.Fatalf("current = %q, want default", got)
	}
	if hist, _ := s.History(ctx, 1); len(hist) != 0 {
		t.Fatalf("history = %v, want empty", hist)
	}
}

func TestMemoryStoreGoBackToRoot(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	for _, m := range []string{"a", "b", "c", "d"} {
		_ = s.Set(ctx, 1, m)
	}
	if err := s.GoBack(ctx, 1, BackToRoot); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if got, _ := s.Get(ctx, 1); got != "default" {
		t.Fatalf("current = %q, want default", got)
	}
	if hist, _ := s.History(ctx, 1); len(hist) != 0 {
		t.Fatalf("history = %v, want empty", hist)
	}
}

func TestMemoryStoreGoBackInvalidCount(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_ = s.Set(ctx, 1, "a")
	for _, c := range []BackCount{0, -2, -100} {
		if err := s.GoBack(ctx, 1, c); !errors.Is(err, ErrInvalidGoBackCount) {
			t.Fatalf("GoBack(%d) err = %v, want ErrInvalidGoBackCount", c, err)
		}
	}
	if got, _ := s.Get(ctx, 1); got != "a" {
		t.Fatalf("state changed after invalid go back: %q", got)
	}
}

func TestMemoryStoreGoBackUnknownUser(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	if err := s.GoBack(ctx, 99, 1); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if created, _ := s.Create(ctx, 99); !created {
		t.Fatal("GoBack must not register an unknown user")
	}
}

func TestRecordRewind(t *testing.T) {
	rec := Record{Current: "d", History: []string{"root", "a", "b", "c"}}
	cases := []struct {
		count   BackCount
		current string
		depth   int
	}{
		{1, "c", 3},
		{2, "b", 2},
		{4, "root", 0},
		{5, "root", 0},
		{BackToRoot, "root", 0},
	}
	for _, tc := range cases {
		got, err := rec.Rewind("root", tc.count)
		if err != nil {
			t.Fatalf("Rewind(%v): %v", tc.count, err)
		}
		if got.Current != tc.current || len(got.History) != tc.depth {
			t.Errorf("Rewind(%v) = %+v; want current=%s depth=%d", tc.count, got, tc.current, tc.depth)
		}
	}
	if len(rec.History) != 4 {
		t.Fatalf("Rewind mutated the receiver: %v", rec.History)
	}
}

func TestKeyLockSerializesSameUser(t *testing.T) {
	l := NewKeyLock()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, 42)
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
	if n := l.held(); n != 0 {
		t.Fatalf("lock entries leaked: %d", n)
	}
}

func TestKeyLockDistinctUsersDoNotBlock(t *testing.T) {
	l := NewKeyLock()
	ctx := context.Background()
	unlockA, err := l.Lock(ctx, 1)
	if err != nil {
		t.Fatalf("Lock(1): %v", err)
	}
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := l.Lock(ctx, 2)
		if err == nil {
			unlockB()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different user blocked")
	}
}

func TestKeyLockHonoursContext(t *testing.T) {
	l := NewKeyLock()
	unlock, _ := l.Lock(context.Background(), 5)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, 5); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock err = %v, want deadline exceeded", err)
	}
	unlock()
	unlock()
	if n := l.held(); n != 0 {
		t.Fatalf("lock entries leaked: %d", n)
	}
}
