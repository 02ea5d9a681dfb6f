package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	upd   tele.Update
	user  *tele.User
	store map[string]any
	sent  int
}

func newFake(upd tele.Update, user *tele.User) *fakeContext {
	return &fakeContext{upd: upd, user: user, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.upd }
func (f *fakeContext) Sender() *tele.User { return f.user }
func (f *fakeContext) Chat() *tele.Chat { return nil }
func (f *fakeContext) Get(key string) any { return f.store[key] }
func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func (f *fakeContext) Text() string {
	if f.upd.Message != nil {
		return f.upd.Message.Text
	}
	return ""
}

func (f *fakeContext) Send(any, ...any) error {
	f.sent++
	return nil
}

func TestMessageMetricsCountsRepliesAndButtons(t *testing.T) {
	c := newFake(tele.Update{ID: 1}, &tele.User{ID: 1})
	markup := &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{{{Text: "a"}, {Text: "b"}}, {{Text: "c"}}}}

	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("menu", &tele.SendOptions{ReplyMarkup: markup}); err != nil {
			return err
		}
		return c.Send("plain")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if c.sent != 2 {
		t.Fatalf("sent = %d", c.sent)
	}
	replies, buttons := GetReplyStats(c)
	if replies != 2 || buttons != 3 {
		t.Fatalf("replies=%d buttons=%d", replies, buttons)
	}
}

func TestUpdateSeen(t *testing.T) {
	s := newUpdateSeen(time.Second)
	now := time.Now()
	if !s.first(7, now) {
		t.Fatal("first sighting should report true")
	}
	if s.first(7, now.Add(500*time.Millisecond)) {
		t.Fatal("repeat within ttl should report false")
	}
	if !s.first(7, now.Add(2*time.Second)) {
		t.Fatal("expired entry should be forgotten")
	}
}

func TestInputKind(t *testing.T) {
	cases := []struct {
		upd  tele.Update
		want string
	}{
		{tele.Update{Callback: &tele.Callback{}}, "button"},
		{tele.Update{Message: &tele.Message{Text: "/start"}}, "command"},
		{tele.Update{Message: &tele.Message{Text: "Settings"}}, "text"},
		{tele.Update{Message: &tele.Message{Document: &tele.Document{}}}, "document"},
		{tele.Update{}, "other"},
	}
	for _, tc := range cases {
		if got := inputKind(newFake(tc.upd, nil)); got != tc.want {
			t.Fatalf("inputKind = %q, want %q", got, tc.want)
		}
	}
}

func TestLimiter(t *testing.T) {
	lim := &limiter{interval: time.Second, last: map[int64]time.Time{}}
	now := time.Now()
	if !lim.allow(1, now) {
		t.Fatal("first update should pass")
	}
	if lim.allow(1, now.Add(100*time.Millisecond)) {
		t.Fatal("burst should be limited")
	}
	if !lim.allow(2, now) {
		t.Fatal("other users are independent")
	}
	if !lim.allow(1, now.Add(time.Second)) {
		t.Fatal("update after interval should pass")
	}
}

func TestRateLimitExclude(t *testing.T) {
	calls := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"callback": {}},
	})
	h := mw(func(tele.Context) error { calls++; return nil })
	user := &tele.User{ID: 5}
	for i := 0; i < 3; i++ {
		if err := h(newFake(tele.Update{Callback: &tele.Callback{}}, user)); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := h(newFake(tele.Update{Message: &tele.Message{Text: "x"}}, user)); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 4 {
		t.Fatalf("calls = %d, want 4", calls)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newFake(tele.Update{ID: 3}, &tele.User{ID: 3}))
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("err = %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	c := newFake(tele.Update{}, &tele.User{ID: 42})
	if !IsAdmin(c, 0) || !IsAdmin(c, 42) || IsAdmin(c, 7) {
		t.Fatal("admin check mismatch")
	}
	if IsAdmin(newFake(tele.Update{}, nil), 42) {
		t.Fatal("missing sender must not be admin")
	}
}
