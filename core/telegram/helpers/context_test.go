package helpers

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
)

type storeContext struct {
	tele.Context
	upd   tele.Update
	store map[string]any
}

func (s *storeContext) Update() tele.Update     { return s.upd }
func (s *storeContext) Sender() *tele.User      { return &tele.User{ID: 7} }
func (s *storeContext) Chat() *tele.Chat        { return &tele.Chat{ID: 9} }
func (s *storeContext) Get(key string) any      { return s.store[key] }
func (s *storeContext) Set(key string, val any) { s.store[key] = val }

func TestBuildContextCachesRequestScope(t *testing.T) {
	c := &storeContext{upd: tele.Update{ID: 3}, store: map[string]any{}}
	if _, ok := ContextFrom(c); ok {
		t.Fatal("unexpected cached context")
	}
	ctx := BuildContext(c)
	if logger.RIDFrom(ctx) != logger.BuildRID(3, 9, 7) || c.Get("rid") != logger.RIDFrom(ctx) {
		t.Fatalf("rid = %q", logger.RIDFrom(ctx))
	}
	if logger.UserIDFrom(ctx) != 7 || logger.ChatIDFrom(ctx) != 9 || logger.TransportFrom(ctx) != "telegram" {
		t.Fatal("request scope missing")
	}
	if got := WithHandler(c, "menu"); logger.HandlerFrom(got) != "menu" {
		t.Fatal("handler not tagged")
	}
	if cached, _ := ContextFrom(c); logger.HandlerFrom(cached) != "menu" {
		t.Fatal("tagged context not cached")
	}
}

func TestRequestContextKeepsStoredRID(t *testing.T) {
	c := &storeContext{store: map[string]any{"rid": "given"}}
	if rid := logger.RIDFrom(RequestContext(c)); rid != "given" {
		t.Fatalf("rid = %q", rid)
	}
}
