package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/navigator"
	tg "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/telegram/commands"
	"github.com/m3rciful/navmenu/core/telegram/middleware"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("select: %w", navigator.ErrInvalidAction), "INVALID_ACTION"},
		{&navigator.SelectError{Menu: "main", Err: navigator.ErrUnknownMenu}, "UNKNOWN_MENU"},
		{fmt.Errorf("lock: %w", context.DeadlineExceeded), "TIMEOUT"},
		{fmt.Errorf("wrapped: %w", &middleware.PanicError{Value: 1}), "PANIC"},
		{customErr{}, "CUSTOMERR"},
		{errors.New("plain"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.want {
			t.Fatalf("errorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestNormalizeHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Start":     "start",
		"  ":         "unknown",
		"Main Menu":  "main_menu",
	}
	for in, want := range cases {
		if got := normalizeHandlerName(in); got != want {
			t.Fatalf("normalizeHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextHandlerPrecedence(t *testing.T) {
	reg := tg.NewRegistry()
	called := ""
	mark := func(name string) tele.HandlerFunc {
		return func(tele.Context) error {
			called = name
			return nil
		}
	}
	unknown := mark("unknown")

	if name, h := textHandler(reg, "hello", unknown); name != "unknown_text" || h == nil {
		t.Fatalf("empty registry: %s", name)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Description: "Start", Handler: mark("start")}); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.SetTextFallback(mark("menu"))

	name, h := textHandler(reg, "/START@navbot now", unknown)
	if name != "start" {
		t.Fatalf("command name = %s", name)
	}
	_ = h(nil)
	if called != "start" {
		t.Fatalf("called = %s", called)
	}
	if name, _ := textHandler(reg, "Settings", unknown); name != "menu" {
		t.Fatalf("fallback name = %s", name)
	}
	if name, _ := textHandler(nil, "x", nil); name != "unknown_text" {
		t.Fatalf("nil registry name = %s", name)
	}
}
