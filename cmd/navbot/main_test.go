package main

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/navmenu/core/bootstrap"
	coreconfig "github.com/m3rciful/navmenu/core/config"
	"github.com/m3rciful/navmenu/core/transport"
)

func TestLoadExampleConfig(t *testing.T) {
	carrier, err := loadConfig("../../configs/config.example.yml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := carrier.(*AppConfig)
	if cfg.CoreConfig().Transport != coreconfig.TransportConsole {
		t.Fatalf("transport = %q", cfg.Transport)
	}
	if cfg.Redis.KeyPrefix != "navmenu" || cfg.Redis.LockTTL.Seconds() != 30 {
		t.Fatalf("redis section not decoded: %+v", cfg.Redis)
	}
	if cfg.Database.Name != "navmenu" {
		t.Fatalf("database section not decoded: %+v", cfg.Database)
	}
}

func newExampleProcessor(t *testing.T, adminID int64) *transport.Processor {
	t.Helper()
	res, err := bootstrap.Run(context.Background(), bootstrap.Options{
		Config: &coreconfig.Config{
			Transport: coreconfig.TransportConsole,
			Menu:      coreconfig.MenuConfig{Path: "../../configs/menu.example.yml", Suggestions: 2},
			Store:     coreconfig.StoreConfig{Backend: coreconfig.BackendMemory},
		},
		Functions:  baseFunctions(adminID),
		Modules:    bootstrap.Modules{clicksModule("")},
		LoggerInit: func(*coreconfig.Config) error { return nil },
	})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return res.Processor
}

func texts(replies []transport.Reply) []string {
	out := make([]string, len(replies))
	for i, r := range replies {
		out[i] = r.Text
	}
	return out
}

func TestExampleMenus(t *testing.T) {
	ctx := context.Background()
	proc := newExampleProcessor(t, 42)
	send := func(userID int64, text string) []string {
		t.Helper()
		replies, err := proc.Process(ctx, transport.Update{UserID: userID, Text: text})
		if err != nil {
			t.Fatalf("process %q: %v", text, err)
		}
		return texts(replies)
	}

	if got := send(7, "hello"); len(got) != 1 || got[0] != "Main menu. Your id: 7" {
		t.Fatalf("first contact = %q", got)
	}
	if got := send(7, "counter"); len(got) != 1 || got[0] != "First click, 7!" {
		t.Fatalf("first click = %q", got)
	}
	if got := send(7, "counter"); len(got) != 1 || got[0] != "Clicked again." {
		t.Fatalf("second click = %q", got)
	}

	got := send(7, "settings")
	if len(got) != 2 || got[0] != "Changes apply immediately." || got[1] != "Settings" {
		t.Fatalf("open settings = %q", got)
	}
	got = send(7, "language")
	if len(got) != 1 || got[0] != "Pick a language" {
		t.Fatalf("open language = %q", got)
	}
	got = send(7, "fr")
	if len(got) != 1 || got[0] != "Unknown language: fr" {
		t.Fatalf("default action = %q", got)
	}
	got = send(7, "de")
	if len(got) != 3 || got[0] != "Sprache auf Deutsch gesetzt." || got[2] != "Settings" {
		t.Fatalf("pick language = %q", got)
	}
	got = send(7, "home")
	if len(got) != 1 || got[0] != "Main menu. Your id: 7" {
		t.Fatalf("alias home = %q", got)
	}

	// Non-admins do not see or reach the admin item.
	got = send(7, "admin")
	if len(got) != 1 || !strings.HasPrefix(got[0], "Invalid command") {
		t.Fatalf("admin for regular user = %q", got)
	}
	send(42, "start")
	got = send(42, "admin")
	if len(got) != 1 || got[0] != "Admin area" {
		t.Fatalf("admin for admin = %q", got)
	}
}
