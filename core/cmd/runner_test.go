package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/navmenu/core/config"
	coretelegram "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/transport"
)

type testConfig struct{ core coreconfig.Config }

func (c *testConfig) CoreConfig() *coreconfig.Config { return &c.core }

type testApp struct {
	closed    bool
	telegramN int
}

func (a *testApp) Processor() *transport.Processor { return nil }

func (a *testApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	a.telegramN++
	return coretelegram.RunOptions{}, nil
}

func (a *testApp) Close() error {
	a.closed = true
	return nil
}

func runWith(t *testing.T, transportName string, app *testApp) (consoleRuns, telegramRuns int, err error) {
	t.Helper()
	t.Setenv("NAVMENU_TEST_CONFIG", "config.yml")
	err = Run(Options{
		ConfigEnvVar: "NAVMENU_TEST_CONFIG",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			if path != "config.yml" {
				t.Fatalf("path = %q", path)
			}
			cfg := &testConfig{}
			cfg.core.Transport = transportName
			cfg.core.Console.UserID = 9
			return cfg, nil
		},
		Bootstrap: func(context.Context, ConfigCarrier) (App, error) {
			return app, nil
		},
		ShutdownLogger: func() error { return nil },
		RunConsole: func(_ context.Context, _ *transport.Processor, cfg coreconfig.ConsoleConfig) error {
			if cfg.UserID != 9 {
				t.Fatalf("console user = %d", cfg.UserID)
			}
			consoleRuns++
			return context.Canceled
		},
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			telegramRuns++
			if opts.OnStart == nil || opts.OnStop == nil {
				t.Fatal("lifecycle hooks not wrapped")
			}
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	return consoleRuns, telegramRuns, err
}

func TestRunSelectsTransport(t *testing.T) {
	app := &testApp{}
	c, tg, err := runWith(t, coreconfig.TransportConsole, app)
	if err != nil {
		t.Fatalf("console run: %v", err)
	}
	if c != 1 || tg != 0 || app.telegramN != 0 {
		t.Fatalf("console=%d telegram=%d options=%d", c, tg, app.telegramN)
	}
	if !app.closed {
		t.Fatal("app not closed")
	}

	app = &testApp{}
	c, tg, err = runWith(t, coreconfig.TransportTelegram, app)
	if err != nil {
		t.Fatalf("telegram run: %v", err)
	}
	if c != 0 || tg != 1 || app.telegramN != 1 {
		t.Fatalf("console=%d telegram=%d options=%d", c, tg, app.telegramN)
	}
}

func TestRunRequiresHooks(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig")
	}
	boom := errors.New("boom")
	t.Setenv("NAVMENU_TEST_CONFIG", "config.yml")
	err := Run(Options{
		ConfigEnvVar: "NAVMENU_TEST_CONFIG",
		LoadConfig:   func(string) (ConfigCarrier, error) { return &testConfig{}, nil },
		Bootstrap:    func(context.Context, ConfigCarrier) (App, error) { return nil, boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}
