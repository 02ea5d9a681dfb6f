package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/navmenu/core/config"
	"github.com/m3rciful/navmenu/core/logger"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
	"github.com/m3rciful/navmenu/core/telegram/netutil"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	Middlewares []Middleware
	Routes      []Route

	DisableWebhookCleanup bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot      *tele.Bot
	Registry *Registry
}

// RunTelegram composes and runs a Telegram bot until the provided context is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Config == nil {
		return fmt.Errorf("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	bot, err := newBot(ctx, opts.Config, opts.DisableWebhookCleanup)
	if err != nil {
		return err
	}
	rt := Runtime{Bot: bot, Registry: reg}

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	InitBotCommands(bot, reg)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	runErr := serve(ctx, bot)

	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// newBot builds the bot for the configured run mode and, in long-poll mode,
// removes a previously registered webhook.
func newBot(ctx context.Context, cfg *coreconfig.Config, keepWebhook bool) (*tele.Bot, error) {
	pollOpts := PollerOptionsFrom(cfg)
	poller := BuildPoller(pollOpts)

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: BuildHTTPClient(HTTPClientOptions{LongPollTimeout: pollOpts.LongPollTimeout}),
		OnError: func(err error, c tele.Context) {
			ectx := ctx
			if c != nil {
				ectx = tghelpers.BuildContext(c)
			}
			logger.Error(ectx, "tg", "handler.error",
				slog.String("err", logger.SanitizeLimit(netutil.Redact(err.Error()), 256)),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	took := logger.RoundMS(time.Since(start))

	if wh, ok := poller.(*tele.Webhook); ok {
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", wh.Listen),
			slog.String("public_url", wh.Endpoint.PublicURL),
			slog.Duration("duration_ms", took),
		)
		return bot, nil
	}

	logger.Info(ctx, "tg", "mode",
		slog.String("mode", "polling"),
		slog.Duration("timeout", pollOpts.LongPollTimeout),
		slog.Duration("duration_ms", took),
	)
	if keepWebhook {
		return bot, nil
	}
	if err := bot.RemoveWebhook(false); err != nil {
		logger.Warn(ctx, "tg", "delete_webhook",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err.Error()), 256)),
		)
	} else {
		logger.Info(ctx, "tg", "delete_webhook", slog.String("status", "ok"))
	}
	return bot, nil
}

// serve runs the bot until ctx is done or the poller stops on its own.
func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		return ctx.Err()
	case <-done:
		return nil
	}
}
