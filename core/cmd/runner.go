package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/navmenu/core/buildinfo"
	coreconfig "github.com/m3rciful/navmenu/core/config"
	"github.com/m3rciful/navmenu/core/console"
	"github.com/m3rciful/navmenu/core/logger"
	coretelegram "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/transport"
)

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// App is the bootstrapped application served by one of the transports.
type App interface {
	Processor() *transport.Processor
	TelegramRunOptions() (coretelegram.RunOptions, error)
	Close() error
}

// Options describe how to load configuration, bootstrap the app, and run it.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(ctx context.Context, cfg ConfigCarrier) (App, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
	RunConsole     func(ctx context.Context, proc *transport.Processor, cfg coreconfig.ConsoleConfig) error
}

func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if o.DefaultConfigPath != "" {
		return o.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
}

// Run loads configuration, bootstraps the app and serves it over the
// configured transport until SIGINT or SIGTERM.
func Run(opts Options) error {
	switch {
	case opts.LoadConfig == nil:
		return errors.New("cmd: LoadConfig is required")
	case opts.Bootstrap == nil:
		return errors.New("cmd: Bootstrap is required")
	}
	path, err := opts.configPath()
	if err != nil {
		return err
	}

	log.Printf("navmenu %s, loading config: %s", buildinfo.Summary(), path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	core := cfg.CoreConfig()
	if core == nil {
		return errors.New("cmd: loaded config is missing core configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	started := time.Now()
	app, err := opts.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer opts.shutdown(app)

	if core.Transport == coreconfig.TransportConsole {
		return opts.serveConsole(ctx, app, core.Console, started)
	}
	return opts.serveTelegram(ctx, app, started)
}

// shutdown closes the app first so its last log lines reach the logger before it flushes.
func (o Options) shutdown(app App) {
	if err := app.Close(); err != nil {
		logger.Warn(logger.Background(), "app", "close", slog.String("err", err.Error()))
	}
	stop := o.ShutdownLogger
	if stop == nil {
		stop = logger.Shutdown
	}
	if err := stop(); err != nil {
		log.Printf("logger shutdown error: %v", err)
	}
}

func (o Options) serveConsole(ctx context.Context, app App, cfg coreconfig.ConsoleConfig, started time.Time) error {
	run := o.RunConsole
	if run == nil {
		run = RunConsole
	}
	logReady(ctx, coreconfig.TransportConsole, started)
	err := run(ctx, app.Processor(), cfg)
	logger.Info(logger.Background(), "app", "shutdown")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (o Options) serveTelegram(ctx context.Context, app App, started time.Time) error {
	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}

	onStart, onStop := runOpts.OnStart, runOpts.OnStop
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logReady(ctx, coreconfig.TransportTelegram, started)
		return nil
	}
	runOpts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown")
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}

	run := o.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}
	return run(ctx, runOpts)
}

// RunConsole serves proc on the terminal.
func RunConsole(ctx context.Context, proc *transport.Processor, cfg coreconfig.ConsoleConfig) error {
	rl, err := console.NewReadline(console.Config{
		Prompt:      cfg.Prompt,
		HistoryFile: cfg.HistoryFile,
		UserID:      cfg.UserID,
	})
	if err != nil {
		return fmt.Errorf("cmd: console init: %w", err)
	}
	return console.New(proc, rl, rl.Stdout(), cfg.UserID).Run(ctx)
}

func logReady(ctx context.Context, transportName string, started time.Time) {
	logger.Info(ctx, "app", "ready",
		slog.String("transport", transportName),
		slog.Duration("startup_duration", logger.RoundMS(time.Since(started))),
	)
}
