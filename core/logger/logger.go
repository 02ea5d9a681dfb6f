package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/navmenu/core/buildinfo"
	coreconfig "github.com/m3rciful/navmenu/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar      slog.LevelVar
	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger. It stays nil until InitLogger runs; the package helpers are no-ops then.
	L *slog.Logger
)

// options is the logger setup derived from config.
type options struct {
	format   logFormat
	level    slog.Level
	keyOrder []string
	profile  string
	sampleN  int
	sampleD  int
	stderr   bool
	file     string
}

func optionsFrom(cfg *coreconfig.Config) options {
	o := options{
		format:   formatJSON,
		level:    slog.LevelInfo,
		keyOrder: defaultKeyOrder,
		profile:  "prod",
		sampleN:  1,
		sampleD:  50,
	}
	if cfg == nil {
		return o
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		o.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		o.format = formatKV
	case "json":
	default:
		if o.profile == "debug" || o.profile == "dev" {
			o.format = formatKV
		}
	}
	o.level = parseLevel(lc.Level)
	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			o.keyOrder = order
		}
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		n, d := parseRatioSpec(spec)
		if (n > 0 && d > 0) || (n == 0 && d == 0) {
			o.sampleN, o.sampleD = n, d
		}
	}
	o.stderr = cfg.Transport == coreconfig.TransportConsole
	if dir, name := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && name != "" {
		o.file = filepath.Join(dir, name)
	}
	return o
}

// InitLogger configures the global structured logger. Later calls are no-ops.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		o := optionsFrom(cfg)
		levelVar.Set(o.level)
		debugSampler.Set(o.sampleN, o.sampleD)
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		// The console transport owns stdout.
		var out io.Writer = os.Stdout
		if o.stderr {
			out = os.Stderr
		}
		outputs := []io.Writer{out}
		if o.file != "" {
			f, err := openLogFile(o.file)
			if err != nil {
				initErr = err
				return
			}
			outputs = append(outputs, f)
			logClosers = append(logClosers, f)
		}
		logWriter = newAsyncWriter(outputs, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   o.format,
			keyOrder: o.keyOrder,
		}))
		slog.SetDefault(L)
		logStartup(cfg, o)
	})
	return initErr
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

func logStartup(cfg *coreconfig.Config, o options) {
	attrs := []slog.Attr{
		slog.String("go_version", runtime.Version()),
		slog.String("build", buildinfo.Summary()),
		slog.String("cfg_profile", o.profile),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("transport", cfg.Transport),
			slog.String("backend", cfg.Store.Backend),
			slog.String("menu", cfg.Menu.Path),
		)
	}
	Info(context.Background(), "app", "startup", attrs...)
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	var errs []error
	stopOnce.Do(func() {
		if logWriter != nil {
			errs = append(errs, logWriter.Close())
		}
		for _, c := range logClosers {
			errs = append(errs, c.Close())
		}
	})
	return errors.Join(errs...)
}

// Background returns context.Background(); call sites use it to mark logs
// emitted outside any request.
func Background() context.Context {
	return context.Background()
}

// LogEvent logs event through logg, falling back to the global logger.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = L
	}
	if logg == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns the global logger scoped to a component, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs event under the component scope.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether debug-level details should be logged for high-volume events.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
