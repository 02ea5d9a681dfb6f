package router

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
	"github.com/m3rciful/navmenu/core/telegram/middleware"
)

// guard wraps h with panic recovery and request context setup.
func guard(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}

func handleWithSummary(c tele.Context, handlerName string, start time.Time, status, outcome string, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, status, outcome, err, extras...)
	return err
}

// logHandlerSummary writes one handler.handled line per update. Empty status or
// outcome are derived from err.
func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status, outcome string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handlerName)
	replies, buttons := middleware.GetReplyStats(c)

	result := "ok"
	if err != nil {
		result = "fail"
	}
	if status == "" {
		status = result
	}
	if outcome == "" {
		outcome = result
	}

	attrs := make([]slog.Attr, 0, 9+len(extras))
	attrs = append(attrs,
		slog.String("status", status),
		slog.String("handler", handlerName),
		slog.String("outcome", outcome),
		slog.Int("messages", replies),
		slog.Int("buttons", buttons),
		slog.Duration("duration_ms", logger.RoundMS(time.Since(start))),
	)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

var errorCodes = []struct {
	err  error
	code string
}{
	{navigator.ErrInvalidAction, "INVALID_ACTION"},
	{navigator.ErrUnknownMenu, "UNKNOWN_MENU"},
	{state.ErrInvalidGoBackCount, "INVALID_GO_BACK"},
	{message.ErrMissingKey, "MISSING_KEY"},
	{message.ErrBadTemplate, "BAD_TEMPLATE"},
	{context.DeadlineExceeded, "TIMEOUT"},
	{context.Canceled, "CANCELED"},
}

// errorCode maps err to a stable code: known navigation errors first, then a
// Code() method, then the concrete type name.
func errorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	type coder interface{ Code() string }
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
