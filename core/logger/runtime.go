package logger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

type contextKey uint8

const (
	ctxRID contextKey = iota
	ctxUpdateID
	ctxUserID
	ctxChatID
	ctxHandler
	ctxMenu
	ctxTransport
)

func with(ctx context.Context, key contextKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func value[T any](ctx context.Context, key contextKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

// WithRID attaches a request correlation id.
func WithRID(ctx context.Context, rid string) context.Context { return with(ctx, ctxRID, rid) }

// RIDFrom returns the correlation id, if any.
func RIDFrom(ctx context.Context) string { return value[string](ctx, ctxRID) }

// WithUpdateMeta attaches Telegram update identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = with(ctx, ctxUpdateID, updateID)
	ctx = with(ctx, ctxUserID, userID)
	return with(ctx, ctxChatID, chatID)
}

// WithUser attaches the navigating user's id.
func WithUser(ctx context.Context, userID int64) context.Context {
	return with(ctx, ctxUserID, userID)
}

// UserIDFrom returns the user id, or 0.
func UserIDFrom(ctx context.Context) int64 { return value[int64](ctx, ctxUserID) }

// ChatIDFrom returns the chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 { return value[int64](ctx, ctxChatID) }

// UpdateIDFrom returns the update id, or 0.
func UpdateIDFrom(ctx context.Context) int { return value[int](ctx, ctxUpdateID) }

// WithHandler stores the handler name for downstream logs.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" && ctx != nil {
		return ctx
	}
	return with(ctx, ctxHandler, handler)
}

// HandlerFrom returns the handler name, if any.
func HandlerFrom(ctx context.Context) string { return value[string](ctx, ctxHandler) }

// WithMenu records the menu a request is being served from.
func WithMenu(ctx context.Context, menu string) context.Context { return with(ctx, ctxMenu, menu) }

// MenuFrom returns the menu recorded by WithMenu.
func MenuFrom(ctx context.Context) string { return value[string](ctx, ctxMenu) }

// WithTransport records which transport received the request (telegram, console).
func WithTransport(ctx context.Context, name string) context.Context {
	return with(ctx, ctxTransport, name)
}

// TransportFrom returns the transport recorded by WithTransport.
func TransportFrom(ctx context.Context) string { return value[string](ctx, ctxTransport) }

// Sanitize drops control and format runes except tab and newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit applies Sanitize and keeps at most max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	cleaned := Sanitize(s)
	n := 0
	for i := range cleaned {
		if n == max {
			return cleaned[:i]
		}
		n++
	}
	return cleaned
}

// BuildRID returns a correlation identifier in the format updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// NewRID returns a short random correlation id for requests that carry no
// update identifiers, such as console input.
func NewRID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:12]
}

// CompactRID shortens an updateID:chatID:userID rid into dot-separated base36
// segments. Other inputs are returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
