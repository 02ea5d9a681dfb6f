package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
)

const (
	ctxKey = "logger_ctx"
	ridKey = "rid"
)

// StoreContext caches ctx on c for later BuildContext calls.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// ContextFrom returns the context cached on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// RequestContext derives a fresh logging context from the update in c:
// rid, update/user/chat ids and the telegram transport tag. The rid stored
// on c wins over a newly built one.
func RequestContext(c tele.Context) context.Context {
	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get(ridKey).(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
		c.Set(ridKey, rid)
	}
	ctx := logger.WithRID(logger.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	return logger.WithTransport(ctx, "telegram")
}

// BuildContext returns the cached request context or builds and caches one.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	ctx := RequestContext(c)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the request context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}
