package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// updateKind names the update type as used by rate_limit.exclude_updates.
func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// limiter tracks the last accepted update per user.
type limiter struct {
	interval time.Duration
	mu       sync.Mutex
	last     map[int64]time.Time
}

// allow reports whether userID may proceed at now and records the attempt when it may.
func (l *limiter) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.last[userID] = now
	if len(l.last) > 4096 {
		for id, ts := range l.last {
			if now.Sub(ts) >= l.interval {
				delete(l.last, id)
			}
		}
	}
	return true
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	lim := &limiter{interval: opts.Interval, last: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if lim.allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("op", kind),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
