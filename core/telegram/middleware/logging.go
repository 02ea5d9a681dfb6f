package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
)

// updateSeen remembers recently logged update IDs so a middleware applied on
// several branches logs each receipt once.
type updateSeen struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[int]time.Time
}

func newUpdateSeen(ttl time.Duration) *updateSeen {
	return &updateSeen{ttl: ttl, seen: make(map[int]time.Time)}
}

// first reports whether id is seen for the first time within ttl.
func (s *updateSeen) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, ts := range s.seen {
		if now.Sub(ts) > s.ttl {
			delete(s.seen, k)
		}
	}
	if _, ok := s.seen[id]; ok {
		return false
	}
	s.seen[id] = now
	return true
}

var receipts = newUpdateSeen(10 * time.Second)

// inputKind classifies an update the way the menu engine sees it.
func inputKind(c tele.Context) string {
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		return "button"
	case upd.Message != nil && upd.Message.Document != nil:
		return "document"
	case strings.HasPrefix(c.Text(), "/"):
		return "command"
	case upd.Message != nil:
		return "text"
	}
	return "other"
}

// LoggerMiddleware stores the request context for downstream handlers and
// logs a sampled debug receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.RequestContext(c)
		tghelpers.StoreContext(c, ctx)

		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()
		if !logger.ShouldSampleDebug() || !receipts.first(upd.ID, time.Now()) {
			return next(c)
		}

		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("via", inputKind(c)),
		}
		if chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		if upd.Callback != nil {
			key, payload := callbacks.ParseCallbackData(upd.Callback)
			if key != "" {
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			}
			if payload != "" {
				attrs = append(attrs, slog.String("action", logger.SanitizeLimit(payload, 256)))
			}
		} else if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("action", logger.SanitizeLimit(t, 256)))
		}
		logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)

		return next(c)
	}
}
