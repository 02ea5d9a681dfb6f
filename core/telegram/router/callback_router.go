package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/telegram/callbacks"
)

// CallbackOptions sets the handler for callbacks the registry does not know.
// The registry's own not-found handler takes precedence.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute routes button presses by callback unique through the registry.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		key, _ := callbacks.ParseCallbackData(cb)
		extras := []slog.Attr{slog.String("cb_key", key)}

		h, ok := reg.GetCallback(key)
		if !ok || h == nil {
			extras = append(extras, slog.String("reason", "not_found"))
			if h = reg.CallbackNotFound(); h == nil {
				h = opts.NotFound
			}
		} else {
			// Stops the client spinner; not-found handlers answer with their own text.
			_ = c.Respond()
		}
		return handleWithSummary(c, "callback."+normalizeHandlerName(key), start, "", "", func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: guard(handler)}
}
