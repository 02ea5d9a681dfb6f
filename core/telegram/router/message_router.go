package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/navmenu/core/telegram"
)

// TextOptions sets the handlers used when nothing in the registry claims an update.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes routes text and document updates. Commands typed with arguments
// or a @bot suffix resolve through the registry; other text goes to the
// registry's text fallback, which is where menu navigation plugs in.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		name, h := textHandler(reg, c.Text(), opts.UnknownText)
		return runOrSkip(c, name, h)
	}
	doc := func(c tele.Context) error {
		return runOrSkip(c, "unexpected_document", opts.UnknownDocument)
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: guard(text)},
		{Endpoint: tele.OnDocument, Handler: guard(doc)},
	}
}

// textHandler picks the handler for text: a command, then the fallback, then unknown.
func textHandler(reg *tg.Registry, text string, unknown tele.HandlerFunc) (string, tele.HandlerFunc) {
	if reg != nil {
		if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
			return normalizeHandlerName(key), cmd.Handler
		}
		if fb := reg.TextFallback(); fb != nil {
			return "menu", fb
		}
	}
	return "unknown_text", unknown
}

// runOrSkip runs h with a handler summary, or logs a skip when h is nil.
func runOrSkip(c tele.Context, name string, h tele.HandlerFunc) error {
	start := time.Now()
	if h == nil {
		logHandlerSummary(c, name, start, "skip", "ok", nil)
		return nil
	}
	return handleWithSummary(c, name, start, "", "", func() error { return h(c) })
}
