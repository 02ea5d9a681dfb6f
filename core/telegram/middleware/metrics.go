package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// Context keys holding per-update reply counters.
const (
	repliesKey = "replies"
	buttonsKey = "buttons"
)

// countingContext wraps tele.Context to count outgoing replies and the inline
// buttons they carry.
type countingContext struct{ tele.Context }

func (m countingContext) record(opts []any) {
	m.Set(repliesKey, intValue(m.Get(repliesKey))+1)
	if n := buttonCount(opts); n > 0 {
		m.Set(buttonsKey, intValue(m.Get(buttonsKey))+n)
	}
}

func buttonCount(opts []any) int {
	var markup *tele.ReplyMarkup
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				markup = v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			markup = v
		}
	}
	if markup == nil {
		return 0
	}
	n := 0
	for _, row := range markup.InlineKeyboard {
		n += len(row)
	}
	for _, row := range markup.ReplyKeyboard {
		n += len(row)
	}
	return n
}

func intValue(v any) int {
	n, _ := v.(int)
	return n
}

// Send proxies tele.Context.Send and records the reply.
func (m countingContext) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.record(opts)
	}
	return err
}

// Reply proxies tele.Context.Reply and records the reply.
func (m countingContext) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.record(opts)
	}
	return err
}

// Edit proxies tele.Context.Edit; edits count as replies.
func (m countingContext) Edit(what any, opts ...any) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.record(opts)
	}
	return err
}

// MessageMetricsMiddleware counts replies and keyboard buttons sent while
// handling an update. Read the result with GetReplyStats.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(repliesKey, 0)
		c.Set(buttonsKey, 0)
		return next(countingContext{Context: c})
	}
}

// GetReplyStats reports the reply and button counts for the update.
func GetReplyStats(c tele.Context) (replies, buttons int) {
	return intValue(c.Get(repliesKey)), intValue(c.Get(buttonsKey))
}
