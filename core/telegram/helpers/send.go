package helpers

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseModeField is the content field that selects Telegram formatting for a message.
const ParseModeField = "parse_mode"

// ParseMode maps a parse_mode content value to a Telegram parse mode. Unknown
// values fall back to plain text.
func ParseMode(v any) tele.ParseMode {
	s, ok := v.(string)
	if !ok {
		return tele.ModeDefault
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return tele.ModeHTML
	case "markdown", "md":
		return tele.ModeMarkdown
	case "markdownv2", "mdv2":
		return tele.ModeMarkdownV2
	}
	return tele.ModeDefault
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	if len(opts) > 0 && opts[0] != nil {
		return c.Send(text, opts[0])
	}
	return c.Send(text)
}

// SendFormatted sends text using mode and an optional reply markup.
func SendFormatted(c tele.Context, text string, mode tele.ParseMode, markup *tele.ReplyMarkup) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("send: empty text")
	}
	return SendText(c, text, &tele.SendOptions{ParseMode: mode, ReplyMarkup: markup})
}
