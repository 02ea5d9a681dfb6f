package helpers

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseMode(t *testing.T) {
	cases := map[any]tele.ParseMode{
		"html":       tele.ModeHTML,
		" HTML ":     tele.ModeHTML,
		"markdown":   tele.ModeMarkdown,
		"MarkdownV2": tele.ModeMarkdownV2,
		"plain":      tele.ModeDefault,
		42:           tele.ModeDefault,
	}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Fatalf("ParseMode(%v) = %q, want %q", in, got, want)
		}
	}
	if got := ParseMode(nil); got != tele.ModeDefault {
		t.Fatalf("ParseMode(nil) = %q", got)
	}
}
