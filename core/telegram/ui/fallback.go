package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or expected documents.
type FallbackProvider interface {
	UnknownText() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// Fallbacks answers unmapped updates with fixed texts. Empty texts use defaults.
type Fallbacks struct {
	Text     string
	Document string
	Callback string
}

var _ FallbackProvider = Fallbacks{}

// UnknownText replies with the Text hint.
func (f Fallbacks) UnknownText() tele.HandlerFunc {
	return reply(orDefault(f.Text, "Use the buttons below or type an option name."))
}

// UnknownDocument replies with the Document hint.
func (f Fallbacks) UnknownDocument() tele.HandlerFunc {
	return reply(orDefault(f.Document, "Files are not supported here. Type an option name instead."))
}

// UnknownCallback answers the button press with a short alert.
func (f Fallbacks) UnknownCallback() tele.HandlerFunc {
	text := orDefault(f.Callback, "This button is no longer available")
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
}

func reply(text string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(text)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
