// Package callbacks encodes and decodes telebot callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const (
	prefix    = "\f"
	separator = "|"
)

// EncodeData renders unique and payload the way telebot sends them: \f<unique>|<payload>.
// An empty payload drops the separator.
func EncodeData(unique, payload string) string {
	if payload == "" {
		return prefix + unique
	}
	return prefix + unique + separator + payload
}

// ParseCallbackData splits cb into its unique and payload. Callbacks telebot
// already matched carry the unique separately and the payload as Data.
func ParseCallbackData(cb *tele.Callback) (unique, payload string) {
	switch {
	case cb == nil:
		return "", ""
	case cb.Unique != "":
		return cb.Unique, cb.Data
	}
	unique, payload, _ = strings.Cut(strings.TrimPrefix(cb.Data, prefix), separator)
	return strings.TrimSpace(unique), payload
}

// CallbackPayload returns the payload of the update's callback.
func CallbackPayload(c tele.Context) string {
	_, payload := ParseCallbackData(c.Callback())
	return payload
}
