package helpers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/message"
)

// UserPayload collects sender and chat details that menu templates may reference,
// such as {first_name} or {username}. Empty values are omitted.
func UserPayload(c tele.Context) message.Payload {
	p := message.Payload{}
	if c == nil {
		return p
	}
	if user := c.Sender(); user != nil {
		setNonEmpty(p, "username", user.Username)
		setNonEmpty(p, "first_name", user.FirstName)
		setNonEmpty(p, "last_name", user.LastName)
		setNonEmpty(p, "lang", user.LanguageCode)
	}
	if chat := c.Chat(); chat != nil {
		p["chat_id"] = chat.ID
		setNonEmpty(p, "chat_type", string(chat.Type))
	}
	return p
}

func setNonEmpty(p message.Payload, key, value string) {
	if value != "" {
		p[key] = value
	}
}
