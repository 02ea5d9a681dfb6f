// Package commands describes slash commands served by the bot.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command. Hidden commands work but are not published in
// the Telegram command menu; AdminOnly ones are wrapped with an admin check.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	// Aliases are extra names, with or without the leading slash.
	Aliases []string
}

// HasAlias reports whether name (lowercase, slash-prefixed) is one of the aliases.
func (c Command) HasAlias(name string) bool {
	for _, alias := range c.Aliases {
		if "/"+strings.ToLower(strings.TrimPrefix(strings.TrimSpace(alias), "/")) == name {
			return true
		}
	}
	return false
}
