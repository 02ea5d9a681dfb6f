// Package menu defines menus: what they render and how they react to an action.
package menu

import (
	"errors"
	"iter"
	"strings"

	"github.com/m3rciful/navmenu/core/message"
)

var (
	// ErrImmutableItems is returned by AddItem on menus built without WithMutableItems.
	ErrImmutableItems = errors.New("menu: item list is immutable")
	// ErrNoMatch is returned by delegated handlers that do not recognise an action.
	ErrNoMatch = errors.New("menu: no match")
	// ErrDuplicateMenu is returned when a name is registered twice.
	ErrDuplicateMenu = errors.New("menu: duplicate menu name")
)

// Menu is a named screen in the navigation graph.
type Menu interface {
	// Select resolves action. matched is false when the menu does not know the action;
	// a matched selection may still yield nothing.
	Select(action string, payload message.Payload) (seq iter.Seq2[message.Result, error], matched bool, err error)
	// Message renders the menu for payload.
	Message(payload message.Payload) (*message.Message, error)
	// Enter runs when a user lands on the menu. A nil message means nothing to emit.
	Enter(payload message.Payload) (*message.Message, error)
	// HasAlias reports whether action, case-insensitively, opens this menu from anywhere.
	HasAlias(action string) bool
	// Aliases lists the normalised aliases.
	Aliases() []string
}

// EnterFunc is a hook run when a user lands on a menu.
type EnterFunc func(payload message.Payload) (*message.Message, error)

type aliasSet []string

func newAliasSet(aliases []string) aliasSet {
	var out aliasSet
	seen := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		a = normalizeAlias(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func (s aliasSet) has(action string) bool {
	action = normalizeAlias(action)
	for _, a := range s {
		if a == action {
			return true
		}
	}
	return false
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func single(res message.Result, err error) iter.Seq2[message.Result, error] {
	return func(yield func(message.Result, error) bool) {
		yield(res, err)
	}
}

func empty() iter.Seq2[message.Result, error] {
	return func(func(message.Result, error) bool) {}
}
