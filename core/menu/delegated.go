package menu

import (
	"errors"
	"iter"

	"github.com/m3rciful/navmenu/core/message"
)

// Handler implements a menu's behaviour in code.
// Select returns ErrNoMatch when it does not recognise the action.
type Handler interface {
	Select(action string, payload message.Payload) ([]message.Result, error)
	Message(payload message.Payload) (*message.Message, error)
	Enter(payload message.Payload) (*message.Message, error)
}

// Delegated forwards everything to a Handler.
type Delegated struct {
	handler Handler
	aliases aliasSet
}

// NewDelegated wraps h. aliases behave as in WithAliases.
func NewDelegated(h Handler, aliases ...string) *Delegated {
	return &Delegated{handler: h, aliases: newAliasSet(aliases)}
}

// Select implements Menu.
func (d *Delegated) Select(act string, payload message.Payload) (iter.Seq2[message.Result, error], bool, error) {
	results, err := d.handler.Select(act, payload)
	if errors.Is(err, ErrNoMatch) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return func(yield func(message.Result, error) bool) {
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}, true, nil
}

// Message implements Menu.
func (d *Delegated) Message(payload message.Payload) (*message.Message, error) {
	return d.handler.Message(payload)
}

// Enter implements Menu.
func (d *Delegated) Enter(payload message.Payload) (*message.Message, error) {
	return d.handler.Enter(payload)
}

// HasAlias implements Menu.
func (d *Delegated) HasAlias(act string) bool { return d.aliases.has(act) }

// Aliases implements Menu.
func (d *Delegated) Aliases() []string { return append([]string(nil), d.aliases...) }
