// Package item defines the selectable entries of a static menu.
package item

import (
	"fmt"
	"iter"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/message"
)

// Item is one entry of a static menu.
type Item interface {
	// Name is the action string that selects the item.
	Name() string
	// Available reports whether the item is shown and selectable for payload.
	Available(payload message.Payload) (bool, error)
	// OnSelect yields one result per configured action, in declaration order.
	OnSelect(payload message.Payload) iter.Seq2[message.Result, error]
	// Button renders the item. ok is false for items that do not render a button.
	Button(payload message.Payload) (b keyboard.Button, ok bool, err error)
}

// Content renders the visible part of an item.
type Content interface {
	Button(name string, payload message.Payload) (keyboard.Button, error)
}

// TextContent is a labelled button. The label is formatted against the payload.
type TextContent struct {
	Text  string
	Color keyboard.Color
}

// Button implements Content.
func (c TextContent) Button(name string, payload message.Payload) (keyboard.Button, error) {
	text, err := message.Format(c.Text, payload)
	if err != nil {
		return keyboard.Button{}, fmt.Errorf("item %q: %w", name, err)
	}
	return keyboard.Button{Payload: name, Text: text, Color: c.Color}, nil
}

// Entry is a regular item that runs its actions when selected.
type Entry struct {
	name    string
	content Content
	actions []action.Action
}

// New returns an entry. A nil content renders a button labelled with the name.
func New(name string, content Content, actions ...action.Action) *Entry {
	if content == nil {
		content = TextContent{Text: name}
	}
	return &Entry{name: name, content: content, actions: actions}
}

// Text is shorthand for New with a TextContent label.
func Text(name, label string, actions ...action.Action) *Entry {
	return New(name, TextContent{Text: label}, actions...)
}

// Name implements Item.
func (e *Entry) Name() string { return e.name }

// Content returns the entry's label.
func (e *Entry) Content() Content { return e.content }

// Actions returns the configured actions.
func (e *Entry) Actions() []action.Action {
	return append([]action.Action(nil), e.actions...)
}

// Available implements Item.
func (e *Entry) Available(message.Payload) (bool, error) { return true, nil }

// OnSelect implements Item. Actions run lazily as the sequence is consumed.
func (e *Entry) OnSelect(payload message.Payload) iter.Seq2[message.Result, error] {
	return func(yield func(message.Result, error) bool) {
		for _, a := range e.actions {
			res, err := a.Process(payload)
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// Button implements Item.
func (e *Entry) Button(payload message.Payload) (keyboard.Button, bool, error) {
	b, err := e.content.Button(e.name, payload)
	if err != nil {
		return keyboard.Button{}, false, err
	}
	return b, true, nil
}

// LineBreak starts a new keyboard line. It is never selectable.
type LineBreak struct{}

// NewLineBreak returns a line break item.
func NewLineBreak() LineBreak { return LineBreak{} }

// Name implements Item.
func (LineBreak) Name() string { return "" }

// Available implements Item.
func (LineBreak) Available(message.Payload) (bool, error) { return true, nil }

// OnSelect implements Item.
func (LineBreak) OnSelect(message.Payload) iter.Seq2[message.Result, error] {
	return func(func(message.Result, error) bool) {}
}

// Button implements Item.
func (LineBreak) Button(message.Payload) (keyboard.Button, bool, error) {
	return keyboard.Button{}, false, nil
}

// Predicate decides whether a conditional item is available.
type Predicate func(payload message.Payload) (bool, error)

// Conditional is an entry gated by a predicate evaluated on every request.
type Conditional struct {
	*Entry
	predicate Predicate
}

// NewConditional wraps an entry with a predicate.
func NewConditional(entry *Entry, predicate Predicate) *Conditional {
	return &Conditional{Entry: entry, predicate: predicate}
}

// Available implements Item. Predicate errors are returned to the caller.
func (c *Conditional) Available(payload message.Payload) (bool, error) {
	if c.predicate == nil {
		return true, nil
	}
	ok, err := c.predicate(payload)
	if err != nil {
		return false, fmt.Errorf("item %q: condition: %w", c.Name(), err)
	}
	return ok, nil
}

// IsLineBreak reports whether it only separates keyboard lines.
func IsLineBreak(it Item) bool {
	_, ok := it.(LineBreak)
	return ok
}
