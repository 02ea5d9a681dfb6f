package menu

import (
	"fmt"
	"iter"
	"sync"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/message"
)

// Static is a menu declared as content plus an ordered list of items.
type Static struct {
	content       *message.Content
	defaultAction action.Action
	aliases       aliasSet
	enter         EnterFunc
	mutable       bool

	mu    sync.RWMutex
	items []item.Item
}

// Option configures a Static menu.
type Option func(*Static)

// WithDefaultAction runs a when no item matches the selected action.
func WithDefaultAction(a action.Action) Option {
	return func(s *Static) { s.defaultAction = a }
}

// WithAliases lets the given commands open the menu from any other menu.
func WithAliases(aliases ...string) Option {
	return func(s *Static) { s.aliases = newAliasSet(aliases) }
}

// WithMutableItems allows AddItem after construction.
func WithMutableItems() Option {
	return func(s *Static) { s.mutable = true }
}

// WithEnter sets the hook run when a user lands on the menu.
func WithEnter(fn EnterFunc) Option {
	return func(s *Static) { s.enter = fn }
}

// NewStatic builds a static menu.
func NewStatic(content *message.Content, items []item.Item, opts ...Option) *Static {
	s := &Static{content: content, items: append([]item.Item(nil), items...)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItem appends it to the menu.
func (s *Static) AddItem(it item.Item) error {
	if !s.mutable {
		return ErrImmutableItems
	}
	s.mu.Lock()
	s.items = append(s.items, it)
	s.mu.Unlock()
	return nil
}

// Content returns the raw menu content.
func (s *Static) Content() *message.Content { return s.content }

// DefaultAction returns the action run when no item matches, or nil.
func (s *Static) DefaultAction() action.Action { return s.defaultAction }

// Mutable reports whether AddItem is allowed.
func (s *Static) Mutable() bool { return s.mutable }

// Items returns a snapshot of the item list.
func (s *Static) Items() []item.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]item.Item(nil), s.items...)
}

// Select implements Menu. The first available item named action wins.
func (s *Static) Select(act string, payload message.Payload) (iter.Seq2[message.Result, error], bool, error) {
	for _, it := range s.Items() {
		if item.IsLineBreak(it) || it.Name() != act {
			continue
		}
		ok, err := it.Available(payload)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return it.OnSelect(payload), true, nil
		}
	}
	if s.defaultAction != nil {
		return single(s.defaultAction.Process(payload)), true, nil
	}
	return nil, false, nil
}

// Message implements Menu. Hidden items are skipped; line breaks start a new line.
func (s *Static) Message(payload message.Payload) (*message.Message, error) {
	kb := &keyboard.Keyboard{}
	for _, it := range s.Items() {
		ok, err := it.Available(payload)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if item.IsLineBreak(it) {
			kb.AddLine()
			continue
		}
		b, render, err := it.Button(payload)
		if err != nil {
			return nil, err
		}
		if render {
			kb.AddButton(b)
		}
	}
	msg := &message.Message{Content: s.content, Keyboard: kb, Payload: payload}
	if _, err := msg.Rendered(); err != nil {
		return nil, fmt.Errorf("menu content: %w", err)
	}
	return msg, nil
}

// Enter implements Menu.
func (s *Static) Enter(payload message.Payload) (*message.Message, error) {
	if s.enter == nil {
		return nil, nil
	}
	return s.enter(payload)
}

// HasAlias implements Menu.
func (s *Static) HasAlias(act string) bool { return s.aliases.has(act) }

// Aliases implements Menu.
func (s *Static) Aliases() []string { return append([]string(nil), s.aliases...) }
