package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/menu"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/state"
)

const logComponent = "nav"

// Manager owns the menu registry and the state store.
type Manager struct {
	menus   *menu.Registry
	store   state.Store
	aliases bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithoutAliases disables alias lookup when the current menu does not match an action.
func WithoutAliases() Option {
	return func(m *Manager) { m.aliases = false }
}

// New returns a manager. The store's default state must be a registered menu.
func New(menus *menu.Registry, store state.Store, opts ...Option) (*Manager, error) {
	if menus == nil || store == nil {
		return nil, fmt.Errorf("navigator: registry and store are required")
	}
	if _, ok := menus.Lookup(store.DefaultState()); !ok {
		return nil, fmt.Errorf("%w: default state %q", ErrUnknownMenu, store.DefaultState())
	}
	m := &Manager{menus: menus, store: store, aliases: true}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Store returns the state store.
func (m *Manager) Store() state.Store { return m.store }

// Current returns the name of the user's current menu.
func (m *Manager) Current(ctx context.Context, userID int64) (string, error) {
	return m.store.Get(ctx, userID)
}

// Message renders the user's current menu. It never changes state.
func (m *Manager) Message(ctx context.Context, userID int64, payload message.Payload) (*message.Message, error) {
	name, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	mn, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return mn.Message(payload)
}

// Transition is the outcome of one selection. From and To are the menus before
// and after it, read under the user's lock. Landing is the rendered To menu when
// it differs from From.
type Transition struct {
	Messages []*message.Message
	From     string
	To       string
	Landing  *message.Message
}

// Changed reports whether the user ended on another menu.
func (t Transition) Changed() bool { return t.From != t.To }

// Select applies action for the user and returns the messages to send, in order.
//
// Effects already applied before a failure are kept; the error reports where it stopped.
func (m *Manager) Select(ctx context.Context, userID int64, act string, payload message.Payload) ([]*message.Message, error) {
	t, err := m.Apply(ctx, userID, act, payload)
	return t.Messages, err
}

// Apply is Select that also reports the menus the user moved between and renders
// the landing menu, all while holding the user's lock.
func (m *Manager) Apply(ctx context.Context, userID int64, act string, payload message.Payload) (Transition, error) {
	start := time.Now()
	unlock, err := m.store.Lock(ctx, userID)
	if err != nil {
		return Transition{}, err
	}
	defer unlock()

	current, err := m.store.Get(ctx, userID)
	if err != nil {
		return Transition{}, err
	}
	ctx = logger.WithMenu(ctx, current)
	t := Transition{From: current, To: current}
	fail := func(err error) (Transition, error) {
		if to, gerr := m.store.Get(ctx, userID); gerr == nil {
			t.To = to
		}
		return t, &SelectError{UserID: userID, Menu: current, Action: act, Err: err}
	}

	var via string
	if t.Messages, via, err = m.run(ctx, userID, current, act, payload); err != nil {
		return fail(err)
	}
	if t.To, err = m.store.Get(ctx, userID); err != nil {
		return fail(err)
	}
	if t.Changed() {
		landing, err := m.lookup(t.To)
		if err != nil {
			return fail(err)
		}
		if t.Landing, err = landing.Message(payload); err != nil {
			return fail(err)
		}
	}
	m.logSelect(ctx, userID, t, act, via, start)
	return t, nil
}

// run resolves act against the current menu, falling back to aliases, and applies
// the results in order. via names how the action matched.
func (m *Manager) run(ctx context.Context, userID int64, current, act string, payload message.Payload) ([]*message.Message, string, error) {
	mn, err := m.lookup(current)
	if err != nil {
		return nil, "", err
	}
	seq, matched, err := mn.Select(act, payload)
	if err != nil {
		return nil, "", err
	}

	var out []*message.Message
	if !matched {
		target, ok := m.resolveAlias(act)
		if !ok {
			logger.Debug(ctx, logComponent, "select.invalid",
				slog.Int64("user_id", userID),
				slog.String("menu", current),
				slog.String("action", act),
			)
			return nil, "", ErrInvalidAction
		}
		out, err = m.switchTo(ctx, userID, target, payload, out)
		return out, "alias", err
	}

	for res, err := range seq {
		if err != nil {
			return out, "item", err
		}
		if out, err = m.apply(ctx, userID, res, payload, out); err != nil {
			return out, "item", err
		}
	}
	return out, "item", nil
}

func (m *Manager) apply(ctx context.Context, userID int64, res message.Result, payload message.Payload, out []*message.Message) ([]*message.Message, error) {
	switch r := res.(type) {
	case *message.Message:
		if r != nil {
			out = append(out, r)
		}
	case *message.Response:
		if r == nil {
			return out, nil
		}
		if r.Message != nil {
			out = append(out, r.Message)
		}
		if r.GoBack != 0 {
			var err error
			if out, err = m.goBack(ctx, userID, r.GoBack, payload, out); err != nil {
				return out, err
			}
		}
		if r.Menu != "" {
			return m.switchTo(ctx, userID, r.Menu, payload, out)
		}
	}
	return out, nil
}

func (m *Manager) switchTo(ctx context.Context, userID int64, name string, payload message.Payload, out []*message.Message) ([]*message.Message, error) {
	target, err := m.lookup(name)
	if err != nil {
		return out, err
	}
	if err := m.store.Set(ctx, userID, name); err != nil {
		return out, err
	}
	return m.enter(target, payload, out)
}

func (m *Manager) goBack(ctx context.Context, userID int64, count state.BackCount, payload message.Payload, out []*message.Message) ([]*message.Message, error) {
	prev, err := m.store.Get(ctx, userID)
	if err != nil {
		return out, err
	}
	before, err := m.store.History(ctx, userID)
	if err != nil {
		return out, err
	}
	if err := m.store.GoBack(ctx, userID, count); err != nil {
		return out, err
	}
	name, err := m.store.Get(ctx, userID)
	if err != nil {
		return out, err
	}
	after, err := m.store.History(ctx, userID)
	if err != nil {
		return out, err
	}
	// Nothing to rewind: no menu was entered.
	if name == prev && len(after) == len(before) {
		return out, nil
	}
	target, err := m.lookup(name)
	if err != nil {
		return out, err
	}
	return m.enter(target, payload, out)
}

func (m *Manager) enter(target menu.Menu, payload message.Payload, out []*message.Message) ([]*message.Message, error) {
	msg, err := target.Enter(payload)
	if err != nil {
		return out, fmt.Errorf("enter: %w", err)
	}
	if msg != nil {
		out = append(out, msg)
	}
	return out, nil
}

func (m *Manager) lookup(name string) (menu.Menu, error) {
	mn, ok := m.menus.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMenu, name)
	}
	return mn, nil
}

func (m *Manager) resolveAlias(act string) (string, bool) {
	if !m.aliases {
		return "", false
	}
	name, _, ok := m.menus.ResolveAlias(act)
	return name, ok
}

func (m *Manager) logSelect(ctx context.Context, userID int64, t Transition, act, via string, start time.Time) {
	if !logger.ShouldSampleDebug() {
		return
	}
	logger.Debug(ctx, logComponent, "select",
		slog.Int64("user_id", userID),
		slog.String("from", t.From),
		slog.String("to", t.To),
		slog.String("action", act),
		slog.String("via", via),
		slog.Int("messages", len(t.Messages)),
		slog.Duration("duration_ms", logger.Took(start)),
	)
}
