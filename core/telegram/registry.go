package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/telegram/commands"
)

// ErrInvalidRegistration is returned for commands or callbacks missing a name or handler.
var ErrInvalidRegistration = errors.New("telegram: invalid registration")

// Registry holds bot commands, callbacks and fallbacks. Commands keep their
// registration order, which is also the order shown in the Telegram command menu.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	order            []string
	callbacks        map[string]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry with default fallbacks.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "This button is no longer available"})
		},
	}
}

// RegisterCommand adds a slash command. Names are case-insensitive.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case cmd.Handler == nil || cmd.Description == "":
		return r.rejectCommand(name, "invalid", ErrInvalidRegistration)
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return r.rejectCommand(name, "no_slash_prefix", ErrInvalidRegistration)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return r.rejectCommand(name, "duplicate", fmt.Errorf("command already registered: %s", name))
	}
	r.commands[name] = cmd
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) rejectCommand(name, reason string, err error) error {
	logger.Warn(context.Background(), "tg.wire", "register.command.skip",
		slog.String("name", name),
		slog.String("reason", reason),
	)
	return fmt.Errorf("command %q: %w", name, err)
}

// CommandNames returns command names in registration order.
func (r *Registry) CommandNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Command returns the command registered under name.
func (r *Registry) Command(name string) (commands.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// ListCommands returns commands for the Telegram command menu, optionally
// without hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]tele.Command, 0, len(r.order))
	for _, name := range r.order {
		meta := r.commands[name]
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: name, Description: meta.Description})
	}
	return list
}

// LookupCommand resolves slash-prefixed text to a command by name or alias and
// returns its canonical name. Arguments and a trailing @botname are ignored;
// text without a slash never matches so plain words stay available to menus.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", commands.Command{}, false
	}
	name := strings.ToLower(fields[0])
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for _, key := range r.order {
		if cmd := r.commands[key]; cmd.HasAlias(name) {
			return key, cmd, true
		}
	}
	return "", commands.Command{}, false
}

// RegisterCallback maps a callback unique to its handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		logger.Warn(context.Background(), "tg.wire", "register.callback.skip",
			slog.String("key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return fmt.Errorf("callback %q: %w", key, ErrInvalidRegistration)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		logger.Warn(context.Background(), "tg.wire", "register.callback.duplicate",
			slog.String("key", key),
		)
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns sorted keys (for diagnostics).
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCallbackNotFound replaces the fallback handler for unknown callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h == nil {
		return
	}
	r.mu.Lock()
	r.callbackNotFound = h
	r.mu.Unlock()
}

// CallbackNotFound returns the current fallback callback handler.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text that is not a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	r.textFallback = h
	r.mu.Unlock()
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.Error(context.Background(), "tg.wire", "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
