// Package navigation connects Telegram updates to the menu navigator: typed text and
// inline button presses become transport updates, and replies are sent back in order.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	tg "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/telegram/callbacks"
	"github.com/m3rciful/navmenu/core/telegram/commands"
	tghelpers "github.com/m3rciful/navmenu/core/telegram/helpers"
	tgkeyboard "github.com/m3rciful/navmenu/core/telegram/keyboard"
	"github.com/m3rciful/navmenu/core/transport"
)

// DefaultEmptyText replaces the body of replies that only carry a keyboard,
// since Telegram rejects messages without text.
const DefaultEmptyText = "Choose an option:"

// Options tune the handler.
type Options struct {
	EmptyText string
}

// Handler serves menus over Telegram.
type Handler struct {
	proc *transport.Processor
	opts Options
}

// New returns a handler driving proc.
func New(proc *transport.Processor, opts Options) *Handler {
	if opts.EmptyText == "" {
		opts.EmptyText = DefaultEmptyText
	}
	return &Handler{proc: proc, opts: opts}
}

// Register wires the menu commands, the nav callback and the text fallback into reg.
func (h *Handler) Register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.Start, Description: "Return to the main menu"}},
		{"/menu", commands.Command{Handler: h.Menu, Description: "Show the current menu"}},
		{"/where", commands.Command{Handler: h.Where, Description: "Show navigation history", AdminOnly: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}
	reg.SetTextFallback(h.Text)
	return reg.RegisterCallback(tgkeyboard.NavUnique, h.Callback)
}

// Text handles typed input: the text is matched against item names and aliases.
func (h *Handler) Text(c tele.Context) error {
	u := h.update(c)
	u.Text = strings.TrimSpace(c.Text())
	return h.process(c, u)
}

// Callback handles inline button presses carrying the item name as payload.
func (h *Handler) Callback(c tele.Context) error {
	u := h.update(c)
	u.Action = callbacks.CallbackPayload(c)
	u.Text = u.Action
	if u.Action == "" {
		return nil
	}
	return h.process(c, u)
}

// Start sends the user back to the root menu.
func (h *Handler) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.proc.Reset(ctx, h.update(c))
	return h.deliver(ctx, c, replies, err)
}

// Menu re-renders the user's current menu, greeting first-time users.
func (h *Handler) Menu(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.proc.Open(ctx, h.update(c))
	return h.deliver(ctx, c, replies, err)
}

// Where reports the sender's current menu and history.
func (h *Handler) Where(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := senderID(c)
	store := h.proc.Manager().Store()
	current, err := store.Get(ctx, userID)
	if err != nil {
		return err
	}
	history, err := store.History(ctx, userID)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("menu: %s", current)
	if len(history) > 0 {
		text += "\nhistory: " + strings.Join(history, " > ")
	}
	return tghelpers.SendText(c, text)
}

func (h *Handler) process(c tele.Context, u transport.Update) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := h.proc.Process(ctx, u)
	return h.deliver(ctx, c, replies, err)
}

// deliver sends replies in order even when processing failed, so users see the
// error text, and then reports the processing error.
func (h *Handler) deliver(ctx context.Context, c tele.Context, replies []transport.Reply, procErr error) error {
	var sendErr error
	for _, r := range replies {
		if err := h.send(ctx, c, r); err != nil {
			sendErr = err
			break
		}
	}
	return errors.Join(procErr, sendErr)
}

func (h *Handler) send(ctx context.Context, c tele.Context, r transport.Reply) error {
	markup, skipped := tgkeyboard.FromMenu(r.Keyboard)
	if len(skipped) > 0 {
		logger.Warn(ctx, "tg", "keyboard.skip",
			slog.String("reason", "callback_data_too_long"),
			slog.Int("count", len(skipped)),
		)
	}
	text := r.Text
	if strings.TrimSpace(text) == "" {
		if markup == nil {
			return nil
		}
		text = h.opts.EmptyText
	}
	return tghelpers.SendFormatted(c, text, tghelpers.ParseMode(r.Fields[tghelpers.ParseModeField]), markup)
}

func (h *Handler) update(c tele.Context) transport.Update {
	return transport.Update{
		UserID:  senderID(c),
		Payload: tghelpers.UserPayload(c),
	}
}

func senderID(c tele.Context) int64 {
	if user := c.Sender(); user != nil {
		return user.ID
	}
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}
