// Package transport turns inbound chat updates into ordered replies. Chat adapters
// (console, Telegram) only translate their wire formats to Update and Reply.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
)

const (
	// DefaultInvalidText is sent when an action is not recognised.
	DefaultInvalidText = "Invalid command"
	// DefaultErrorText is sent when processing fails for any other reason.
	DefaultErrorText = "Something went wrong. Please try again later."
	// DefaultSuggestText formats the suggestion line; {suggestions} is a comma separated list.
	DefaultSuggestText = "Did you mean: {suggestions}?"
)

// Update is one inbound user interaction.
type Update struct {
	UserID int64
	// Text is what the user typed, or the pressed button's label.
	Text string
	// Action is the pressed button's payload. Empty for typed text.
	Action  string
	Payload message.Payload
}

// Reply is a rendered message ready for a chat adapter.
type Reply struct {
	Text     string
	Fields   map[string]any
	Keyboard *keyboard.Keyboard
}

// Options tune user-facing texts.
type Options struct {
	InvalidText string
	ErrorText   string
	// WelcomeText, when set, precedes the menu on first contact.
	WelcomeText string
	SuggestText string
	// Suggestions is the max number of "did you mean" hints; 0 disables them.
	Suggestions int
}

func (o Options) withDefaults() Options {
	if o.InvalidText == "" {
		o.InvalidText = DefaultInvalidText
	}
	if o.ErrorText == "" {
		o.ErrorText = DefaultErrorText
	}
	if o.SuggestText == "" {
		o.SuggestText = DefaultSuggestText
	}
	return o
}

// Processor drives a navigator.Manager for chat adapters.
type Processor struct {
	nav  *navigator.Manager
	opts Options
}

// New returns a processor.
func New(nav *navigator.Manager, opts Options) *Processor {
	return &Processor{nav: nav, opts: opts.withDefaults()}
}

// Manager returns the underlying navigator.
func (p *Processor) Manager() *navigator.Manager { return p.nav }

// Process handles one update. Invalid actions produce a reply and no error. Any other
// failure is logged and answered with the generic error text; the error is returned so
// callers can record it.
func (p *Processor) Process(ctx context.Context, u Update) ([]Reply, error) {
	start := time.Now()
	ctx = logger.WithUser(ctx, u.UserID)
	payload := requestPayload(u)
	act := u.Action
	if act == "" {
		act = u.Text
	}

	created, err := p.nav.Store().Create(ctx, u.UserID)
	if err != nil {
		return p.fail(ctx, u, "update.create", err)
	}
	if created {
		logger.Info(ctx, "nav", "user.created", slog.Int64("user_id", u.UserID))
		return p.greet(ctx, u, payload, true)
	}

	t, err := p.nav.Apply(ctx, u.UserID, act, payload)
	if errors.Is(err, navigator.ErrInvalidAction) {
		return []Reply{p.invalid(ctx, u.UserID, act, payload)}, nil
	}
	if err != nil {
		return p.fail(ctx, u, "update.select", err)
	}

	msgs := t.Messages
	if t.Landing != nil {
		msgs = append(msgs, t.Landing)
	}
	replies := make([]Reply, 0, len(msgs))
	for _, msg := range msgs {
		r, err := Render(msg)
		if err != nil {
			return p.fail(ctx, u, "update.render", err)
		}
		if r.Text == "" && r.Keyboard.Empty() && len(r.Fields) == 0 {
			continue
		}
		replies = append(replies, r)
	}

	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "nav", "update",
			slog.Int64("user_id", u.UserID),
			slog.String("action", act),
			slog.String("from", t.From),
			slog.String("menu", t.To),
			slog.Int("messages", len(replies)),
			slog.Duration("duration_ms", logger.Took(start)),
		)
	}
	return replies, nil
}

// Menu renders the user's current menu.
func (p *Processor) Menu(ctx context.Context, userID int64, payload message.Payload) (Reply, error) {
	msg, err := p.nav.Message(ctx, userID, payload)
	if err != nil {
		return Reply{}, err
	}
	return Render(msg)
}

// Open registers the user if needed and renders the current menu, preceded by the
// welcome text on first contact.
func (p *Processor) Open(ctx context.Context, u Update) ([]Reply, error) {
	created, err := p.nav.Store().Create(ctx, u.UserID)
	if err != nil {
		return p.fail(ctx, u, "update.create", err)
	}
	return p.greet(ctx, u, requestPayload(u), created)
}

func (p *Processor) greet(ctx context.Context, u Update, payload message.Payload, welcome bool) ([]Reply, error) {
	var replies []Reply
	if welcome && p.opts.WelcomeText != "" {
		r, err := Render(&message.Message{Content: message.Text(p.opts.WelcomeText), Payload: payload})
		if err != nil {
			return p.fail(ctx, u, "update.welcome", err)
		}
		replies = append(replies, r)
	}
	r, err := p.Menu(ctx, u.UserID, payload)
	if err != nil {
		return p.fail(ctx, u, "update.menu", err)
	}
	return append(replies, r), nil
}

// Reset sends the user back to the root menu and renders it.
func (p *Processor) Reset(ctx context.Context, u Update) ([]Reply, error) {
	payload := requestPayload(u)
	store := p.nav.Store()
	unlock, err := store.Lock(ctx, u.UserID)
	if err != nil {
		return p.fail(ctx, u, "update.reset", err)
	}
	if _, err := store.Create(ctx, u.UserID); err != nil {
		unlock()
		return p.fail(ctx, u, "update.reset", err)
	}
	err = store.GoBack(ctx, u.UserID, state.BackToRoot)
	unlock()
	if err != nil {
		return p.fail(ctx, u, "update.reset", err)
	}
	r, err := p.Menu(ctx, u.UserID, payload)
	if err != nil {
		return p.fail(ctx, u, "update.reset", err)
	}
	return []Reply{r}, nil
}

func (p *Processor) invalid(ctx context.Context, userID int64, act string, payload message.Payload) Reply {
	text := p.opts.InvalidText
	if p.opts.Suggestions > 0 {
		hints, err := p.nav.Suggest(ctx, userID, act, payload, p.opts.Suggestions)
		if err != nil {
			logger.Warn(ctx, "nav", "suggest.failed",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		if len(hints) > 0 {
			labels := make([]string, len(hints))
			for i, h := range hints {
				labels[i] = h.Label
			}
			line, err := message.Format(p.opts.SuggestText, message.Payload{"suggestions": strings.Join(labels, ", ")})
			if err == nil {
				text += "\n" + line
			}
		}
	}
	logger.Debug(ctx, "nav", "update.invalid",
		slog.Int64("user_id", userID),
		slog.String("action", act),
	)
	return Reply{Text: text}
}

func (p *Processor) fail(ctx context.Context, u Update, event string, err error) ([]Reply, error) {
	attrs := []slog.Attr{
		slog.Int64("user_id", u.UserID),
		slog.String("action", u.Action),
		slog.String("err", err.Error()),
	}
	var selErr *navigator.SelectError
	if errors.As(err, &selErr) {
		attrs = append(attrs, slog.String("menu", selErr.Menu))
	}
	logger.Error(ctx, "nav", event, attrs...)
	return []Reply{{Text: p.opts.ErrorText}}, err
}

func requestPayload(u Update) message.Payload {
	payload := u.Payload.Clone()
	payload["user_id"] = u.UserID
	payload["text"] = u.Text
	return payload
}

// Render flattens a message into a Reply.
func Render(msg *message.Message) (Reply, error) {
	fields, err := msg.Rendered()
	if err != nil {
		return Reply{}, err
	}
	text, _ := fields[message.TextField].(string)
	delete(fields, message.TextField)
	var kb *keyboard.Keyboard
	if msg != nil {
		kb = msg.Keyboard
	}
	return Reply{Text: text, Fields: fields, Keyboard: kb}, nil
}
