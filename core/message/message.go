// Package message holds what the navigation engine emits: renderable messages and
// control responses that switch menus or rewind history.
package message

import (
	"fmt"

	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/state"
)

// Result is produced by actions: either a *Message or a *Response.
type Result interface {
	// Bind returns a copy that renders against payload p.
	Bind(p Payload) Result
	isResult()
}

// Message is content plus an optional keyboard, rendered against its payload.
type Message struct {
	Content  *Content
	Keyboard *keyboard.Keyboard
	Payload  Payload
}

// New returns a message with a text body.
func New(text string) *Message {
	return &Message{Content: Text(text)}
}

// Rendered formats the content fields against the message payload.
func (m *Message) Rendered() (map[string]any, error) {
	if m == nil || m.Content == nil {
		return map[string]any{}, nil
	}
	return m.Content.Render(m.Payload)
}

// Text returns the rendered text field, or "" when the message has none.
func (m *Message) Text() (string, error) {
	if m == nil || m.Content == nil {
		return "", nil
	}
	raw, ok := m.Content.Get(TextField)
	if !ok {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Sprint(raw), nil
	}
	return Format(s, m.Payload)
}

// WithPayload returns a shallow copy of m that renders against p.
func (m *Message) WithPayload(p Payload) *Message {
	if m == nil {
		return nil
	}
	out := *m
	out.Payload = p
	return &out
}

// Bind implements Result.
func (m *Message) Bind(p Payload) Result {
	return m.WithPayload(p)
}

func (*Message) isResult() {}

// Response is a control instruction. Message is emitted first, then GoBack is applied,
// then the Menu switch. Zero values mean "nothing to do" for each field.
type Response struct {
	Message *Message
	Menu    string
	GoBack  state.BackCount
}

// WithPayload returns a copy whose message renders against p.
func (r *Response) WithPayload(p Payload) *Response {
	if r == nil {
		return nil
	}
	out := *r
	out.Message = r.Message.WithPayload(p)
	return &out
}

// Bind implements Result.
func (r *Response) Bind(p Payload) Result {
	return r.WithPayload(p)
}

func (*Response) isResult() {}
