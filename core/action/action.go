// Package action implements the operations a menu item can trigger.
package action

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/state"
)

// ErrUnknownActionResult is returned when a callback yields something that is neither a
// message, a response nor a declared template case.
var ErrUnknownActionResult = errors.New("action: unknown callback result")

// Action turns a request payload into a message or a response.
type Action interface {
	Process(payload message.Payload) (message.Result, error)
}

// Message emits a plain text message rendered against the request payload.
type Message struct {
	Text string
}

// NewMessage returns an action that replies with text.
func NewMessage(text string) *Message {
	return &Message{Text: text}
}

// Process implements Action.
func (a *Message) Process(payload message.Payload) (message.Result, error) {
	return &message.Message{Content: message.Text(a.Text), Payload: payload}, nil
}

// Submenu switches the user to another menu. The name is checked when applied.
type Submenu struct {
	Menu string
}

// NewSubmenu returns an action that opens menu.
func NewSubmenu(menu string) *Submenu {
	return &Submenu{Menu: menu}
}

// Process implements Action.
func (a *Submenu) Process(message.Payload) (message.Result, error) {
	return &message.Response{Menu: a.Menu}, nil
}

// GoBack rewinds the user's history.
type GoBack struct {
	Count state.BackCount
}

// NewGoBack returns an action that goes back count steps.
func NewGoBack(count state.BackCount) *GoBack {
	return &GoBack{Count: count}
}

// Process implements Action. A zero or otherwise invalid count is an error.
func (a *GoBack) Process(message.Payload) (message.Result, error) {
	if err := a.Count.Validate(); err != nil {
		return nil, fmt.Errorf("action: go back: %w", err)
	}
	return &message.Response{GoBack: a.Count}, nil
}

// Func is business logic behind a Function action. It returns either a message.Result
// or a comparable case key looked up in the action's templates.
type Func func(payload message.Payload) (any, error)

// Function runs a callback and binds the request payload into whatever it produced.
type Function struct {
	Name      string
	fn        Func
	templates map[string]message.Result
}

// NewFunction wraps fn. templates maps callback case keys to prepared results.
// Keys are compared by their printed form, so 1, int64(1) and "1" are the same case.
func NewFunction(name string, fn Func, templates map[any]message.Result) *Function {
	norm := make(map[string]message.Result, len(templates))
	for k, v := range templates {
		if key, ok := CaseKey(k); ok {
			norm[key] = v
		}
	}
	return &Function{Name: name, fn: fn, templates: norm}
}

// CaseKey returns the normalized template key for v. Only non-nil comparable values
// have one.
func CaseKey(v any) (string, bool) {
	if v == nil || !reflect.TypeOf(v).Comparable() {
		return "", false
	}
	return fmt.Sprint(v), true
}

// Templates returns the declared case keys, normalized, and their results.
func (a *Function) Templates() map[string]message.Result {
	out := make(map[string]message.Result, len(a.templates))
	for k, v := range a.templates {
		out[k] = v
	}
	return out
}

// Process implements Action.
func (a *Function) Process(payload message.Payload) (message.Result, error) {
	if a.fn == nil {
		return nil, fmt.Errorf("action: function %q has no callback", a.Name)
	}
	if payload == nil {
		payload = message.Payload{}
	}
	res, err := a.fn(payload)
	if err != nil {
		return nil, fmt.Errorf("action: function %q: %w", a.Name, err)
	}

	switch r := res.(type) {
	case *message.Message:
		if r != nil {
			return r.Bind(payload), nil
		}
	case *message.Response:
		if r != nil {
			return r.Bind(payload), nil
		}
	}

	if key, ok := CaseKey(res); ok {
		if tmpl, ok := a.templates[key]; ok && tmpl != nil {
			return tmpl.Bind(payload), nil
		}
	}
	return nil, fmt.Errorf("%w: function %q returned %T(%v)", ErrUnknownActionResult, a.Name, res, res)
}
