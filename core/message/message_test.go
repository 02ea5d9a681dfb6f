package message

import (
	"errors"
	"testing"

	"github.com/m3rciful/navmenu/core/state"
)

func TestFormat(t *testing.T) {
	payload := Payload{"user_id": 123, "name": "Ann"}
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"user {user_id}", "user 123"},
		{"{name} and {name}", "Ann and Ann"},
		{"{{literal}} {name}", "{literal} Ann"},
		{"close }}", "close }"},
		{"", ""},
	}
	for _, tc := range cases {
		got, err := Format(tc.in, payload)
		if err != nil {
			t.Fatalf("Format(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatErrors(t *testing.T) {
	cases := map[string]error{
		"hello {missing}": ErrMissingKey,
		"open {name":      ErrBadTemplate,
		"stray } brace":   ErrBadTemplate,
		"empty {}":        ErrBadTemplate,
	}
	for in, want := range cases {
		if _, err := Format(in, Payload{"name": "x"}); !errors.Is(err, want) {
			t.Errorf("Format(%q) err = %v, want %v", in, err, want)
		}
	}
}

func TestMessageWithPayload(t *testing.T) {
	msg := &Message{Content: Text("message {user_id}"), Payload: Payload{"user_id": 123}}
	text, err := msg.Text()
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "message 123" {
		t.Fatalf("Text = %q", text)
	}
}

func TestMessageTextMissingKeyIsHardError(t *testing.T) {
	msg := New("hello {name}")
	if _, err := msg.Text(); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("err = %v, want ErrMissingKey", err)
	}
}

func TestContentRenderLeavesNonStrings(t *testing.T) {
	c := NewContent(
		Field{Key: TextField, Value: "hi {n}"},
		Field{Key: "count", Value: 5},
	)
	got, err := c.Render(Payload{"n": "bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got[TextField] != "hi bob" {
		t.Fatalf("text = %v", got[TextField])
	}
	if got["count"] != 5 {
		t.Fatalf("count = %v", got["count"])
	}
	if keys := c.Keys(); len(keys) != 2 || keys[0] != TextField {
		t.Fatalf("keys = %v", keys)
	}
}

func TestContentFromMapOrder(t *testing.T) {
	c := ContentFromMap(map[string]any{"z": 1, "text": "t", "a": 2})
	keys := c.Keys()
	want := []string{"text", "a", "z"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	if c.RawText() != "t" {
		t.Fatalf("RawText = %q", c.RawText())
	}
}

func TestWithPayloadDoesNotMutateTemplate(t *testing.T) {
	tmpl := &Message{Content: Text("hi {name}")}
	bound := tmpl.WithPayload(Payload{"name": "x"})
	if tmpl.Payload != nil {
		t.Fatal("template payload was mutated")
	}
	if text, _ := bound.Text(); text != "hi x" {
		t.Fatalf("bound text = %q", text)
	}
}

func TestResponseBind(t *testing.T) {
	resp := &Response{Message: New("bye {name}"), Menu: "main", GoBack: state.BackToRoot}
	bound, ok := resp.Bind(Payload{"name": "z"}).(*Response)
	if !ok {
		t.Fatal("Bind should keep the Response variant")
	}
	if bound == resp || bound.Message == resp.Message {
		t.Fatal("Bind must copy")
	}
	if text, _ := bound.Message.Text(); text != "bye z" {
		t.Fatalf("text = %q", text)
	}
	if bound.Menu != "main" || bound.GoBack != state.BackToRoot {
		t.Fatalf("control fields lost: %+v", bound)
	}

	empty := (&Response{Menu: "x"}).WithPayload(Payload{"a": 1})
	if empty.Message != nil {
		t.Fatal("nil message should stay nil")
	}
}

func TestPayloadHelpers(t *testing.T) {
	var p Payload
	q := p.With("a", "b")
	if len(p) != 0 || q["a"] != "b" {
		t.Fatalf("With mutated receiver or lost value: %v %v", p, q)
	}
	if s, ok := q.String("a"); !ok || s != "b" {
		t.Fatalf("String = %q, %v", s, ok)
	}
	if _, ok := q.String("missing"); ok {
		t.Fatal("String should miss")
	}
}
