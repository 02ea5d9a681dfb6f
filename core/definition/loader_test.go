package definition

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
)

const sampleYAML = `
default_state: main
menus:
  main:
    type: Menu
    content: {type: Content, text: "Hello {user_id}", parse_mode: html}
    aliases: [Start]
    items:
      - type: Item
        name: settings
        content: {type: TextItemContent, text: Settings, color: primary}
        action: {type: SubmenuAction, menu_name: settings}
      - type: LineBreakItem
      - type: ConditionalItem
        name: admin
        content: {type: TextItemContent, text: Admin}
        condition: is_admin
        action: {type: MessageAction, text: "secret"}
      - type: Item
        name: toggle
        content: {type: TextItemContent, text: Toggle}
        action:
          type: FunctionAction
          function: toggle
          templates:
            - case: enabled
              type: Message
              content: {type: Content, text: "Enabled for {user_id}"}
            - case: 2
              type: Response
              message: {type: Message, content: {type: Content, text: "Leaving"}}
              menu: settings
  settings:
    type: Menu
    content: {type: Content, text: Settings}
    items:
      - type: Item
        name: back
        content: {type: TextItemContent, text: Back}
        action: {type: GoBackAction}
      - type: Item
        name: home
        content: {type: TextItemContent, text: Home}
        action: {type: GoBackAction, count: root}
`

func sampleFunctions() Functions {
	return Functions{
		Actions: map[string]action.Func{
			"toggle": func(p message.Payload) (any, error) {
				if p["text"] == "toggle" {
					return "enabled", nil
				}
				return 2, nil
			},
		},
		Predicates: map[string]item.Predicate{
			"is_admin": func(p message.Payload) (bool, error) { return p["user_id"] == int64(1), nil },
		},
	}
}

func TestParseYAML(t *testing.T) {
	def, err := Parse([]byte(sampleYAML), sampleFunctions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.DefaultState != "main" {
		t.Fatalf("default = %q", def.DefaultState)
	}
	if names := def.Menus.Names(); len(names) != 2 || names[0] != "main" || names[1] != "settings" {
		t.Fatalf("names = %v", names)
	}

	mainMenu, _ := def.Menus.Lookup("main")
	if !mainMenu.HasAlias("start") {
		t.Fatal("alias start missing")
	}
	msg, err := mainMenu.Message(message.Payload{"user_id": int64(1)})
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	rendered, _ := msg.Rendered()
	if rendered["text"] != "Hello 1" || rendered["parse_mode"] != "html" {
		t.Fatalf("rendered = %v", rendered)
	}
	if len(msg.Keyboard.Lines) != 2 || msg.Keyboard.Lines[0][0].Color != keyboard.ColorPrimary {
		t.Fatalf("keyboard = %+v", msg.Keyboard.Lines)
	}
	if len(msg.Keyboard.Lines[1]) != 2 {
		t.Fatalf("admin should see two buttons on the second line: %+v", msg.Keyboard.Lines[1])
	}
}

func TestParsedGraphNavigates(t *testing.T) {
	def, err := Parse([]byte(sampleYAML), sampleFunctions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checkSampleNavigates(t, def)
}

func checkSampleNavigates(t *testing.T, def *Definition) {
	t.Helper()
	store := state.NewMemoryStore(def.DefaultState)
	m, err := navigator.New(def.Menus, store)
	if err != nil {
		t.Fatalf("navigator.New: %v", err)
	}
	ctx := context.Background()
	const user = int64(7)
	payload := message.Payload{"user_id": user, "text": "toggle"}

	msgs, err := m.Select(ctx, user, "toggle", payload)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("toggle: %d msgs, %v", len(msgs), err)
	}
	if text, _ := msgs[0].Text(); text != "Enabled for 7" {
		t.Fatalf("text = %q", text)
	}

	msgs, err = m.Select(ctx, user, "toggle", message.Payload{"user_id": user, "text": "x"})
	if err != nil || len(msgs) != 1 {
		t.Fatalf("toggle response: %d msgs, %v", len(msgs), err)
	}
	if cur, _ := store.Get(ctx, user); cur != "settings" {
		t.Fatalf("current = %q, want settings", cur)
	}

	if _, err := m.Select(ctx, user, "home", nil); err != nil {
		t.Fatalf("home: %v", err)
	}
	if cur, _ := store.Get(ctx, user); cur != "main" {
		t.Fatalf("current = %q, want main", cur)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"default_state": "main", "menus": {"main": {"type": "Menu",
  "content": {"type": "Content", "text": "Main"},
  "items": [{"type": "Item", "name": "hi", "content": {"type": "TextItemContent", "text": "Hi"},
             "action": {"type": "MessageAction", "text": "hello"}}]}}}`
	def, err := Parse([]byte(doc), Functions{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if def.Menus.Len() != 1 {
		t.Fatalf("menus = %d", def.Menus.Len())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown function", `
default_state: main
menus:
  main:
    items:
      - {name: x, action: {type: FunctionAction, function: missing}}
`, ErrUnknownFunction},
		{"unknown predicate", `
default_state: main
menus:
  main:
    items:
      - {type: ConditionalItem, name: x, condition: nope}
`, ErrUnknownFunction},
		{"unknown handler", `
default_state: main
menus:
  main: {type: CustomMenu, handler: nope}
`, ErrUnknownFunction},
		{"execute action", `
default_state: main
menus:
  main:
    items:
      - {name: x, action: {type: ExecuteAction}}
`, ErrUnsupportedType},
		{"unknown submenu", `
default_state: main
menus:
  main:
    items:
      - {name: x, action: {type: SubmenuAction, menu_name: ghost}}
`, navigator.ErrUnknownMenu},
		{"unknown default state", `
default_state: ghost
menus:
  main: {content: {text: hi}}
`, navigator.ErrUnknownMenu},
		{"bad go back count", `
default_state: main
menus:
  main:
    items:
      - {name: x, action: {type: GoBackAction, count: 0}}
`, state.ErrInvalidGoBackCount},
		{"unknown field", `
default_state: main
menus:
  main: {colour: red}
`, ErrInvalid},
		{"missing default", `
menus:
  main: {}
`, ErrInvalid},
		{"duplicate case", `
default_state: main
menus:
  main:
    items:
      - name: x
        action:
          type: FunctionAction
          function: toggle
          templates:
            - {case: 1, type: Message, content: {text: a}}
            - {case: "1", type: Message, content: {text: b}}
`, ErrInvalid},
		{"empty", ``, ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), sampleFunctions())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadReader(t *testing.T) {
	if _, err := Load(strings.NewReader(sampleYAML), sampleFunctions()); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestTemplateCaseMatchesAcrossTypes(t *testing.T) {
	doc := `
default_state: main
menus:
  main:
    items:
      - name: count
        action:
          type: FunctionAction
          function: count
          templates:
            - {case: 1, type: Message, content: {text: one}}
            - {case: "true", type: Message, content: {text: yes}}
`
	var ret any
	fns := Functions{Actions: map[string]action.Func{
		"count": func(message.Payload) (any, error) { return ret, nil },
	}}
	def, err := Parse([]byte(doc), fns)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, err := navigator.New(def.Menus, state.NewMemoryStore(def.DefaultState))
	if err != nil {
		t.Fatalf("navigator.New: %v", err)
	}
	for _, tc := range []struct {
		ret  any
		want string
	}{
		{int64(1), "one"},
		{"1", "one"},
		{uint8(1), "one"},
		{true, "yes"},
	} {
		ret = tc.ret
		msgs, err := m.Select(context.Background(), 1, "count", nil)
		if err != nil || len(msgs) != 1 {
			t.Fatalf("ret %#v: %d msgs, %v", tc.ret, len(msgs), err)
		}
		if text, _ := msgs[0].Text(); text != tc.want {
			t.Fatalf("ret %#v: text = %q, want %q", tc.ret, text, tc.want)
		}
	}
}
