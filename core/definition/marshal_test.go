package definition

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/menu"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
)

type shopHandler struct{}

func (shopHandler) Select(act string, _ message.Payload) ([]message.Result, error) {
	if act != "buy" {
		return nil, menu.ErrNoMatch
	}
	return []message.Result{message.New("bought")}, nil
}

func (shopHandler) Message(message.Payload) (*message.Message, error) { return message.New("Shop"), nil }

func (shopHandler) Enter(message.Payload) (*message.Message, error) { return nil, nil }

const extendedYAML = `
default_state: main
menus:
  main:
    type: Menu
    content: {type: Content, text: Main}
    enter: greet
    mutable_items: true
    default_action: {type: MessageAction, text: "unknown {text}"}
    items:
      - type: Item
        name: shop
        content: {type: TextItemContent, text: Shop, color: negative}
        actions:
          - {type: MessageAction, text: "opening"}
          - {type: SubmenuAction, menu_name: shop}
      - type: Item
        name: reset
        action:
          type: FunctionAction
          function: toggle
          templates:
            - case: enabled
              type: Response
              go_back_count: root
  shop:
    type: CustomMenu
    handler: shop
    aliases: [store]
`

func extendedFunctions() Functions {
	fns := sampleFunctions()
	fns.Handlers = map[string]menu.Handler{"shop": shopHandler{}}
	fns.Enter = map[string]menu.EnterFunc{
		"greet": func(message.Payload) (*message.Message, error) { return message.New("hello"), nil },
	}
	return fns
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		doc  string
		fns  Functions
	}{
		{"sample", sampleYAML, sampleFunctions()},
		{"extended", extendedYAML, extendedFunctions()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			def, err := Parse([]byte(tc.doc), tc.fns)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			first, err := Marshal(def)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			again, err := Parse(first, tc.fns)
			if err != nil {
				t.Fatalf("Parse(marshaled): %v\n%s", err, first)
			}
			second, err := Marshal(again)
			if err != nil {
				t.Fatalf("Marshal(reparsed): %v", err)
			}
			if !bytes.Equal(first, second) {
				t.Fatalf("marshal is not stable:\n%s\n---\n%s", first, second)
			}
			if got, want := again.Menus.Names(), def.Menus.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
				t.Fatalf("names = %v, want %v", got, want)
			}
		})
	}
}

func TestMarshalKeepsSampleBehaviour(t *testing.T) {
	def, err := Parse([]byte(sampleYAML), sampleFunctions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := Marshal(def)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{"condition: is_admin", "function: toggle", "count: root", "color: primary", "parse_mode: html"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("output lacks %q:\n%s", want, data)
		}
	}
	again, err := Parse(data, sampleFunctions())
	if err != nil {
		t.Fatalf("Parse(marshaled): %v", err)
	}
	checkSampleNavigates(t, again)
}

func TestMarshalExtendedNames(t *testing.T) {
	def, err := Parse([]byte(extendedYAML), extendedFunctions())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	data, err := Marshal(def)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{"enter: greet", "handler: shop", "mutable_items: true", "go_back_count: root", "default_action:"} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("output lacks %q:\n%s", want, data)
		}
	}

	again, err := Parse(data, extendedFunctions())
	if err != nil {
		t.Fatalf("Parse(marshaled): %v", err)
	}
	m, err := navigator.New(again.Menus, state.NewMemoryStore(again.DefaultState))
	if err != nil {
		t.Fatalf("navigator.New: %v", err)
	}
	msgs, err := m.Select(context.Background(), 3, "shop", nil)
	if err != nil {
		t.Fatalf("Select(shop): %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if text, _ := msgs[0].Text(); text != "opening" {
		t.Fatalf("text = %q", text)
	}
	msgs, err = m.Select(context.Background(), 3, "buy", nil)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Select(buy): %d msgs, %v", len(msgs), err)
	}
}

func TestMarshalUnnamedCondition(t *testing.T) {
	reg := menu.NewRegistry()
	hidden := item.NewConditional(item.Text("x", "X"), func(message.Payload) (bool, error) { return false, nil })
	if err := reg.Register("main", menu.NewStatic(message.Text("Main"), []item.Item{hidden})); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := Marshal(&Definition{DefaultState: "main", Menus: reg}); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("err = %v, want ErrUnknownFunction", err)
	}
}
