package definition

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/menu"
	"github.com/m3rciful/navmenu/core/message"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
)

var (
	// ErrUnknownFunction is returned when a document names a callback missing from Functions.
	ErrUnknownFunction = errors.New("definition: unknown function")
	// ErrUnsupportedType is returned for unknown or deliberately unsupported type tags.
	ErrUnsupportedType = errors.New("definition: unsupported type")
	// ErrInvalid is returned for structurally invalid documents.
	ErrInvalid = errors.New("definition: invalid document")
)

// Functions holds the callbacks a document may reference by name.
type Functions struct {
	Actions    map[string]action.Func
	Predicates map[string]item.Predicate
	Handlers   map[string]menu.Handler
	Enter      map[string]menu.EnterFunc
}

// Definition is a loaded, validated menu graph.
type Definition struct {
	DefaultState string
	Menus        *menu.Registry

	refs refs
}

// refs remembers the names callbacks were resolved from so Marshal can write them back.
type refs struct {
	enter      map[*menu.Static]string
	handlers   map[*menu.Delegated]string
	predicates map[*item.Conditional]string
}

func newRefs() refs {
	return refs{
		enter:      map[*menu.Static]string{},
		handlers:   map[*menu.Delegated]string{},
		predicates: map[*item.Conditional]string{},
	}
}

// LoadFile reads and parses the document at path.
func LoadFile(path string, fns Functions) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definition: read %s: %w", path, err)
	}
	def, err := Parse(data, fns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info(context.Background(), "definition", "loaded",
		slog.String("path", path),
		slog.String("default_state", def.DefaultState),
		slog.Int("count", def.Menus.Len()),
	)
	return def, nil
}

// Load parses a document from r.
func Load(r io.Reader, fns Functions) (*Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("definition: read: %w", err)
	}
	return Parse(data, fns)
}

// Parse builds a registry from a YAML or JSON document.
func Parse(data []byte, fns Functions) (*Definition, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc.DefaultState == "" {
		return nil, fmt.Errorf("%w: default_state is required", ErrInvalid)
	}
	if len(doc.Menus) == 0 {
		return nil, fmt.Errorf("%w: menus must be a non-empty mapping", ErrInvalid)
	}
	var order menuOrder
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	b := &builder{fns: fns, targets: map[string]string{}, refs: newRefs()}
	reg := menu.NewRegistry()
	nodes := order.Menus.Content
	for i := 0; i+1 < len(nodes); i += 2 {
		name := nodes[i].Value
		m, err := b.menu(name, doc.Menus[name])
		if err != nil {
			return nil, fmt.Errorf("menu %q: %w", name, err)
		}
		if err := reg.Register(name, m); err != nil {
			return nil, err
		}
	}

	if _, ok := reg.Lookup(doc.DefaultState); !ok {
		return nil, fmt.Errorf("%w: default_state %q", navigator.ErrUnknownMenu, doc.DefaultState)
	}
	for target, from := range b.targets {
		if _, ok := reg.Lookup(target); !ok {
			return nil, fmt.Errorf("menu %q: %w: %q", from, navigator.ErrUnknownMenu, target)
		}
	}
	return &Definition{DefaultState: doc.DefaultState, Menus: reg, refs: b.refs}, nil
}

type builder struct {
	fns Functions
	// menu names referenced by actions and templates, mapped to the referencing menu
	targets map[string]string
	current string
	refs    refs
}

func (b *builder) menu(name string, md menuDef) (menu.Menu, error) {
	b.current = name
	switch md.Type {
	case "Menu", "":
		return b.static(md)
	case "CustomMenu":
		h, ok := b.fns.Handlers[md.Handler]
		if !ok || h == nil {
			return nil, fmt.Errorf("%w: handler %q", ErrUnknownFunction, md.Handler)
		}
		d := menu.NewDelegated(h, md.Aliases...)
		b.refs.handlers[d] = md.Handler
		return d, nil
	default:
		return nil, fmt.Errorf("%w: menu type %q", ErrUnsupportedType, md.Type)
	}
}

func (b *builder) static(md menuDef) (menu.Menu, error) {
	content, err := b.content(md.Content)
	if err != nil {
		return nil, err
	}
	items := make([]item.Item, 0, len(md.Items))
	for i, id := range md.Items {
		it, err := b.item(id)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, it)
	}

	var opts []menu.Option
	if md.DefaultAction != nil {
		a, err := b.action(*md.DefaultAction)
		if err != nil {
			return nil, fmt.Errorf("default_action: %w", err)
		}
		opts = append(opts, menu.WithDefaultAction(a))
	}
	if len(md.Aliases) > 0 {
		opts = append(opts, menu.WithAliases(md.Aliases...))
	}
	if md.Enter != "" {
		fn, ok := b.fns.Enter[md.Enter]
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: enter %q", ErrUnknownFunction, md.Enter)
		}
		opts = append(opts, menu.WithEnter(fn))
	}
	if md.MutableItems {
		opts = append(opts, menu.WithMutableItems())
	}
	s := menu.NewStatic(content, items, opts...)
	if md.Enter != "" {
		b.refs.enter[s] = md.Enter
	}
	return s, nil
}

func (b *builder) content(cd *contentDef) (*message.Content, error) {
	if cd == nil {
		return message.NewContent(), nil
	}
	if cd.Type != "" && cd.Type != "Content" {
		return nil, fmt.Errorf("%w: content type %q", ErrUnsupportedType, cd.Type)
	}
	fields := make(map[string]any, len(cd.Extra)+1)
	for k, v := range cd.Extra {
		fields[k] = v
	}
	if cd.Text != nil {
		fields[message.TextField] = *cd.Text
	}
	return message.ContentFromMap(fields), nil
}

func (b *builder) item(id itemDef) (item.Item, error) {
	if id.Type == "LineBreakItem" {
		return item.NewLineBreak(), nil
	}
	if id.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalid)
	}
	content, err := b.itemContent(id)
	if err != nil {
		return nil, err
	}
	var actions []action.Action
	if id.Action != nil {
		a, err := b.action(*id.Action)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", id.Name, err)
		}
		actions = append(actions, a)
	}
	for _, ad := range id.Actions {
		a, err := b.action(ad)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", id.Name, err)
		}
		actions = append(actions, a)
	}
	entry := item.New(id.Name, content, actions...)

	switch id.Type {
	case "Item", "":
		if id.Condition != "" {
			return nil, fmt.Errorf("%w: item %q has a condition; use ConditionalItem", ErrInvalid, id.Name)
		}
		return entry, nil
	case "ConditionalItem":
		pred, ok := b.fns.Predicates[id.Condition]
		if !ok || pred == nil {
			return nil, fmt.Errorf("%w: condition %q", ErrUnknownFunction, id.Condition)
		}
		c := item.NewConditional(entry, pred)
		b.refs.predicates[c] = id.Condition
		return c, nil
	default:
		return nil, fmt.Errorf("%w: item type %q", ErrUnsupportedType, id.Type)
	}
}

func (b *builder) itemContent(id itemDef) (item.Content, error) {
	if id.Content == nil {
		return item.TextContent{Text: id.Name}, nil
	}
	if t := id.Content.Type; t != "" && t != "TextItemContent" {
		return nil, fmt.Errorf("%w: item content type %q", ErrUnsupportedType, t)
	}
	color := keyboard.ColorDefault
	if id.Content.Color != "" {
		c, ok := keyboard.ParseColor(id.Content.Color)
		if !ok {
			return nil, fmt.Errorf("%w: item %q: unknown color %q", ErrInvalid, id.Name, id.Content.Color)
		}
		color = c
	}
	return item.TextContent{Text: id.Content.Text, Color: color}, nil
}

func (b *builder) action(ad actionDef) (action.Action, error) {
	switch ad.Type {
	case "MessageAction":
		return action.NewMessage(ad.Text), nil
	case "SubmenuAction":
		if ad.MenuName == "" {
			return nil, fmt.Errorf("%w: SubmenuAction needs menu_name", ErrInvalid)
		}
		b.targets[ad.MenuName] = b.current
		return action.NewSubmenu(ad.MenuName), nil
	case "GoBackAction":
		count := state.BackCount(1)
		if ad.Count != nil {
			count = state.BackCount(*ad.Count)
		}
		if err := count.Validate(); err != nil {
			return nil, err
		}
		return action.NewGoBack(count), nil
	case "FunctionAction":
		fn, ok := b.fns.Actions[ad.Function]
		if !ok || fn == nil {
			return nil, fmt.Errorf("%w: function %q", ErrUnknownFunction, ad.Function)
		}
		templates := make(map[any]message.Result, len(ad.Templates))
		seen := make(map[string]bool, len(ad.Templates))
		for _, td := range ad.Templates {
			res, err := b.template(td)
			if err != nil {
				return nil, fmt.Errorf("function %q case %v: %w", ad.Function, td.Case, err)
			}
			key, _ := action.CaseKey(td.Case)
			if seen[key] {
				return nil, fmt.Errorf("%w: function %q has duplicate case %q", ErrInvalid, ad.Function, key)
			}
			seen[key] = true
			templates[td.Case] = res
		}
		return action.NewFunction(ad.Function, fn, templates), nil
	case "ExecuteAction":
		return nil, fmt.Errorf("%w: ExecuteAction is not supported", ErrUnsupportedType)
	default:
		return nil, fmt.Errorf("%w: action type %q", ErrUnsupportedType, ad.Type)
	}
}

func (b *builder) template(td templateDef) (message.Result, error) {
	if td.Case == nil || !reflect.TypeOf(td.Case).Comparable() {
		return nil, fmt.Errorf("%w: template case must be a scalar", ErrInvalid)
	}
	switch td.Type {
	case "Message":
		content, err := b.content(td.Content)
		if err != nil {
			return nil, err
		}
		return &message.Message{Content: content}, nil
	case "Response":
		resp := &message.Response{Menu: td.Menu}
		if td.Message != nil {
			if t := td.Message.Type; t != "" && t != "Message" {
				return nil, fmt.Errorf("%w: response message type %q", ErrUnsupportedType, t)
			}
			content, err := b.content(td.Message.Content)
			if err != nil {
				return nil, err
			}
			resp.Message = &message.Message{Content: content}
		}
		if td.GoBackCount != nil {
			resp.GoBack = state.BackCount(*td.GoBackCount)
			if err := resp.GoBack.Validate(); err != nil {
				return nil, err
			}
		}
		if td.Menu != "" {
			b.targets[td.Menu] = b.current
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: template type %q", ErrUnsupportedType, td.Type)
	}
}
