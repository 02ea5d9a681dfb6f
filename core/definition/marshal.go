package definition

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/keyboard"
	"github.com/m3rciful/navmenu/core/menu"
	"github.com/m3rciful/navmenu/core/message"
)

// Marshal writes def back as a YAML document that Parse accepts with the same Functions.
//
// Callbacks are written by the names they were loaded from. Conditions and handlers on a
// hand-built registry have no name and fail with ErrUnknownFunction.
func Marshal(def *Definition) ([]byte, error) {
	if def == nil || def.Menus == nil {
		return nil, fmt.Errorf("%w: nothing to marshal", ErrInvalid)
	}
	e := exporter{refs: def.refs}
	menus := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range def.Menus.Names() {
		m, _ := def.Menus.Lookup(name)
		md, err := e.menu(m)
		if err != nil {
			return nil, fmt.Errorf("menu %q: %w", name, err)
		}
		var value yaml.Node
		if err := value.Encode(md); err != nil {
			return nil, fmt.Errorf("menu %q: %w", name, err)
		}
		menus.Content = append(menus.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}, &value)
	}

	out := struct {
		DefaultState string     `yaml:"default_state"`
		Menus        *yaml.Node `yaml:"menus"`
	}{DefaultState: def.DefaultState, Menus: menus}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("definition: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("definition: encode: %w", err)
	}
	return buf.Bytes(), nil
}

type exporter struct {
	refs refs
}

func (e exporter) menu(m menu.Menu) (menuDef, error) {
	switch m := m.(type) {
	case *menu.Static:
		md := menuDef{
			Type:         "Menu",
			Content:      content(m.Content()),
			Aliases:      m.Aliases(),
			Enter:        e.refs.enter[m],
			MutableItems: m.Mutable(),
		}
		for i, it := range m.Items() {
			id, err := e.item(it)
			if err != nil {
				return menuDef{}, fmt.Errorf("item %d: %w", i, err)
			}
			md.Items = append(md.Items, id)
		}
		if a := m.DefaultAction(); a != nil {
			ad, err := e.action(a)
			if err != nil {
				return menuDef{}, fmt.Errorf("default_action: %w", err)
			}
			md.DefaultAction = &ad
		}
		return md, nil
	case *menu.Delegated:
		name, ok := e.refs.handlers[m]
		if !ok {
			return menuDef{}, fmt.Errorf("%w: custom menu handler has no name", ErrUnknownFunction)
		}
		return menuDef{Type: "CustomMenu", Handler: name, Aliases: m.Aliases()}, nil
	default:
		return menuDef{}, fmt.Errorf("%w: menu %T", ErrUnsupportedType, m)
	}
}

func (e exporter) item(it item.Item) (itemDef, error) {
	switch it := it.(type) {
	case item.LineBreak:
		return itemDef{Type: "LineBreakItem"}, nil
	case *item.Conditional:
		name, ok := e.refs.predicates[it]
		if !ok {
			return itemDef{}, fmt.Errorf("%w: condition of item %q has no name", ErrUnknownFunction, it.Name())
		}
		id, err := e.entry(it.Entry)
		if err != nil {
			return itemDef{}, err
		}
		id.Type = "ConditionalItem"
		id.Condition = name
		return id, nil
	case *item.Entry:
		return e.entry(it)
	default:
		return itemDef{}, fmt.Errorf("%w: item %T", ErrUnsupportedType, it)
	}
}

func (e exporter) entry(en *item.Entry) (itemDef, error) {
	label, ok := en.Content().(item.TextContent)
	if !ok {
		return itemDef{}, fmt.Errorf("%w: item %q content %T", ErrUnsupportedType, en.Name(), en.Content())
	}
	id := itemDef{
		Type:    "Item",
		Name:    en.Name(),
		Content: &itemContentDef{Type: "TextItemContent", Text: label.Text},
	}
	if label.Color != keyboard.ColorDefault {
		id.Content.Color = label.Color.String()
	}
	for _, a := range en.Actions() {
		ad, err := e.action(a)
		if err != nil {
			return itemDef{}, fmt.Errorf("item %q: %w", en.Name(), err)
		}
		id.Actions = append(id.Actions, ad)
	}
	if len(id.Actions) == 1 {
		id.Action, id.Actions = &id.Actions[0], nil
	}
	return id, nil
}

func (e exporter) action(a action.Action) (actionDef, error) {
	switch a := a.(type) {
	case *action.Message:
		return actionDef{Type: "MessageAction", Text: a.Text}, nil
	case *action.Submenu:
		return actionDef{Type: "SubmenuAction", MenuName: a.Menu}, nil
	case *action.GoBack:
		count := backCount(a.Count)
		return actionDef{Type: "GoBackAction", Count: &count}, nil
	case *action.Function:
		ad := actionDef{Type: "FunctionAction", Function: a.Name}
		templates := a.Templates()
		for _, key := range slices.Sorted(maps.Keys(templates)) {
			td, err := template(key, templates[key])
			if err != nil {
				return actionDef{}, fmt.Errorf("function %q case %q: %w", a.Name, key, err)
			}
			ad.Templates = append(ad.Templates, td)
		}
		return ad, nil
	default:
		return actionDef{}, fmt.Errorf("%w: action %T", ErrUnsupportedType, a)
	}
}

func template(key string, res message.Result) (templateDef, error) {
	switch r := res.(type) {
	case *message.Message:
		return templateDef{Case: key, Type: "Message", Content: content(r.Content)}, nil
	case *message.Response:
		td := templateDef{Case: key, Type: "Response", Menu: r.Menu}
		if r.Message != nil {
			td.Message = &messageDef{Type: "Message", Content: content(r.Message.Content)}
		}
		if r.GoBack != 0 {
			count := backCount(r.GoBack)
			td.GoBackCount = &count
		}
		return td, nil
	default:
		return templateDef{}, fmt.Errorf("%w: template %T", ErrUnsupportedType, res)
	}
}

func content(c *message.Content) *contentDef {
	keys := c.Keys()
	if len(keys) == 0 {
		return nil
	}
	cd := &contentDef{Type: "Content"}
	for _, k := range keys {
		v, _ := c.Get(k)
		if s, ok := v.(string); ok && k == message.TextField {
			cd.Text = &s
			continue
		}
		if cd.Extra == nil {
			cd.Extra = map[string]any{}
		}
		cd.Extra[k] = v
	}
	return cd
}
