package definition

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/m3rciful/navmenu/core/state"
)

type document struct {
	DefaultState string             `yaml:"default_state"`
	Menus        map[string]menuDef `yaml:"menus"`
}

// menuOrder recovers the declaration order of the menus mapping.
type menuOrder struct {
	Menus yaml.Node `yaml:"menus"`
}

type menuDef struct {
	Type          string      `yaml:"type"`
	Content       *contentDef `yaml:"content,omitempty"`
	Items         []itemDef   `yaml:"items,omitempty"`
	DefaultAction *actionDef  `yaml:"default_action,omitempty"`
	Aliases       []string    `yaml:"aliases,omitempty"`
	Enter         string      `yaml:"enter,omitempty"`
	MutableItems  bool        `yaml:"mutable_items,omitempty"`
	Handler       string      `yaml:"handler,omitempty"`
}

type contentDef struct {
	Type  string         `yaml:"type"`
	Text  *string        `yaml:"text,omitempty"`
	Extra map[string]any `yaml:",inline"`
}

type itemDef struct {
	Type      string          `yaml:"type"`
	Name      string          `yaml:"name,omitempty"`
	Content   *itemContentDef `yaml:"content,omitempty"`
	Action    *actionDef      `yaml:"action,omitempty"`
	Actions   []actionDef     `yaml:"actions,omitempty"`
	Condition string          `yaml:"condition,omitempty"`
}

type itemContentDef struct {
	Type  string `yaml:"type"`
	Text  string `yaml:"text,omitempty"`
	Color string `yaml:"color,omitempty"`
}

type actionDef struct {
	Type      string        `yaml:"type"`
	Text      string        `yaml:"text,omitempty"`
	MenuName  string        `yaml:"menu_name,omitempty"`
	Count     *backCount    `yaml:"count,omitempty"`
	Function  string        `yaml:"function,omitempty"`
	Templates []templateDef `yaml:"templates,omitempty"`
}

type templateDef struct {
	Case        any         `yaml:"case"`
	Type        string      `yaml:"type"`
	Content     *contentDef `yaml:"content,omitempty"`
	Message     *messageDef `yaml:"message,omitempty"`
	Menu        string      `yaml:"menu,omitempty"`
	GoBackCount *backCount  `yaml:"go_back_count,omitempty"`
}

type messageDef struct {
	Type    string      `yaml:"type"`
	Content *contentDef `yaml:"content,omitempty"`
}

// backCount accepts a positive integer or "root".
type backCount state.BackCount

// MarshalYAML writes BackToRoot as "root".
func (c backCount) MarshalYAML() (any, error) {
	if state.BackCount(c) == state.BackToRoot {
		return "root", nil
	}
	return int(c), nil
}

func (c *backCount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: go back count must be a scalar", node.Line)
	}
	if strings.EqualFold(strings.TrimSpace(node.Value), "root") {
		*c = backCount(state.BackToRoot)
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(node.Value))
	if err != nil {
		return fmt.Errorf("line %d: go back count %q: want a number or root", node.Line, node.Value)
	}
	*c = backCount(n)
	return nil
}
