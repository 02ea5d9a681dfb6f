package menu

import "fmt"

// Registry maps menu names to menus and keeps declaration order for alias lookup.
// It is filled during setup and read-only afterwards.
type Registry struct {
	names []string
	menus map[string]Menu
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{menus: make(map[string]Menu)}
}

// Register adds m under name.
func (r *Registry) Register(name string, m Menu) error {
	if name == "" {
		return fmt.Errorf("menu: empty name")
	}
	if m == nil {
		return fmt.Errorf("menu %q: nil menu", name)
	}
	if _, ok := r.menus[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMenu, name)
	}
	r.menus[name] = m
	r.names = append(r.names, name)
	return nil
}

// Lookup returns the menu registered under name.
func (r *Registry) Lookup(name string) (Menu, bool) {
	m, ok := r.menus[name]
	return m, ok
}

// ResolveAlias returns the first menu, in registration order, that has action as an alias.
func (r *Registry) ResolveAlias(action string) (string, Menu, bool) {
	for _, name := range r.names {
		if m := r.menus[name]; m.HasAlias(action) {
			return name, m, true
		}
	}
	return "", nil, false
}

// Names lists menu names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of registered menus.
func (r *Registry) Len() int { return len(r.names) }
