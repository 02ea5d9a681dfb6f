package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/navmenu/core/definition"
	"github.com/m3rciful/navmenu/core/state/redisstore"
)

// Infra represents shared infrastructure passed to modules. DB and Redis are nil
// unless the selected store backend opened them.
type Infra struct {
	DB    *sqlx.DB
	Redis *redisstore.Client
}

// Module contributes named callbacks that menu definitions can reference.
type Module interface {
	Register(ctx context.Context, infra Infra, fns *definition.Functions) error
}

// ModuleFunc adapts a bare function to the Module interface.
type ModuleFunc func(ctx context.Context, infra Infra, fns *definition.Functions) error

// Register executes the underlying function.
func (f ModuleFunc) Register(ctx context.Context, infra Infra, fns *definition.Functions) error {
	return f(ctx, infra, fns)
}

// Modules groups optional callback providers applied in order.
type Modules []Module

// Functions collects callbacks from base and every module. A name registered twice
// within one kind is an error.
func (m Modules) Functions(ctx context.Context, infra Infra, base definition.Functions) (definition.Functions, error) {
	out := definition.Functions{}
	if err := merge(&out, base); err != nil {
		return out, err
	}
	for i, mod := range m {
		if mod == nil {
			continue
		}
		var fns definition.Functions
		if err := mod.Register(ctx, infra, &fns); err != nil {
			return out, fmt.Errorf("bootstrap: module %d: %w", i, err)
		}
		if err := merge(&out, fns); err != nil {
			return out, fmt.Errorf("bootstrap: module %d: %w", i, err)
		}
	}
	return out, nil
}

func merge(dst *definition.Functions, src definition.Functions) error {
	var err error
	if dst.Actions, err = mergeMap(dst.Actions, src.Actions, "action"); err != nil {
		return err
	}
	if dst.Predicates, err = mergeMap(dst.Predicates, src.Predicates, "predicate"); err != nil {
		return err
	}
	if dst.Handlers, err = mergeMap(dst.Handlers, src.Handlers, "handler"); err != nil {
		return err
	}
	if dst.Enter, err = mergeMap(dst.Enter, src.Enter, "enter"); err != nil {
		return err
	}
	return nil
}

func mergeMap[V any](dst, src map[string]V, kind string) (map[string]V, error) {
	if len(src) == 0 {
		return dst, nil
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	for name, fn := range src {
		if _, dup := dst[name]; dup {
			return dst, fmt.Errorf("duplicate %s function %q", kind, name)
		}
		dst[name] = fn
	}
	return dst, nil
}
