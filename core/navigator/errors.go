package navigator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when neither the current menu nor any alias knows the action.
	ErrInvalidAction = errors.New("navigator: invalid action")
	// ErrUnknownMenu means the menu graph references a menu that is not registered.
	ErrUnknownMenu = errors.New("navigator: unknown menu")
)

// SelectError describes a failed selection.
type SelectError struct {
	UserID int64
	Menu   string
	Action string
	Err    error
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("navigator: user %d menu %q action %q: %v", e.UserID, e.Menu, e.Action, e.Err)
}

func (e *SelectError) Unwrap() error { return e.Err }
