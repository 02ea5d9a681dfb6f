package state

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidGoBackCount is returned when a go-back count is neither positive nor BackToRoot.
var ErrInvalidGoBackCount = errors.New("state: go back count must be >= 1 or BackToRoot")

// BackCount is the number of history steps to rewind.
type BackCount int

// BackToRoot rewinds the whole history and lands on the default state.
const BackToRoot BackCount = -1

// Validate reports whether c is a legal go-back request.
func (c BackCount) Validate() error {
	if c == BackToRoot || c >= 1 {
		return nil
	}
	return fmt.Errorf("%w: got %d", ErrInvalidGoBackCount, int(c))
}

// String renders the count for logs.
func (c BackCount) String() string {
	if c == BackToRoot {
		return "root"
	}
	return fmt.Sprintf("%d", int(c))
}

// Record is a snapshot of a user's navigation state. History is ordered oldest first.
type Record struct {
	Current string   `json:"current"`
	History []string `json:"history"`
}

// Clone returns a deep copy so callers cannot alias backend storage.
func (r Record) Clone() Record {
	return Record{Current: r.Current, History: append([]string(nil), r.History...)}
}

// Push moves the current menu onto the history and makes next current.
func (r Record) Push(next string) Record {
	out := r.Clone()
	out.History = append(out.History, r.Current)
	out.Current = next
	return out
}

// Rewind pops up to count entries and lands on the count-th most recent menu. When the
// history is shorter than count the record resets to defaultState with an empty history.
func (r Record) Rewind(defaultState string, count BackCount) (Record, error) {
	if err := count.Validate(); err != nil {
		return r, err
	}
	n := len(r.History)
	steps := int(count)
	if count == BackToRoot {
		steps = n + 1
	}
	if steps > n {
		return Record{Current: defaultState, History: []string{}}, nil
	}
	return Record{
		Current: r.History[n-steps],
		History: append([]string(nil), r.History[:n-steps]...),
	}, nil
}

// Store persists navigation records keyed by user id.
//
// Individual calls are atomic. Callers that perform a read-modify-write sequence
// across several calls must hold the user's Lock for the whole sequence.
type Store interface {
	// Get returns the user's current menu, or the default state for unknown users.
	Get(ctx context.Context, userID int64) (string, error)
	// Set pushes the current menu (default state for new users) onto history and switches to menu.
	Set(ctx context.Context, userID int64, menu string) error
	// Create initializes an unknown user and reports true; known users yield false.
	Create(ctx context.Context, userID int64) (bool, error)
	// GoBack rewinds the user's history by count steps.
	GoBack(ctx context.Context, userID int64, count BackCount) error
	// History returns a copy of the user's history, oldest first.
	History(ctx context.Context, userID int64) ([]string, error)
	// Lock serializes work for a single user. The returned func releases the lock.
	Lock(ctx context.Context, userID int64) (func(), error)
	// DefaultState is the menu assigned to new users.
	DefaultState() string
}
