// Package pgstore keeps navigation state in PostgreSQL.
//
// The nav_states table is created by the embedded migrations in core/database.
package pgstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/state"
)

// lockNamespace separates navigation advisory locks from any others in the database.
const lockNamespace int32 = 0x6e61

type row struct {
	UserID  int64          `db:"user_id"`
	Current string         `db:"current"`
	History pq.StringArray `db:"history"`
}

// Store implements state.Store on a nav_states table.
type Store struct {
	db           *sqlx.DB
	defaultState string
}

var _ state.Store = (*Store)(nil)

// New returns a store on db.
func New(db *sqlx.DB, defaultState string) *Store {
	return &Store{db: db, defaultState: defaultState}
}

// DefaultState returns the menu assigned to new users.
func (s *Store) DefaultState() string { return s.defaultState }

func (s *Store) load(ctx context.Context, q sqlx.QueryerContext, userID int64, forUpdate bool) (state.Record, bool, error) {
	query := `SELECT user_id, current, history FROM nav_states WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var r row
	err := sqlx.GetContext(ctx, q, &r, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return state.Record{Current: s.defaultState, History: []string{}}, false, nil
	}
	if err != nil {
		return state.Record{}, false, fmt.Errorf("load state: %w", err)
	}
	hist := []string(r.History)
	if hist == nil {
		hist = []string{}
	}
	return state.Record{Current: r.Current, History: hist}, true, nil
}

func (s *Store) save(ctx context.Context, tx *sqlx.Tx, userID int64, rec state.Record) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO nav_states (user_id, current, history)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET current = EXCLUDED.current, history = EXCLUDED.history, updated_at = now()`,
		userID, rec.Current, pq.StringArray(rec.History))
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// modify runs fn on the user's row inside a transaction holding a row lock.
func (s *Store) modify(ctx context.Context, userID int64, fn func(rec state.Record, exists bool) (state.Record, bool, error)) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec, exists, err := s.load(ctx, tx, userID, true)
	if err != nil {
		return err
	}
	next, write, err := fn(rec, exists)
	if err != nil {
		return err
	}
	if write {
		if err = s.save(ctx, tx, userID, next); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Get returns the current menu, or the default state for unknown users.
func (s *Store) Get(ctx context.Context, userID int64) (string, error) {
	rec, _, err := s.load(ctx, s.db, userID, false)
	return rec.Current, err
}

// Set pushes the current menu onto history and switches the user to menu.
func (s *Store) Set(ctx context.Context, userID int64, menu string) error {
	err := s.modify(ctx, userID, func(rec state.Record, _ bool) (state.Record, bool, error) {
		return rec.Push(menu), true, nil
	})
	if err == nil {
		logger.Debug(ctx, "store", "state.set",
			slog.Int64("user_id", userID),
			slog.String("menu", menu),
			slog.String("backend", "postgres"),
		)
	}
	return err
}

// Create registers a user on first contact.
func (s *Store) Create(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO nav_states (user_id, current, history)
		VALUES ($1, $2, '{}')
		ON CONFLICT (user_id) DO NOTHING`, userID, s.defaultState)
	if err != nil {
		return false, fmt.Errorf("create state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create state: %w", err)
	}
	return n == 1, nil
}

// GoBack rewinds the user's history. Unknown users are left untouched.
func (s *Store) GoBack(ctx context.Context, userID int64, count state.BackCount) error {
	if err := count.Validate(); err != nil {
		return err
	}
	return s.modify(ctx, userID, func(rec state.Record, exists bool) (state.Record, bool, error) {
		if !exists {
			return rec, false, nil
		}
		next, err := rec.Rewind(s.defaultState, count)
		return next, err == nil, err
	})
}

// History returns the user's history, oldest first.
func (s *Store) History(ctx context.Context, userID int64) ([]string, error) {
	rec, _, err := s.load(ctx, s.db, userID, false)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}

// Lock takes a session-level advisory lock for the user on a dedicated connection.
// The connection returns to the pool when the lock is released.
func (s *Store) Lock(ctx context.Context, userID int64) (func(), error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock conn: %w", err)
	}
	key := int32(userID) ^ int32(userID>>32)
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1, $2)`, lockNamespace, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	return func() {
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(relCtx, `SELECT pg_advisory_unlock($1, $2)`, lockNamespace, key); err != nil {
			logger.Warn(ctx, "store", "lock.release_failed",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
			// a session lock is only dropped with its connection
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
		_ = conn.Close()
	}, nil
}

// Clear drops the user's row.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM nav_states WHERE user_id = $1`, userID)
	return err
}
