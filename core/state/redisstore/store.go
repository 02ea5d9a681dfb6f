package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/state"
)

const (
	keyPatternState = "%s:state:%d"
	keyPatternLock  = "%s:lock:%d"

	lockRetry = 25 * time.Millisecond
	// optimistic transaction retries before giving up
	txRetries = 5
)

// ErrLockLost is returned when an unlock finds the lock already taken over.
var ErrLockLost = errors.New("redisstore: lock expired before release")

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store implements state.Store on Redis. Each user is a JSON record under one key.
type Store struct {
	client       *Client
	defaultState string
	prefix       string
	stateTTL     time.Duration
	lockTTL      time.Duration
}

var _ state.Store = (*Store)(nil)

// New returns a store using cfg's key prefix and TTLs.
func New(client *Client, defaultState string, cfg Config) *Store {
	cfg.Normalize()
	return &Store{
		client:       client,
		defaultState: defaultState,
		prefix:       cfg.KeyPrefix,
		stateTTL:     cfg.StateTTL,
		lockTTL:      cfg.LockTTL,
	}
}

// DefaultState returns the menu assigned to new users.
func (s *Store) DefaultState() string { return s.defaultState }

func (s *Store) stateKey(userID int64) string {
	return fmt.Sprintf(keyPatternState, s.prefix, userID)
}

func (s *Store) lockKey(userID int64) string {
	return fmt.Sprintf(keyPatternLock, s.prefix, userID)
}

func (s *Store) fresh() state.Record {
	return state.Record{Current: s.defaultState, History: []string{}}
}

func (s *Store) read(ctx context.Context, r redis.Cmdable, userID int64) (state.Record, bool, error) {
	data, err := r.Get(ctx, s.stateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.fresh(), false, nil
	}
	if err != nil {
		return state.Record{}, false, fmt.Errorf("get state: %w", err)
	}
	var rec state.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return state.Record{}, false, fmt.Errorf("unmarshal state: %w", err)
	}
	if rec.History == nil {
		rec.History = []string{}
	}
	return rec, true, nil
}

func (s *Store) encode(rec state.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return string(data), nil
}

// update runs fn in an optimistic WATCH/MULTI transaction on the user's key.
// fn returns the record to write and whether to write it.
func (s *Store) update(ctx context.Context, userID int64, fn func(rec state.Record, exists bool) (state.Record, bool, error)) error {
	key := s.stateKey(userID)
	txf := func(tx *redis.Tx) error {
		rec, exists, err := s.read(ctx, tx, userID)
		if err != nil {
			return err
		}
		next, write, err := fn(rec, exists)
		if err != nil || !write {
			return err
		}
		data, err := s.encode(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.stateTTL)
			return nil
		})
		return err
	}
	for i := 0; i < txRetries; i++ {
		err := s.client.Native().Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redisstore: user %d: %w", userID, redis.TxFailedErr)
}

// Get returns the current menu, or the default state for unknown users.
func (s *Store) Get(ctx context.Context, userID int64) (string, error) {
	rec, _, err := s.read(ctx, s.client.Native(), userID)
	if err != nil {
		return "", err
	}
	return rec.Current, nil
}

// Set pushes the current menu onto history and switches the user to menu.
func (s *Store) Set(ctx context.Context, userID int64, menu string) error {
	err := s.update(ctx, userID, func(rec state.Record, _ bool) (state.Record, bool, error) {
		return rec.Push(menu), true, nil
	})
	if err == nil {
		logger.Debug(ctx, "store", "state.set",
			slog.Int64("user_id", userID),
			slog.String("menu", menu),
			slog.String("backend", "redis"),
		)
	}
	return err
}

// Create registers a user on first contact.
func (s *Store) Create(ctx context.Context, userID int64) (bool, error) {
	data, err := s.encode(s.fresh())
	if err != nil {
		return false, err
	}
	created, err := s.client.SetNX(ctx, s.stateKey(userID), data, s.stateTTL)
	if err != nil {
		return false, fmt.Errorf("create state: %w", err)
	}
	return created, nil
}

// GoBack rewinds the user's history. Unknown users are left untouched.
func (s *Store) GoBack(ctx context.Context, userID int64, count state.BackCount) error {
	if err := count.Validate(); err != nil {
		return err
	}
	return s.update(ctx, userID, func(rec state.Record, exists bool) (state.Record, bool, error) {
		if !exists {
			return rec, false, nil
		}
		next, err := rec.Rewind(s.defaultState, count)
		return next, err == nil, err
	})
}

// History returns the user's history, oldest first.
func (s *Store) History(ctx context.Context, userID int64) ([]string, error) {
	rec, _, err := s.read(ctx, s.client.Native(), userID)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}

// Lock takes a per-user lock shared by every process using the same Redis.
func (s *Store) Lock(ctx context.Context, userID int64) (func(), error) {
	key := s.lockKey(userID)
	token := uuid.NewString()
	ticker := time.NewTicker(lockRetry)
	defer ticker.Stop()
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	return func() {
		// the request context may already be cancelled here
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		n, err := unlockScript.Run(relCtx, s.client.Native(), []string{key}, token).Int()
		if err == nil && n == 0 {
			err = ErrLockLost
		}
		if err != nil {
			logger.Warn(ctx, "store", "lock.release_failed",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
	}, nil
}

// Clear drops the user's record.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.stateKey(userID))
}
