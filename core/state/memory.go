package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m3rciful/navmenu/core/logger"
)

const recordShards = 32

type recordShard struct {
	mu      sync.RWMutex
	records map[int64]*Record
}

// MemoryStore keeps navigation records in process memory. Records are sharded by user
// id so unrelated users do not serialize on one mutex.
type MemoryStore struct {
	defaultState string
	shards       [recordShards]recordShard
	locks        *KeyLock
}

// NewMemoryStore constructs an in-memory Store for tests, development and single-process bots.
func NewMemoryStore(defaultState string) *MemoryStore {
	s := &MemoryStore{
		defaultState: defaultState,
		locks:        NewKeyLock(),
	}
	for i := range s.shards {
		s.shards[i].records = make(map[int64]*Record)
	}
	return s
}

func (s *MemoryStore) shard(userID int64) *recordShard {
	return &s.shards[uint64(userID)%recordShards]
}

// DefaultState returns the menu assigned to new users.
func (s *MemoryStore) DefaultState() string {
	return s.defaultState
}

// Get returns the current menu for a user, or the default state if the user is unknown.
func (s *MemoryStore) Get(_ context.Context, userID int64) (string, error) {
	sh := s.shard(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if rec, ok := sh.records[userID]; ok {
		return rec.Current, nil
	}
	return s.defaultState, nil
}

// Set pushes the current menu onto history and switches the user to menu.
func (s *MemoryStore) Set(ctx context.Context, userID int64, menu string) error {
	sh := s.shard(userID)
	sh.mu.Lock()
	rec, ok := sh.records[userID]
	if !ok {
		rec = &Record{Current: s.defaultState, History: []string{}}
	}
	from := rec.Current
	next := rec.Push(menu)
	sh.records[userID] = &next
	depth := len(next.History)
	sh.mu.Unlock()

	logger.Debug(ctx, "store", "state.set",
		slog.Int64("user_id", userID),
		slog.String("from", from),
		slog.String("menu", menu),
		slog.Int("depth", depth),
	)
	return nil
}

// Create registers a user on first contact. It reports false for already known users.
func (s *MemoryStore) Create(ctx context.Context, userID int64) (bool, error) {
	sh := s.shard(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.records[userID]; ok {
		return false, nil
	}
	sh.records[userID] = &Record{Current: s.defaultState, History: []string{}}
	logger.Debug(ctx, "store", "state.create",
		slog.Int64("user_id", userID),
		slog.String("menu", s.defaultState),
	)
	return true, nil
}

// GoBack rewinds the user's history. Unknown users are left untouched.
func (s *MemoryStore) GoBack(ctx context.Context, userID int64, count BackCount) error {
	if err := count.Validate(); err != nil {
		return err
	}
	sh := s.shard(userID)
	sh.mu.Lock()
	rec, ok := sh.records[userID]
	if !ok {
		sh.mu.Unlock()
		return nil
	}
	from := rec.Current
	next, err := rec.Rewind(s.defaultState, count)
	if err != nil {
		sh.mu.Unlock()
		return err
	}
	sh.records[userID] = &next
	sh.mu.Unlock()

	logger.Debug(ctx, "store", "state.back",
		slog.Int64("user_id", userID),
		slog.String("from", from),
		slog.String("menu", next.Current),
		slog.String("count", count.String()),
		slog.Int("depth", len(next.History)),
	)
	return nil
}

// History returns a copy of the user's history, oldest first.
func (s *MemoryStore) History(_ context.Context, userID int64) ([]string, error) {
	sh := s.shard(userID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[userID]
	if !ok {
		return []string{}, nil
	}
	return rec.Clone().History, nil
}

// Lock serializes navigation for a single user.
func (s *MemoryStore) Lock(ctx context.Context, userID int64) (func(), error) {
	return s.locks.Lock(ctx, userID)
}
