package state

import (
	"context"
	"sync"
)

const lockShards = 64

type keyEntry struct {
	ch   chan struct{}
	refs int
}

type lockShard struct {
	mu      sync.Mutex
	entries map[int64]*keyEntry
}

// KeyLock is a set of per-key mutexes. Keys in different shards never contend on a
// shared mutex and entries are dropped once no goroutine holds or waits for them.
type KeyLock struct {
	shards [lockShards]lockShard
}

// NewKeyLock returns an empty KeyLock.
func NewKeyLock() *KeyLock {
	l := &KeyLock{}
	for i := range l.shards {
		l.shards[i].entries = make(map[int64]*keyEntry)
	}
	return l
}

func (l *KeyLock) shard(key int64) *lockShard {
	idx := uint64(key) % lockShards
	return &l.shards[idx]
}

// Lock blocks until key is free or ctx is done.
func (l *KeyLock) Lock(ctx context.Context, key int64) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sh := l.shard(key)

	sh.mu.Lock()
	e, ok := sh.entries[key]
	if !ok {
		e = &keyEntry{ch: make(chan struct{}, 1)}
		sh.entries[key] = e
	}
	e.refs++
	sh.mu.Unlock()

	release := func() {
		sh.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(sh.entries, key)
		}
		sh.mu.Unlock()
	}

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		release()
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			release()
		})
	}, nil
}

// held reports how many keys currently have holders or waiters.
func (l *KeyLock) held() int {
	n := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}
