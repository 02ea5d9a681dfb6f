package state

import (
	"context"
	"time"
)

type lockTimeoutStore struct {
	Store
	timeout time.Duration
}

// WithLockTimeout bounds how long Lock waits on s. A non-positive timeout returns s unchanged.
func WithLockTimeout(s Store, timeout time.Duration) Store {
	if timeout <= 0 || s == nil {
		return s
	}
	return &lockTimeoutStore{Store: s, timeout: timeout}
}

func (s *lockTimeoutStore) Lock(ctx context.Context, userID int64) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Lock(ctx, userID)
}
