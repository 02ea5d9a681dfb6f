package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/navmenu/core/action"
	"github.com/m3rciful/navmenu/core/bootstrap"
	"github.com/m3rciful/navmenu/core/definition"
	"github.com/m3rciful/navmenu/core/item"
	"github.com/m3rciful/navmenu/core/menu"
	"github.com/m3rciful/navmenu/core/message"
)

const counterTimeout = 2 * time.Second

// baseFunctions holds the callbacks that need no infrastructure.
func baseFunctions(adminID int64) definition.Functions {
	return definition.Functions{
		Predicates: map[string]item.Predicate{
			"is_admin": func(p message.Payload) (bool, error) {
				id, ok := p["user_id"].(int64)
				return ok && adminID != 0 && id == adminID, nil
			},
		},
		Enter: map[string]menu.EnterFunc{
			"settings_enter": func(message.Payload) (*message.Message, error) {
				return message.New("Changes apply immediately."), nil
			},
		},
	}
}

type clickCounter interface {
	Incr(ctx context.Context, userID int64) (int64, error)
}

type memoryCounter struct {
	mu     sync.Mutex
	counts map[int64]int64
}

func (c *memoryCounter) Incr(_ context.Context, userID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID]++
	return c.counts[userID], nil
}

type redisCounter struct {
	client redis.UniversalClient
	prefix string
}

func (c redisCounter) Incr(ctx context.Context, userID int64) (int64, error) {
	return c.client.Incr(ctx, fmt.Sprintf("%s:clicks:%d", c.prefix, userID)).Result()
}

// clicksModule registers count_clicks. Counts survive restarts when the Redis backend is active.
func clicksModule(prefix string) bootstrap.Module {
	return bootstrap.ModuleFunc(func(_ context.Context, infra bootstrap.Infra, fns *definition.Functions) error {
		var counter clickCounter = &memoryCounter{counts: make(map[int64]int64)}
		if infra.Redis != nil {
			if prefix == "" {
				prefix = "navmenu"
			}
			counter = redisCounter{client: infra.Redis.Native(), prefix: prefix}
		}
		fns.Actions = map[string]action.Func{
			"count_clicks": countClicks(counter),
		}
		return nil
	})
}

func countClicks(counter clickCounter) action.Func {
	return func(p message.Payload) (any, error) {
		id, ok := p["user_id"].(int64)
		if !ok {
			return nil, fmt.Errorf("count_clicks: user_id missing")
		}
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()
		n, err := counter.Incr(ctx, id)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			return "first", nil
		}
		return "again", nil
	}
}
