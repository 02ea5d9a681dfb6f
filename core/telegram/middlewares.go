package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/navmenu/core/config"
	"github.com/m3rciful/navmenu/core/telegram/middleware"
)

// DefaultMiddlewares builds the bot-wide chain: recover, an optional per-user
// rate limit, request logging and reply metrics. onLimited may be nil.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if rl, ok := rateLimit(cfg, onLimited); ok {
		chain = append(chain, rl)
	}
	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

// rateLimit builds the rate_limit stage from normalized config; ok is false
// when limiting is disabled.
func rateLimit(cfg *coreconfig.Config, onLimited tele.HandlerFunc) (Middleware, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return Middleware{}, false
	}
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}
	limit := middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:   exclude,
		OnLimited: onLimited,
	})
	return Middleware{Name: "rate_limit", Use: limit}, true
}
