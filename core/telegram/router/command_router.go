package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/navmenu/core/logger"
	tg "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/telegram/middleware"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	}

	names := reg.CommandNames()
	routes := make([]tg.Route, 0, len(names))
	for _, cmd := range names {
		def, _ := reg.Command(cmd)
		h := guard(summarized(normalizeHandlerName(cmd), def.Handler))
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd,
			Handler:  h,
		})
	}

	logger.Info(logger.Background(), "tg.wire", "complete",
		slog.Int("commands", len(names)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)

	return routes
}

func summarized(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return handleWithSummary(c, name, time.Now(), "", "", func() error {
			return h(c)
		})
	}
}
