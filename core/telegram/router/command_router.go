package router

import (
	"log/slog"

	"github.com/m3rciful/eventbot/core/logger"
	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures the operator gate on admin-only commands.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes returns one route per registered command.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	gate := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		h := def.Handler
		if def.AdminOnly {
			h = gate(h)
		}
		label := "command." + handlerName(name)
		wrapped := func(c tele.Context) error {
			return handleWithSummary(c, label, h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: wrapped})
		for _, alias := range def.Aliases {
			routes = append(routes, tg.Route{Endpoint: "/" + alias, Handler: wrapped})
		}
	}

	logger.TWire.Info("",
		slog.String("event", "routes.commands"),
		slog.Int("count", len(cmds)),
		slog.Int("callbacks", reg.CallbackCount()),
	)
	return routes
}
