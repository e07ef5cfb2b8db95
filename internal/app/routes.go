package app

import (
	"context"
	"log/slog"

	"github.com/m3rciful/eventbot/core/logger"
	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/commands"
	"github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/core/telegram/router"
	"github.com/m3rciful/eventbot/internal/admin"

	tele "gopkg.in/telebot.v4"
)

var adminDescriptions = map[string]string{
	admin.CmdAdmin:     "Панель администратора",
	admin.CmdBlock:     "Заблокировать пользователя",
	admin.CmdUnblock:   "Разблокировать пользователя",
	admin.CmdMsg:       "Написать пользователю",
	admin.CmdStats:     "Статистика",
	admin.CmdBroadcast: "Рассылка текста",
	admin.CmdExport:    "Выгрузить записи в CSV",
}

// Registry binds every command and callback kind to its handler.
func (a *App) Registry() (*tg.Registry, error) {
	reg := tg.NewRegistry()
	fb := fallbacks{t: a.texts}

	cmds := map[string]commands.Command{
		"/start":  {Handler: a.machine.OnStart, Description: "Записаться на мероприятие"},
		"/cancel": {Handler: a.machine.OnCancel, Description: "Отменить текущее действие"},
		"/help": {Handler: func(c tele.Context) error {
			return helpers.SendHTML(c, a.texts.User.Help)
		}, Description: "Помощь"},
	}
	for _, name := range admin.Commands() {
		cmds[name] = commands.Command{
			Handler:     a.admin.CommandHandler(name),
			Description: adminDescriptions[name],
			AdminOnly:   true,
		}
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return nil, err
		}
	}

	for _, kind := range admin.Kinds() {
		if err := reg.RegisterCallback(kind, a.admin.CallbackHandler); err != nil {
			return nil, err
		}
	}
	if err := reg.RegisterCallback(callbacks.KindCancel, a.machine.OnCancel); err != nil {
		return nil, err
	}
	if err := reg.RegisterCallback(callbacks.KindRegister, a.machine.OnStart); err != nil {
		return nil, err
	}
	reg.SetCallbackNotFound(fb.UnknownCallback())
	reg.SetUnknownCommand(fb.UnknownCommand())
	reg.SetTextFallback(a.machine.HandleText)
	return reg, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	reg, err := a.Registry()
	if err != nil {
		return tg.RunOptions{}, err
	}
	fb := fallbacks{t: a.texts}
	core := a.cfg.CoreConfig()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       core.Telegram.AdminID,
		OnAdminReject: fb.AdminDenied(),
	})
	routes = append(routes, router.CallbackRoute(reg))
	routes = append(routes, router.MessageRoutes(a.machine, reg, fb)...)

	return tg.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(core, a.sessions, fb.rateLimited),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.out.Bind(rt.Bot, rt.Dispatcher)
			logger.Info(ctx, "app", "messenger.bound", slog.String("username", a.out.Username()))
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.engine.Wait()
			if rt.Dispatcher != nil {
				logger.Info(ctx, "app", "dispatcher.stats", slog.Uint64("failed", rt.Dispatcher.ErrorCount()))
			}
			return nil
		},
	}, nil
}
