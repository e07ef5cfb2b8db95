package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/format"
	"github.com/m3rciful/eventbot/internal/broadcast"
	"github.com/m3rciful/eventbot/internal/messenger"
	"github.com/m3rciful/eventbot/internal/report"
	"github.com/m3rciful/eventbot/internal/texts"

	qrcode "github.com/skip2/go-qrcode"
)

// Operator command names.
const (
	CmdAdmin     = "/admin"
	CmdBlock     = "/block"
	CmdUnblock   = "/unblock"
	CmdMsg       = "/msg"
	CmdStats     = "/stats"
	CmdBroadcast = "/broadcast"
	CmdExport    = "/export"
)

// qrSize is the poster edge in pixels.
const qrSize = 512

type commandFunc func(r *Router, ctx context.Context, chatID int64, args string) error

var commandTable = map[string]commandFunc{
	CmdAdmin:     (*Router).cmdAdmin,
	CmdBlock:     (*Router).cmdBlock,
	CmdUnblock:   (*Router).cmdUnblock,
	CmdMsg:       (*Router).cmdMsg,
	CmdStats:     (*Router).cmdStats,
	CmdBroadcast: (*Router).cmdBroadcast,
	CmdExport:    (*Router).cmdExport,
}

// Commands lists the operator command names.
func Commands() []string {
	return []string{CmdAdmin, CmdBlock, CmdUnblock, CmdMsg, CmdStats, CmdBroadcast, CmdExport}
}

// Command runs an operator command. args is the text after the command name.
// Non-operators get a denial and nothing changes.
func (r *Router) Command(ctx context.Context, chatID int64, name, args string) error {
	if err := r.Authorize(chatID); err != nil {
		return r.deny(ctx, chatID, name)
	}
	defer r.Sessions.Lock(chatID)()
	fn, ok := commandTable[name]
	if !ok {
		return fmt.Errorf("admin: unknown command %q", name)
	}
	return fn(r, ctx, chatID, strings.TrimSpace(args))
}

func (r *Router) cmdAdmin(ctx context.Context, chatID int64, _ string) error {
	r.remember(0)
	return r.ShowMenu(ctx, chatID)
}

func (r *Router) cmdStats(ctx context.Context, chatID int64, _ string) error {
	return r.send(ctx, chatID, texts.Render(r.Texts.Admin.Stats, r.statsVars()))
}

func parseTarget(args string) (int64, string, bool) {
	head, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil || id == 0 {
		return 0, "", false
	}
	return id, strings.TrimSpace(rest), true
}

func (r *Router) cmdBlock(ctx context.Context, chatID int64, args string) error {
	target, _, ok := parseTarget(args)
	if !ok {
		return r.send(ctx, chatID, r.Texts.Admin.BlockUsage)
	}
	if err := r.block(ctx, chatID, target); err != nil {
		return err
	}
	return r.send(ctx, chatID, texts.Render(r.Texts.Admin.BlockedOK, map[string]any{"chat_id": target}))
}

func (r *Router) cmdUnblock(ctx context.Context, chatID int64, args string) error {
	target, _, ok := parseTarget(args)
	if !ok {
		return r.send(ctx, chatID, r.Texts.Admin.UnblockUsage)
	}
	if err := r.unblock(ctx, chatID, target); err != nil {
		return err
	}
	return r.send(ctx, chatID, texts.Render(r.Texts.Admin.UnblockedOK, map[string]any{"chat_id": target}))
}

func (r *Router) block(ctx context.Context, chatID, target int64) error {
	changed, err := r.Store.Block(ctx, target)
	logger.Info(ctx, "admin", "user.blocked", slog.Int64("target", target), slog.Bool("changed", changed))
	if changed {
		// a blocked chat must not keep a half-filled form
		r.Sessions.Clear(target)
	}
	return r.persisted(ctx, chatID, err)
}

func (r *Router) unblock(ctx context.Context, chatID, target int64) error {
	changed, err := r.Store.Unblock(ctx, target)
	logger.Info(ctx, "admin", "user.unblocked", slog.Int64("target", target), slog.Bool("changed", changed))
	return r.persisted(ctx, chatID, err)
}

func (r *Router) cmdMsg(ctx context.Context, chatID int64, args string) error {
	target, text, ok := parseTarget(args)
	if !ok || text == "" {
		return r.send(ctx, chatID, r.Texts.Admin.MsgUsage)
	}
	if _, err := r.Out.SendText(ctx, target, format.Escape(text), nil); err != nil {
		logger.Warn(ctx, "admin", "direct.send", slog.String("status", "fail"), slog.Int64("target", target), logger.Err(err))
		return r.send(ctx, chatID, texts.Render(r.Texts.Admin.MsgFailed, map[string]any{"err": format.Escape(err.Error())}))
	}
	return r.send(ctx, chatID, r.Texts.Admin.MsgSent)
}

func (r *Router) cmdBroadcast(ctx context.Context, chatID int64, args string) error {
	if args == "" {
		return r.send(ctx, chatID, r.Texts.Admin.BroadcastUsage)
	}
	r.Sessions.Clear(chatID)
	r.Broadcast.Start(ctx, chatID, broadcast.Payload{Text: format.Escape(args)})
	return nil
}

func (r *Router) cmdExport(ctx context.Context, chatID int64, _ string) error {
	return r.export(ctx, chatID)
}

func (r *Router) export(ctx context.Context, chatID int64) error {
	regs := r.Store.Registrations()
	if len(regs) == 0 {
		return r.send(ctx, chatID, r.Texts.Admin.ExportEmpty)
	}
	data, err := report.CSV(regs)
	if err != nil {
		return err
	}
	logger.Info(ctx, "admin", "registrations.exported", slog.Int("count", len(regs)))
	return r.Out.SendDocument(ctx, chatID, messenger.Document{
		Name:    report.FileName(r.Now()),
		MIME:    report.MIME,
		Data:    data,
		Caption: texts.Render(r.Texts.Admin.ExportCaption, map[string]any{"count": len(regs)}),
	})
}

// DeepLink returns the registration link for the bot, or "" before the bot is known.
func (r *Router) DeepLink() string {
	name := r.Out.Username()
	if name == "" {
		return ""
	}
	return "https://t.me/" + name + "?start=reg"
}

func (r *Router) sendQR(ctx context.Context, chatID int64) error {
	link := r.DeepLink()
	if link == "" {
		return r.send(ctx, chatID, r.Texts.Admin.QRUnavailable)
	}
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("admin: encode qr: %w", err)
	}
	caption := texts.Render(r.Texts.Admin.QRCaption, map[string]any{"link": format.Escape(link)})
	_, err = r.Out.SendPhoto(ctx, chatID, messenger.Photo{Data: png}, caption, nil)
	return err
}
