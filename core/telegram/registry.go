package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds the commands and callback handlers of a bot.
type Registry struct {
	mu               sync.RWMutex
	commands         map[string]commands.Command
	callbacks        map[callbacks.Kind]tele.HandlerFunc
	callbackNotFound tele.HandlerFunc
	unknownCommand   tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[callbacks.Kind]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		},
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if name == "" || name[0] != '/' || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "",
			slog.String("event", "register.command.skip"),
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return fmt.Errorf("telegram: invalid command %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("telegram: command already registered: %s", name)
	}
	r.commands[name] = cmd
	return nil
}

// LookupCommand resolves text such as "/block 42" or "/start@mybot" to a command by name or alias.
func (r *Registry) LookupCommand(text string) (string, commands.Command, bool) {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// ListCommands returns commands sorted by name. visibleOnly drops hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for name, meta := range r.Commands() {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// RegisterCallback binds h to callback actions of kind.
func (r *Registry) RegisterCallback(kind callbacks.Kind, h tele.HandlerFunc) error {
	if kind == callbacks.KindUnknown || h == nil {
		return fmt.Errorf("telegram: invalid callback registration for %s", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[kind]; exists {
		return fmt.Errorf("telegram: callback already registered: %s", kind)
	}
	r.callbacks[kind] = h
	return nil
}

// Callback returns the handler bound to kind.
func (r *Registry) Callback(kind callbacks.Kind) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[kind]
	return h, ok
}

// CallbackCount returns the number of bound callback kinds.
func (r *Registry) CallbackCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks)
}

// SetCallbackNotFound replaces the handler for undecodable or unbound callbacks.
func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

// CallbackNotFound returns the handler for undecodable or unbound callbacks.
func (r *Registry) CallbackNotFound() tele.HandlerFunc { return r.callbackNotFound }

// SetUnknownCommand sets the handler for slash-prefixed text that matches no command.
func (r *Registry) SetUnknownCommand(h tele.HandlerFunc) { r.unknownCommand = h }

// UnknownCommand returns the handler for unmatched slash commands.
func (r *Registry) UnknownCommand() tele.HandlerFunc { return r.unknownCommand }

// SetTextFallback sets the handler for free text outside any conversation.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) { r.textFallback = h }

// TextFallback returns the free-text fallback.
func (r *Registry) TextFallback() tele.HandlerFunc { return r.textFallback }

// InitBotCommands publishes the public command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "",
			slog.String("event", "commands.set"),
			slog.String("status", "fail"),
			logger.Err(err),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "",
		slog.String("event", "commands.set"),
		slog.Int("count", len(list)),
	)
}
