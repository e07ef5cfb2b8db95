package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/telegram/middleware"
	"github.com/m3rciful/eventbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain: recover, rate limit, logging, reply metrics and session state.
func DefaultMiddlewares(cfg *coreconfig.Config, sessions state.Manager, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(kind)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   ex,
				OnLimited: onLimited,
			}),
		})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
	if sessions != nil {
		mws = append(mws, Middleware{Name: "session", Use: state.WithSession(sessions)})
	}
	return mws
}
