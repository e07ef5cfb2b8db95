// Package broadcast fans one announcement out to every eligible user.
//
// Recipients are captured once when a run starts. Sends are sequential and paced by a
// token-bucket limiter; a failed send is counted and the run moves on.
package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/internal/messenger"
	"github.com/m3rciful/eventbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

// Targets yields the recipient snapshot for a run.
type Targets interface {
	BroadcastTargets() []int64
}

// Sender is the part of messenger.Messenger the engine needs.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo messenger.Photo, caption string, markup *tele.ReplyMarkup) (int, error)
}

// Payload is either a text or a photo with an optional caption.
type Payload struct {
	Text    string
	Photo   messenger.Photo
	Caption string
}

// IsPhoto reports whether the payload carries an image.
func (p Payload) IsPhoto() bool { return p.Photo.FileID != "" || len(p.Photo.Data) > 0 }

func (p Payload) kind() string {
	if p.IsPhoto() {
		return "photo"
	}
	return "text"
}

// Result summarises a finished run. Sent+Failed always equals Total.
type Result struct {
	RunID    string
	Total    int
	Sent     int
	Failed   int
	Duration time.Duration
}

// DeliveryError is one rejected send. It is logged and counted, never returned.
type DeliveryError struct {
	ChatID int64
	Err    error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("deliver to %d: %v", e.ChatID, e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }

// Options tunes pacing and progress reporting.
type Options struct {
	// Delay is the minimum gap between two sends. Zero disables throttling.
	Delay time.Duration
	// ProgressEvery sends a progress note to the operator after this many recipients.
	ProgressEvery int
}

// Engine runs broadcasts. The zero value is not usable; call New.
type Engine struct {
	targets Targets
	out     Sender
	msgs    *texts.Admin
	opts    Options

	wg sync.WaitGroup
}

// New builds an Engine. msgs provides the started, progress and summary templates.
func New(targets Targets, out Sender, msgs *texts.Admin, opts Options) *Engine {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	return &Engine{targets: targets, out: out, msgs: msgs, opts: opts}
}

// Start runs the broadcast in the background and returns immediately.
// The run is detached from ctx cancellation and always completes.
func (e *Engine) Start(ctx context.Context, operator int64, p Payload) {
	ctx = logger.Detach(ctx)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer logger.Recover(ctx, "broadcast", "broadcast.panic")
		e.Run(ctx, operator, p)
	}()
}

// Wait blocks until every started run has finished.
func (e *Engine) Wait() { e.wg.Wait() }

// Run delivers p to the current target snapshot and reports to operator.
func (e *Engine) Run(ctx context.Context, operator int64, p Payload) Result {
	ctx = logger.Detach(ctx)
	start := time.Now()
	recipients := e.targets.BroadcastTargets()
	res := Result{RunID: uuid.NewString(), Total: len(recipients)}

	logger.Info(ctx, "broadcast", "broadcast.start",
		slog.String("run_id", res.RunID),
		slog.String("payload", p.kind()),
		slog.Int("targets", res.Total),
	)
	e.report(ctx, operator, texts.Render(e.msgs.BroadcastStarted, map[string]any{"targets": res.Total}))

	limiter := e.limiter()
	for i, chatID := range recipients {
		// the limiter has no deadline and the context is detached, so Wait only paces
		_ = limiter.Wait(ctx)
		if err := e.deliver(ctx, chatID, p); err != nil {
			res.Failed++
			logger.Warn(ctx, "broadcast", "broadcast.deliver",
				slog.String("status", "fail"),
				slog.String("run_id", res.RunID),
				slog.String("err_code", "delivery"),
				logger.Err(&DeliveryError{ChatID: chatID, Err: err}),
			)
		} else {
			res.Sent++
		}

		done := i + 1
		if done%e.opts.ProgressEvery == 0 && done < res.Total {
			e.report(ctx, operator, texts.Render(e.msgs.BroadcastProgress, map[string]any{
				"done":   done,
				"total":  res.Total,
				"sent":   res.Sent,
				"failed": res.Failed,
			}))
		}
	}

	res.Duration = logger.Took(start)
	logger.Info(ctx, "broadcast", "broadcast.done",
		slog.String("run_id", res.RunID),
		slog.Int("targets", res.Total),
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed),
		slog.Duration("duration", res.Duration),
	)
	e.report(ctx, operator, texts.Render(e.msgs.BroadcastDone, map[string]any{
		"sent":   res.Sent,
		"failed": res.Failed,
		"total":  res.Total,
	}))
	return res
}

func (e *Engine) limiter() *rate.Limiter {
	if e.opts.Delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(e.opts.Delay), 1)
}

func (e *Engine) deliver(ctx context.Context, chatID int64, p Payload) error {
	if p.IsPhoto() {
		_, err := e.out.SendPhoto(ctx, chatID, p.Photo, p.Caption, nil)
		return err
	}
	_, err := e.out.SendText(ctx, chatID, p.Text, nil)
	return err
}

// report tells the operator how the run is going. Its failures never affect the run.
func (e *Engine) report(ctx context.Context, operator int64, text string) {
	if operator == 0 {
		return
	}
	if _, err := e.out.SendText(ctx, operator, text, nil); err != nil {
		logger.Warn(ctx, "broadcast", "broadcast.report", slog.String("status", "fail"), logger.Err(err))
	}
}
