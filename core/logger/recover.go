package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover logs a panic of the calling goroutine and stops it from unwinding further.
// It must be deferred directly: defer logger.Recover(ctx, "broadcast", "broadcast.panic").
func Recover(ctx context.Context, component, event string) {
	r := recover()
	if r == nil {
		return
	}
	Error(ctx, component, event,
		slog.String("status", "fail"),
		slog.String("err", SanitizeLimit(fmt.Sprint(r), 256)),
		slog.String("stack", string(debug.Stack())),
	)
}
