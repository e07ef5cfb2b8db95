package logger

import (
	"strings"
	"time"
)

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// Known values for the status and outcome fields; unknown outcomes are dropped.
var (
	knownStatus  = []string{"ok", "fail", "skip", "retry", "rate_limited", "denied"}
	knownOutcome = []string{"ok", "fail", "denied", "rate_limited"}
)

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"state",
	"action",
	"cb_key",
	"outcome",
	"duration_ms",
	"messages",
	"kb",
	"run_id",
	"targets",
	"sent",
	"failed",
	"page",
	"pages",
	"count",
	"collection",
	"field",
	"reason",
	"payload",
	"username",
	"mode",
	"listen",
	"public_url",
	"driver",
	"db",
	"err",
	"err_code",
	"cause",
	"attempts",
}

// Status maps err to the status field value.
func Status(err error) string {
	if err != nil {
		return "fail"
	}
	return "ok"
}

// Took returns the rounded duration since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to whole milliseconds.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}
