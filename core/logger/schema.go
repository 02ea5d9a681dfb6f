package logger

import (
	"log/slog"
	"strings"
)

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

// parseLevel maps a config level name to a slog level; unknown names mean info.
func parseLevel(name string) slog.Level {
	switch levelNames[strings.ToLower(strings.TrimSpace(name))] {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func normalizeLevel(level string) string {
	if mapped, ok := levelNames[strings.ToLower(level)]; ok {
		return mapped
	}
	if level == "" {
		return "INFO"
	}
	return strings.ToUpper(level)
}

// Enumerated fields. Unknown status values are kept verbatim; unknown outcomes are dropped.
var (
	knownStatus  = []string{"ok", "fail", "skip", "retry", "rate_limited", "cancelled", "invalid"}
	knownOutcome = []string{"ok", "fail", "cancelled", "rate_limited", "invalid"}
)

func oneOf(v string, allowed []string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v, true
		}
	}
	return v, false
}

// defaultKeyOrder puts identity first, then request scope, then navigation,
// then storage and errors. Keys not listed follow alphabetically.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"transport",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"menu",
	"from",
	"to",
	"action",
	"via",
	"messages",
	"buttons",
	"results",
	"depth",
	"count",
	"lang",
	"username",
	"mode",
	"listen",
	"public_url",
	"backend",
	"db",
	"host",
	"port",
	"err",
	"err_code",
	"attempt",
}
