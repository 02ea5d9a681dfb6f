package logger

import (
	"strings"
	"time"
)

// RoundMS rounds d to whole milliseconds; negative durations become 0.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Took is RoundMS(time.Since(start)).
func Took(start time.Time) time.Duration { return RoundMS(time.Since(start)) }

// SummarizeStrings joins at most limit values with ", " and reports whether any were cut.
func SummarizeStrings(values []string, limit int) (string, bool) {
	n := min(max(limit, 0), len(values))
	return strings.Join(values[:n], ", "), n < len(values)
}
