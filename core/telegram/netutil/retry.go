// Package netutil holds network error helpers for the Bot API client.
package netutil

import (
	"context"
	"errors"
	"net"
	"regexp"
	"syscall"
)

// ShouldRetry reports whether a Bot API request failed with a transient network
// error: timeouts, dial failures and connection resets. Context cancellation is
// never retried.
func ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var tokenInURL = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]+`)

// Redact hides bot tokens embedded in Bot API URLs.
func Redact(s string) string {
	return tokenInURL.ReplaceAllString(s, "bot<redacted>")
}
