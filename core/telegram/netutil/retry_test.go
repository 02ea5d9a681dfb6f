package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad request"), false},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), false},
		{"timeout in url error", &url.Error{Op: "Post", URL: "https://x", Err: timeoutErr{}}, true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("no route")}, true},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"read other", &net.OpError{Op: "read", Err: errors.New("eof")}, false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("%s: ShouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRedact(t *testing.T) {
	in := `Post "https://api.telegram.org/bot123456:AAH-x_yz/getUpdates": timeout`
	want := `Post "https://api.telegram.org/bot<redacted>/getUpdates": timeout`
	if got := Redact(in); got != want {
		t.Fatalf("Redact = %q", got)
	}
}
