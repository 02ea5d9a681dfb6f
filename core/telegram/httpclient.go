package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/telegram/netutil"
)

// HTTPClientOptions tune the Bot API client. Zero values use defaults.
type HTTPClientOptions struct {
	// LongPollTimeout is added to the request timeout so getUpdates is not cut short.
	LongPollTimeout time.Duration
	RetryAttempts   int
	RetryBackoff    time.Duration
}

const (
	defaultRequestTimeout = 20 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBackoff   = 2 * time.Second
)

// BuildHTTPClient returns an HTTP client for Bot API calls that retries
// transient network failures.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: defaultRequestTimeout + opts.LongPollTimeout,
		Transport: &retryTransport{
			base:     base,
			attempts: opts.RetryAttempts,
			backoff:  opts.RetryBackoff,
		},
	}
}

// retryTransport retries requests failing with retryable network errors,
// waiting backoff*n before attempt n+1.
type retryTransport struct {
	base     http.RoundTripper
	attempts int
	backoff  time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	var lastErr error
	for attempt := 1; ; attempt++ {
		cur := req
		if attempt > 1 {
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			cur = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				cur.Body = body
			}
		}

		resp, err := base.RoundTrip(cur)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt >= t.attempts || !netutil.ShouldRetry(err) {
			return nil, lastErr
		}

		delay := t.backoff * time.Duration(attempt)
		logger.Debug(req.Context(), "tg", "http.retry",
			slog.Int("attempt", attempt),
			slog.Duration("duration_ms", logger.RoundMS(delay)),
			slog.String("err", logger.SanitizeLimit(netutil.Redact(err.Error()), 256)),
		)
		timer := time.NewTimer(delay)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}
