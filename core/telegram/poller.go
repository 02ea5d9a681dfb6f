package telegram

import (
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/navmenu/core/config"
)

// DefaultLongPollTimeout applies when the config leaves the long-poll timeout at zero.
const DefaultLongPollTimeout = 10 * time.Second

// menuUpdates are the update types a menu bot consumes.
var menuUpdates = []string{"message", "callback_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode         string
	LongPollTimeout time.Duration
	Webhook         WebhookOptions
}

// PollerOptionsFrom derives poller settings from the core config.
func PollerOptionsFrom(cfg *coreconfig.Config) PollerOptions {
	return PollerOptions{
		RunMode:         cfg.Telegram.RunMode,
		LongPollTimeout: longPollTimeout(cfg),
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}
}

func longPollTimeout(cfg *coreconfig.Config) time.Duration {
	if cfg.Telegram.LongPollTimeoutSeconds > 0 {
		return time.Duration(cfg.Telegram.LongPollTimeoutSeconds) * time.Second
	}
	return DefaultLongPollTimeout
}

// BuildPoller returns a webhook or long poller limited to message and callback updates.
func BuildPoller(opts PollerOptions) tele.Poller {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.Webhook{
			Listen:         fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
			AllowedUpdates: menuUpdates,
		}
	}
	timeout := opts.LongPollTimeout
	if timeout <= 0 {
		timeout = DefaultLongPollTimeout
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: menuUpdates}
}
