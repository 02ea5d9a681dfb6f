package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// MenuConfig points at the menu definition and tunes user-facing texts.
type MenuConfig struct {
	Path string `yaml:"path" envconfig:"MENU_PATH"`
	// DefaultState overrides default_state from the definition file when set.
	DefaultState string `yaml:"default_state" envconfig:"MENU_DEFAULT_STATE"`
	InvalidText  string `yaml:"invalid_text"`
	ErrorText    string `yaml:"error_text"`
	WelcomeText  string `yaml:"welcome_text"`
	SuggestText  string `yaml:"suggest_text"`
	// Suggestions caps "did you mean" hints for invalid input; 0 disables them.
	Suggestions    int  `yaml:"suggestions" envconfig:"MENU_SUGGESTIONS"`
	DisableAliases bool `yaml:"disable_aliases" envconfig:"MENU_DISABLE_ALIASES"`
}

// StoreConfig selects where per-user navigation state lives.
type StoreConfig struct {
	Backend string `yaml:"backend" envconfig:"STORE_BACKEND"`
	// LockTimeoutMS bounds how long one update waits for the user's lock; 0 waits indefinitely.
	LockTimeoutMS int `yaml:"lock_timeout_ms" envconfig:"STORE_LOCK_TIMEOUT_MS"`
}

// ConsoleConfig configures the interactive terminal transport.
type ConsoleConfig struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file" envconfig:"CONSOLE_HISTORY_FILE"`
	UserID      int64  `yaml:"user_id" envconfig:"CONSOLE_USER_ID"`
}

// TelegramConfig holds Telegram bot related settings that are common for all bots.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// TransportTelegram serves menus through a Telegram bot.
	TransportTelegram = "telegram"
	// TransportConsole serves menus on stdin/stdout.
	TransportConsole = "console"
)

const (
	// BackendMemory keeps state in process memory.
	BackendMemory = "memory"
	// BackendPostgres keeps state in PostgreSQL.
	BackendPostgres = "postgres"
	// BackendRedis keeps state in Redis.
	BackendRedis = "redis"
)

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Transport string          `yaml:"transport" envconfig:"NAV_TRANSPORT"`
	Menu      MenuConfig      `yaml:"menu"`
	Store     StoreConfig     `yaml:"store"`
	Console   ConsoleConfig   `yaml:"console"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Decode fills dst from the YAML file at path, then overlays the environment.
func Decode(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parse yaml: %w", err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: env: %w", err)
	}
	return nil
}

// Normalize validates cfg and fills defaults. Telegram and webhook sections
// are only checked when the telegram transport is selected.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	tr, err := pick("transport", cfg.Transport, TransportTelegram, map[string]string{
		TransportTelegram: TransportTelegram,
		TransportConsole:  TransportConsole,
	})
	if err != nil {
		return err
	}
	cfg.Transport = tr

	steps := []func() error{cfg.Menu.normalize, cfg.Store.normalize, cfg.Console.normalize, cfg.RateLimit.normalize}
	if tr == TransportTelegram {
		steps = append(steps, cfg.normalizeTelegram)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// pick lowercases raw, resolves it through allowed and falls back to def when blank.
func pick(field, raw, def string, allowed map[string]string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return def, nil
	}
	if v, ok := allowed[key]; ok {
		return v, nil
	}
	names := make([]string, 0, len(allowed))
	for k, v := range allowed {
		if k == v {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return "", fmt.Errorf("config: invalid %s %q; allowed: %s", field, raw, strings.Join(names, ", "))
}

func (m *MenuConfig) normalize() error {
	if strings.TrimSpace(m.Path) == "" {
		return errors.New("config: menu.path is required")
	}
	if m.Suggestions < 0 {
		return errors.New("config: menu.suggestions must be >= 0")
	}
	return nil
}

func (s *StoreConfig) normalize() error {
	backend, err := pick("store.backend", s.Backend, BackendMemory, map[string]string{
		BackendMemory:   BackendMemory,
		BackendPostgres: BackendPostgres,
		"pg":            BackendPostgres,
		"postgresql":    BackendPostgres,
		BackendRedis:    BackendRedis,
	})
	if err != nil {
		return err
	}
	s.Backend = backend
	if s.LockTimeoutMS < 0 {
		return errors.New("config: store.lock_timeout_ms must be >= 0")
	}
	return nil
}

// LockTimeout converts LockTimeoutMS into a duration.
func (s StoreConfig) LockTimeout() time.Duration {
	return time.Duration(s.LockTimeoutMS) * time.Millisecond
}

func (c *ConsoleConfig) normalize() error {
	if c.UserID == 0 {
		c.UserID = 1
	}
	return nil
}

func (r *RateLimitConfig) normalize() error {
	allowed := map[string]string{
		UpdateCallback:    UpdateCallback,
		UpdateMessage:     UpdateMessage,
		UpdateInlineQuery: UpdateInlineQuery,
	}
	kept := r.ExcludeUpdates[:0]
	for _, v := range r.ExcludeUpdates {
		if strings.TrimSpace(v) == "" {
			continue
		}
		key, err := pick("rate_limit.exclude_updates value", v, "", allowed)
		if err != nil {
			return err
		}
		kept = append(kept, key)
	}
	r.ExcludeUpdates = kept
	return nil
}

func (c *Config) normalizeTelegram() error {
	if c.Telegram.Token == "" {
		return errors.New("config: telegram token is required")
	}
	mode, err := pick("telegram.run_mode", c.Telegram.RunMode, RunModeLongpoll, map[string]string{
		RunModeLongpoll: RunModeLongpoll,
		"polling":       RunModeLongpoll,
		RunModeWebhook:  RunModeWebhook,
	})
	if err != nil {
		return err
	}
	c.Telegram.RunMode = mode
	if c.Telegram.LongPollTimeoutSeconds < 0 {
		return errors.New("config: telegram.longpoll_timeout_seconds must be >= 0")
	}
	if mode != RunModeWebhook {
		return nil
	}
	switch {
	case strings.TrimSpace(c.Webhook.URL) == "":
		return errors.New("config: webhook.url is required in webhook mode")
	case strings.TrimSpace(c.Webhook.Listen) == "":
		return errors.New("config: webhook.listen is required in webhook mode")
	case c.Webhook.Port <= 0:
		return errors.New("config: webhook.port must be > 0 in webhook mode")
	}
	return nil
}
