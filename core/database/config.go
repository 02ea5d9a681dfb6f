package database

import (
	"fmt"
	"net/url"
)

// Config holds PostgreSQL connection settings. URL, when set, wins over the discrete fields.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// SkipMigrations leaves the schema alone on startup.
	SkipMigrations bool `yaml:"skip_migrations" envconfig:"DB_SKIP_MIGRATIONS"`
}

// Normalize fills defaults for unset fields.
func (c *Config) Normalize() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" {
		c.Port = "5432"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = 10
	}
}

// ConnString returns a postgres:// URL usable by both lib/pq and golang-migrate.
func (c Config) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(c.SSLMode)),
	}
	return u.String()
}

// Target describes the database for logs without credentials.
func (c Config) Target() string {
	if c.URL != "" {
		if u, err := url.Parse(c.URL); err == nil {
			return u.Host + u.Path
		}
		return "url"
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}
