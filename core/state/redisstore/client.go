// Package redisstore keeps navigation state in Redis so several bot replicas can share it.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Addr         string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password     string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB           int           `yaml:"db" envconfig:"REDIS_DB"`
	DialTimeout  time.Duration `yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"REDIS_WRITE_TIMEOUT"`
	PoolSize     int           `yaml:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int           `yaml:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS"`

	// Sentinel (failover) deployments
	SentinelAddrs []string `yaml:"sentinel_addrs" envconfig:"REDIS_SENTINEL_ADDRS"`
	MasterName    string   `yaml:"master_name" envconfig:"REDIS_MASTER_NAME"`

	KeyPrefix string `yaml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`
	// StateTTL expires idle user records. Zero keeps them forever.
	StateTTL time.Duration `yaml:"state_ttl" envconfig:"REDIS_STATE_TTL"`
	// LockTTL bounds how long a crashed holder can block a user.
	LockTTL time.Duration `yaml:"lock_ttl" envconfig:"REDIS_LOCK_TTL"`
}

// Normalize fills defaults.
func (c *Config) Normalize() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "navmenu"
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 30 * time.Second
	}
}

// Client wraps a Redis client with configuration.
type Client struct {
	native redis.UniversalClient
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.Normalize()
	var rdb redis.UniversalClient
	if len(cfg.SentinelAddrs) > 0 {
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    cfg.MasterName,
			SentinelAddrs: cfg.SentinelAddrs,
			Password:      cfg.Password,
			DB:            cfg.DB,
			DialTimeout:   cfg.DialTimeout,
			ReadTimeout:   cfg.ReadTimeout,
			WriteTimeout:  cfg.WriteTimeout,
			PoolSize:      cfg.PoolSize,
			MinIdleConns:  cfg.MinIdleConns,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &Client{native: rdb}, nil
}

// Native returns the underlying client.
func (c *Client) Native() redis.UniversalClient {
	return c.native
}

// SetNX sets key only if it does not exist and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	return c.native.SetNX(ctx, key, value, expiration).Result()
}

// Del deletes keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.native.Del(ctx, keys...).Err()
}

// Close closes the connection pool.
func (c *Client) Close() error {
	return c.native.Close()
}
