// Package redis opens the optional Redis pool behind the profile cache.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultIOTimeout      = 3 * time.Second
)

// Config holds Redis connection settings.
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int

	// ConnectTimeout bounds dialing and the startup ping. Zero means 5s.
	ConnectTimeout time.Duration
	// IOTimeout bounds each read and write. Zero means 3s.
	IOTimeout time.Duration
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) options() *redis.Options {
	connect := c.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}
	io := c.IOTimeout
	if io <= 0 {
		io = defaultIOTimeout
	}

	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		MaxRetries:   c.MaxRetries,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConn,
		DialTimeout:  connect,
		ReadTimeout:  io,
		WriteTimeout: io,
		PoolTimeout:  io + time.Second,
	}
}

// Client is a go-redis client that has answered a ping.
type Client struct {
	*redis.Client
	log     *zap.Logger
	connect time.Duration
}

// NewClient dials Redis and fails unless the server answers a ping
// within the connect timeout.
func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	opts := cfg.options()
	rdb := redis.NewClient(opts)

	c := &Client{Client: rdb, log: log, connect: opts.DialTimeout}
	if err := c.ping(ctx, opts.DialTimeout); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	log.Info("redis connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", cfg.DB),
		zap.Int("pool_size", opts.PoolSize),
	)
	return c, nil
}

// Ping reports whether Redis is reachable. It is used as a health check.
func (c *Client) Ping(ctx context.Context) error {
	return c.ping(ctx, c.connect)
}

func (c *Client) ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}

// Close releases the pool.
func (c *Client) Close() error {
	stats := c.PoolStats()
	c.log.Info("closing redis connection",
		zap.Uint32("hits", stats.Hits),
		zap.Uint32("misses", stats.Misses),
		zap.Uint32("timeouts", stats.Timeouts),
	)
	return c.Client.Close()
}
