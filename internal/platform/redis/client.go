// Package redis opens the connection behind the token revocation list.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hackhub/internal/platform/config"
	"hackhub/pkg/platform/sentinel"
)

const defaultHealthTimeout = 2 * time.Second

// Client is the shared Redis connection for revoked token ids. A nil *Client
// means REDIS_URL was unset and revocation is switched off.
type Client struct {
	rdb           *goredis.Client
	healthTimeout time.Duration
}

type Option func(*Client)

// WithHealthTimeout bounds each /health ping so a stalled Redis cannot hold
// the readiness endpoint open.
func WithHealthTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.healthTimeout = d
		}
	}
}

// Options translates the REDIS_* settings into go-redis options.
func Options(cfg config.RedisConfig) (*goredis.Options, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// Dial connects to the revocation store and checks it answers. It returns
// nil, nil when no URL is configured.
func Dial(ctx context.Context, cfg config.RedisConfig, opts ...Option) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	ro, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	c := &Client{rdb: goredis.NewClient(ro), healthTimeout: defaultHealthTimeout}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("%w: revocation store ping: %w", sentinel.ErrUnavailable, err)
	}
	return c, nil
}

// Redis exposes the underlying connection to the revocation list.
func (c *Client) Redis() *goredis.Client {
	return c.rdb
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: revocation store: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
