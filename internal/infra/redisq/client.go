package redisq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobmonitor/internal/config"
	"jobmonitor/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Client struct {
	Cfg config.Redis
	Rdb *redis.Client
}

func New(cfg config.Redis) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	log.Info().Msgf("connecting to redis at %s db=%d", opts.Addr, opts.DB)
	return NewWithClient(cfg, redis.NewClient(opts)), nil
}

// NewWithClient wraps an existing connection; the caller keeps ownership of rdb.
func NewWithClient(cfg config.Redis, rdb *redis.Client) *Client {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "jobmonitor"
	}
	if cfg.StreamKey == "" {
		cfg.StreamKey = cfg.KeyPrefix + ":stream"
	}
	if cfg.Group == "" {
		cfg.Group = "workers"
	}
	return &Client{Cfg: cfg, Rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// Connect → used by API only
func (c *Client) Connect(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Msg("connected to redis")
	return nil
}

// Init → used by Worker, ensures stream + group exist
func (c *Client) Init(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}

	// "0" so entries enqueued before the first worker started are delivered
	err := c.Rdb.XGroupCreateMkStream(ctx, c.Cfg.StreamKey, c.Cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("stream", c.Cfg.StreamKey).
		Str("group", c.Cfg.Group).
		Msg("redis stream and consumer group ready")

	return nil
}

func (c *Client) Close() error { return c.Rdb.Close() }

func (c *Client) jobKey(id string) string { return c.Cfg.KeyPrefix + ":job:" + id }

func (c *Client) indexKey() string { return c.Cfg.KeyPrefix + ":jobs" }

// storeErr marks transport failures as domain.ErrQueueUnavailable. Replies
// from the server itself are passed through.
func storeErr(op string, err error) error {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return fmt.Errorf("redisq: %s: %w", op, err)
	}
	return fmt.Errorf("redisq: %s: %w: %w", op, domain.ErrQueueUnavailable, err)
}

func nowMs() float64 { return float64(time.Now().UnixMilli()) }
