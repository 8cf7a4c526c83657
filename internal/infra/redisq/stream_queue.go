package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/ports"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	_ ports.Queue     = (*Client)(nil)
	_ ports.WorkQueue = (*Client)(nil)
)

func (c *Client) Enqueue(ctx context.Context, target string, args map[string]any) (*domain.Job, error) {
	if args == nil {
		args = map[string]any{}
	}
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("redisq: encode args: %w", err)
	}

	j := &domain.Job{
		ID:         uuid.NewString(),
		Target:     target,
		Args:       args,
		Status:     domain.StatusQueued,
		EnqueuedAt: time.Now().UTC(),
	}

	pipe := c.Rdb.TxPipeline()
	pipe.HSet(ctx, c.jobKey(j.ID), map[string]any{
		"id":          j.ID,
		"target":      j.Target,
		"args":        string(rawArgs),
		"status":      string(j.Status),
		"enqueued_at": j.EnqueuedAt.Format(time.RFC3339Nano),
	})
	pipe.ZAdd(ctx, c.indexKey(), redis.Z{Score: nowMs(), Member: j.ID})
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: c.Cfg.StreamKey,
		Values: map[string]any{"job_id": j.ID},
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeErr("enqueue", err)
	}
	return j, nil
}

func (c *Client) Fetch(ctx context.Context, id string) (*domain.Job, error) {
	h, err := c.Rdb.HGetAll(ctx, c.jobKey(id)).Result()
	if err != nil {
		return nil, storeErr("fetch", err)
	}
	if len(h) == 0 {
		return nil, domain.ErrJobNotFound
	}
	return hashToJob(h)
}

// List returns tracked jobs oldest first. Ids whose hash has expired are skipped.
func (c *Client) List(ctx context.Context) ([]domain.Job, error) {
	ids, err := c.Rdb.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, storeErr("list", err)
	}
	if len(ids) == 0 {
		return []domain.Job{}, nil
	}

	pipe := c.Rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, c.jobKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeErr("list", err)
	}

	jobs := make([]domain.Job, 0, len(ids))
	for _, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			continue
		}
		j, err := hashToJob(h)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, nil
}

// Claim blocks up to block for the next stream entry. An entry whose job
// hash is gone is returned with domain.ErrJobNotFound so it can be acked.
func (c *Client) Claim(ctx context.Context, consumer string, block time.Duration) (*domain.Job, string, error) {
	res, err := c.Rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.Cfg.Group,
		Consumer: consumer,
		Streams:  []string{c.Cfg.StreamKey, ">"},
		Count:    1,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", storeErr("claim", err)
	}

	if len(res) == 0 || len(res[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := res[0].Messages[0]
	id, ok := msg.Values["job_id"].(string)
	if !ok {
		return nil, msg.ID, fmt.Errorf("redisq: entry %s: %w", msg.ID, domain.ErrJobNotFound)
	}
	j, err := c.Fetch(ctx, id)
	if err != nil {
		return nil, msg.ID, err
	}
	return j, msg.ID, nil
}

// Ack acknowledges the entry and deletes it from the stream; the job hash
// keeps the outcome.
func (c *Client) Ack(ctx context.Context, streamID string) error {
	pipe := c.Rdb.TxPipeline()
	pipe.XAck(ctx, c.Cfg.StreamKey, c.Cfg.Group, streamID)
	pipe.XDel(ctx, c.Cfg.StreamKey, streamID)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("ack", err)
	}
	return nil
}

func (c *Client) Start(ctx context.Context, id, consumer string) error {
	return c.transition(ctx, id, domain.StatusStarted, 0,
		"worker", consumer,
		"started_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
}

func (c *Client) Finish(ctx context.Context, id string, result json.RawMessage) error {
	if len(result) == 0 {
		result = json.RawMessage("null")
	}
	return c.transition(ctx, id, domain.StatusFinished, c.Cfg.JobTTL,
		"result", string(result),
		"ended_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
}

func (c *Client) Fail(ctx context.Context, id string, reason string) error {
	return c.transition(ctx, id, domain.StatusFailed, c.Cfg.JobTTL,
		"error", reason,
		"ended_at", time.Now().UTC().Format(time.RFC3339Nano),
	)
}
