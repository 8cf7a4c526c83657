package redisq

import (
	"context"
	"time"

	"jobmonitor/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var _ ports.Reclaimer = (*Reclaimer)(nil)

// Reclaimer returns stream entries that a consumer read but never acked
// (typically because the worker died) to the stream, and drops index
// entries for jobs the store has expired.
type Reclaimer struct {
	C        *Client
	Consumer string
	Interval time.Duration
	// MinIdle 0 turns reclaiming off in Run; pruning still happens.
	MinIdle time.Duration
}

func NewReclaimer(c *Client, consumer string, interval, minIdle time.Duration) *Reclaimer {
	return &Reclaimer{C: c, Consumer: consumer, Interval: interval, MinIdle: minIdle}
}

func (r *Reclaimer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		if r.MinIdle > 0 {
			if n, err := r.Reclaim(ctx); err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("reclaim failed")
			} else if n > 0 {
				log.Ctx(ctx).Info().Msgf("requeued %d stale entries", n)
			}
		}
		if err := r.Prune(ctx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("prune failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Reclaim re-adds entries idle for longer than MinIdle and acks the old ones.
func (r *Reclaimer) Reclaim(ctx context.Context) (int, error) {
	cfg := r.C.Cfg
	total := 0
	start := "0-0"
	for {
		msgs, next, err := r.C.Rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   cfg.StreamKey,
			Group:    cfg.Group,
			MinIdle:  r.MinIdle,
			Start:    start,
			Count:    128,
			Consumer: r.Consumer,
		}).Result()
		if err != nil {
			return total, storeErr("reclaim", err)
		}

		for _, msg := range msgs {
			pipe := r.C.Rdb.TxPipeline()
			pipe.XAdd(ctx, &redis.XAddArgs{Stream: cfg.StreamKey, Values: msg.Values})
			pipe.XAck(ctx, cfg.StreamKey, cfg.Group, msg.ID)
			pipe.XDel(ctx, cfg.StreamKey, msg.ID)
			if _, err := pipe.Exec(ctx); err != nil {
				return total, storeErr("reclaim", err)
			}
			total++
		}

		if next == "0-0" || next == "" || len(msgs) == 0 {
			return total, nil
		}
		start = next
	}
}

// Prune removes ids from the job index whose hash no longer exists.
func (r *Reclaimer) Prune(ctx context.Context) error {
	ids, err := r.C.Rdb.ZRange(ctx, r.C.indexKey(), 0, -1).Result()
	if err != nil {
		return storeErr("prune", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pipe := r.C.Rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Exists(ctx, r.C.jobKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr("prune", err)
	}

	var gone []any
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			gone = append(gone, ids[i])
		}
	}
	if len(gone) == 0 {
		return nil
	}
	return r.C.Rdb.ZRem(ctx, r.C.indexKey(), gone...).Err()
}
