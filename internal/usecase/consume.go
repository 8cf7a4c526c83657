package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jobmonitor/internal/domain"
	"jobmonitor/internal/ports"
	"jobmonitor/pkg/backoff"

	"github.com/rs/zerolog/log"
)

// Runner executes a resolved job target.
type Runner interface {
	Run(ctx context.Context, target string, args map[string]any) (any, error)
}

type Consumer struct {
	Q            ports.WorkQueue
	Tasks        Runner
	ConsumerName string
	Block        time.Duration
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// Run claims and executes jobs until ctx is done.
func (c Consumer) Run(ctx context.Context) error {
	block := c.Block
	if block <= 0 {
		block = 5 * time.Second
	}

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		j, streamID, err := c.Q.Claim(ctx, c.ConsumerName, block)
		if err != nil && streamID != "" && errors.Is(err, domain.ErrJobNotFound) {
			// entry without a live job
			log.Ctx(ctx).Warn().Err(err).Str("entry", streamID).Msg("dropping stream entry")
			c.ack(ctx, streamID)
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			delay := backoff.ExponentialJitter(c.BaseBackoff, c.MaxBackoff, failures)
			log.Ctx(ctx).Warn().Err(err).Msgf("claim failed, retrying in %s", delay)
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}
		failures = 0

		if j == nil {
			continue
		}

		c.Process(ctx, *j, streamID)
	}
}

// Process runs one claimed job and records its outcome. The stream entry
// is acked only once the job reached a terminal status.
func (c Consumer) Process(ctx context.Context, j domain.Job, streamID string) {
	logger := log.Ctx(ctx).With().Str("job", j.ID).Str("target", j.Target).Logger()

	if err := c.Q.Start(ctx, j.ID, c.ConsumerName); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) || errors.Is(err, domain.ErrJobNotFound) {
			logger.Info().Err(err).Msg("skipping job")
			c.ack(ctx, streamID)
			return
		}
		logger.Error().Err(err).Msg("failed to mark job started")
		return
	}

	res, err := c.Tasks.Run(ctx, j.Target, j.Args)
	var raw []byte
	if err == nil {
		raw, err = json.Marshal(res)
		if err != nil {
			err = fmt.Errorf("encode result: %w", err)
		}
	}

	if err != nil {
		logger.Warn().Err(err).Msg("job failed")
		if ferr := c.Q.Fail(ctx, j.ID, err.Error()); ferr != nil {
			logger.Error().Err(ferr).Msg("failed to record failure")
			return
		}
	} else {
		if ferr := c.Q.Finish(ctx, j.ID, raw); ferr != nil {
			logger.Error().Err(ferr).Msg("failed to record result")
			return
		}
		logger.Info().Msg("job finished")
	}
	c.ack(ctx, streamID)
}

func (c Consumer) ack(ctx context.Context, streamID string) {
	if err := c.Q.Ack(ctx, streamID); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("entry", streamID).Msg("ack failed")
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
