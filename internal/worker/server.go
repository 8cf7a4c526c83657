// internal/worker/server.go
package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmonitor/internal/catalog"
	"jobmonitor/internal/config"
	"jobmonitor/internal/infra/redisq"
	"jobmonitor/internal/usecase"

	"github.com/rs/zerolog/log"
)

type Config struct {
	ConsumerName    string
	BaseBackoff     time.Duration
	MaxBackoff      time.Duration
	// HousekeepingInterval paces reclaiming and index pruning; 0 disables both.
	HousekeepingInterval time.Duration
	// ReclaimIdle 0 disables reclaiming only.
	ReclaimIdle time.Duration
}

func Run(cfg Config, appCfg *config.Config) error {
	cli, err := redisq.New(appCfg.Redis)
	if err != nil {
		return err
	}
	defer cli.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := log.With().Str("consumer", cfg.ConsumerName).Logger()
	ctx = logger.WithContext(ctx)

	if err := cli.Init(ctx); err != nil {
		return err
	}

	if cfg.HousekeepingInterval > 0 {
		rec := redisq.NewReclaimer(cli, cfg.ConsumerName, cfg.HousekeepingInterval, cfg.ReclaimIdle)
		go func() {
			if err := rec.Run(ctx); err != nil && ctx.Err() == nil {
				log.Ctx(ctx).Error().Err(err).Msg("reclaimer stopped with error")
			}
		}()
	}

	tasks := catalog.Builtin(appCfg.Resolver.Prefix)
	log.Ctx(ctx).Info().Strs("targets", tasks.Targets()).Msg("worker ready")

	consumer := usecase.Consumer{
		Q:            cli,
		Tasks:        tasks,
		ConsumerName: cfg.ConsumerName,
		BaseBackoff:  cfg.BaseBackoff,
		MaxBackoff:   cfg.MaxBackoff,
	}

	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Ctx(ctx).Info().Msg("worker stopped")
	return nil
}
