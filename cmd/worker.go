package cmd

import (
	"time"

	"jobmonitor/internal/worker"

	"github.com/spf13/cobra"
)

func workerCmd() *cobra.Command {
	var cfg worker.Config

	var command = &cobra.Command{
		Use:   "worker",
		Short: "Start a worker that executes queued jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := setup()
			if err != nil {
				return err
			}
			return worker.Run(cfg, appCfg)
		},
	}

	command.Flags().StringVar(&cfg.ConsumerName, "consumer", "worker-1", "Worker consumer name")
	command.Flags().DurationVar(&cfg.BaseBackoff, "base-backoff", 500*time.Millisecond, "Base backoff duration")
	command.Flags().DurationVar(&cfg.MaxBackoff, "max-backoff", 30*time.Second, "Max backoff duration")
	command.Flags().DurationVar(&cfg.HousekeepingInterval, "housekeeping-interval", 30*time.Second, "How often to requeue stale entries and prune expired jobs from the index (0 disables)")
	command.Flags().DurationVar(&cfg.ReclaimIdle, "reclaim-idle", 5*time.Minute, "Idle time after which an unacked entry is requeued (0 disables requeueing)")

	return command
}
