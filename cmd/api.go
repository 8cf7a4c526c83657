package cmd

import (
	"context"

	"jobmonitor/internal/api"
	"jobmonitor/internal/config"
	"jobmonitor/internal/infra/redisq"
	"jobmonitor/internal/resolver"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}

			cli, err := redisq.New(cfg.Redis)
			if err != nil {
				return err
			}
			defer cli.Close()

			ctx := log.Logger.WithContext(context.Background())
			// the API starts without redis; requests report 503 until it is reachable
			if err := cli.Connect(ctx); err != nil {
				log.Warn().Err(err).Msg("redis not reachable yet")
			}

			reg, err := resolver.NewRegistry(defaultResolver(cfg.Resolver))
			if err != nil {
				return err
			}
			log.Info().Msgf("API server using stream: %s, resolvers: %d", cfg.Redis.StreamKey, len(reg.List()))

			server := api.NewServer(cli, reg, api.Options{PublicURL: cfg.API.PublicURL, Pinger: cli})
			return server.Run(port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8080, "Port to run the server on")
	return command
}

func defaultResolver(cfg config.Resolver) resolver.Resolver {
	if len(cfg.Tasks) > 0 {
		return resolver.Allow(cfg.Prefix, cfg.Tasks...)
	}
	return resolver.Prefix(cfg.Prefix)
}
