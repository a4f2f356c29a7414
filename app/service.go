package app

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/worker"
)

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(serviceCmd)
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run the worker service processing approved folders",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.ValidateService(&cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := worker.NewClient(cfg.Service.ServerURL, cfg.Service.APIKey, cfg.Service.Timeout)

		info, err := client.Ping(ctx)
		if err != nil {
			log.Error().Err(err).Str("server", cfg.Service.ServerURL).Msg("Server is not reachable")
			return err
		}

		log.Info().Str("addon", info.Addon).Str("version", info.Version).Str("user", info.User).Msg("Connected to server")

		return worker.New(client, worker.Config{
			Sender:       cfg.Service.Sender,
			SourceTopic:  cfg.Service.SourceTopic,
			TargetTopic:  cfg.Service.TargetTopic,
			MaxRetries:   cfg.Service.MaxRetries,
			PollInterval: cfg.Service.PollInterval,
			ProcessDelay: cfg.Service.ProcessDelay,
		}).Run(ctx)
	},
}
