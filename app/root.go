// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/logger"
)

var (
	configPath string // directory of main.toml
	cfg        config.Config

	rootCmd = &cobra.Command{
		Use:   "example-addon",
		Short: "Example pipeline addon server and worker service",
		Long: `example-addon serves the settings, endpoints and actions of the example
pipeline addon and runs its background worker service.`,
		Args:          cobra.OnlyValidArgs,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.ReadConfig(configPath); err != nil {
				return err
			}

			return logger.Init(cfg.Log)
		},
	}
)

func init() { //nolint:gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
