package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/daemon"
)

func init() { //nolint:gochecknoinits
	apikeyCmd.Flags().BoolVar(&apikeyAdmin, "admin", false, "create the user as admin")
	apikeyCmd.Flags().StringSliceVar(&apikeyProjects, "project", nil, "projects the new user may read")

	rootCmd.AddCommand(apikeyCmd)
}

var (
	apikeyAdmin    bool
	apikeyProjects []string

	apikeyCmd = &cobra.Command{
		Use:   "apikey <user>",
		Short: "Create a user or rotate its api key and print the key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			authService := auth.NewService(db)

			key, err := authService.RotateKey(ctx, args[0])
			if errors.Is(err, auth.ErrUserNotFound) {
				_, key, err = authService.CreateUser(ctx, args[0], apikeyAdmin, apikeyProjects...)
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)

			return err
		},
	}
)
