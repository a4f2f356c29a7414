package app

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/pipelinekit/example-addon/internal/daemon"
	"github.com/pipelinekit/example-addon/internal/schema"
)

func init() { //nolint:gochecknoinits
	schemaCmd.Flags().StringVar(&schemaProject, "project", "", "resolve enumerators for this project")
	schemaCmd.Flags().StringVar(&schemaVariant, "variant", "", "settings variant, addon.variant of the config by default")
	schemaCmd.Flags().BoolVar(&schemaSite, "site", false, "render the site settings")

	rootCmd.AddCommand(schemaCmd)
}

var (
	schemaProject string
	schemaVariant string
	schemaSite    bool

	schemaCmd = &cobra.Command{
		Use:   "schema",
		Short: "Print the rendered settings schema as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := daemon.OpenDB(&cfg)
			if err != nil {
				return err
			}

			a, err := daemon.NewAddon(&cfg, db, nil)
			if err != nil {
				return err
			}

			variant, err := a.Variant(schemaVariant)
			if err != nil {
				return err
			}

			m := a.SettingsModel()
			if schemaSite {
				m = a.SiteSettingsModel()
			}

			doc, err := schema.Render(cmd.Context(), m, schema.ResolveContext{
				Settings:    a,
				ProjectName: schemaProject,
				Variant:     variant,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(doc)
		},
	}
)
