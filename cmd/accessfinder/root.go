package main

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "accessfinder",
		Short: "Accessible outings finder",
		Long:  "Find wheelchair-accessible venues and events near a ZIP code.",
	}

	var configPath string
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")

	root.AddCommand(serveCmd(ctx, &configPath))
	root.AddCommand(migrateCmd(ctx, &configPath))

	return root.ExecuteContext(ctx)
}
