package cli

import (
	"github.com/spf13/cobra"

	"github.com/yifanzh/studyclock/internal/app"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample tasks for a fresh database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		container, err := app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer container.Close()

		return container.Seed(ctx)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
