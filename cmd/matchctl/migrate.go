package main

import (
	"context"

	"candidate-match/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			n, err := c.Migrate(ctx)
			if err != nil {
				return err
			}
			c.Logger.Info("migrations applied", zap.Int("count", n))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
