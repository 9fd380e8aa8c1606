package main

import (
	"context"

	"candidate-match/internal/app"
	"candidate-match/internal/database/seeder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo jobs and candidate profiles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if _, err := c.Migrate(ctx); err != nil {
				return err
			}
			seeders := seeder.Defaults()
			if err := (seeder.Runner{Seeders: seeders, Logger: c.Logger}).Run(ctx, c.DB); err != nil {
				return err
			}
			c.Logger.Info("demo data seeded", zap.Int("seeders", len(seeders)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
