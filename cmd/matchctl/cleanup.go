package main

import (
	"context"
	"time"

	"candidate-match/internal/app"
	"candidate-match/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete match batches older than the retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("job-id")
		allActive, _ := cmd.Flags().GetBool("all-active")
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if allActive && jobID == "" {
				n, err := usecase.NewRetentionSweeper(c.Jobs, c.Store, olderThan, time.Hour, c.Logger).Sweep(ctx)
				c.Logger.Info("cleanup finished", zap.Int64("deleted_batches", n))
				return err
			}

			ids, err := jobTargets(ctx, c, jobID, allActive)
			if err != nil {
				return err
			}
			var total int64
			for _, id := range ids {
				n, err := c.Store.DeleteStale(ctx, id, olderThan)
				if err != nil {
					return err
				}
				total += n
			}
			c.Logger.Info("cleanup finished", zap.Int64("deleted_batches", total))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().String("job-id", "", "job to clean up")
	cleanupCmd.Flags().Bool("all-active", false, "clean up every active job")
	cleanupCmd.Flags().Duration("older-than", usecase.DefaultRetention, "delete batches created before now minus this window")
}
