package main

import (
	"context"
	"errors"
	"fmt"

	"candidate-match/internal/app"
	"candidate-match/internal/usecase"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Trigger batch matching for one job or every active job",
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("job-id")
		allActive, _ := cmd.Flags().GetBool("all-active")
		wait, _ := cmd.Flags().GetBool("wait")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			ids, err := jobTargets(ctx, c, jobID, allActive)
			if err != nil {
				return err
			}
			return runJobs(ctx, c, ids, wait)
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("job-id", "", "job to match")
	runCmd.Flags().Bool("all-active", false, "match every active job")
	runCmd.Flags().Bool("wait", true, "wait for runs to finish")
}

func runJobs(ctx context.Context, c *app.Container, ids []uuid.UUID, wait bool) error {
	lg := c.Logger
	runs := make([]*usecase.Run, 0, len(ids))
	var failed int
	for _, id := range ids {
		run, err := c.Runner.TriggerMatchingForJob(ctx, id)
		if err != nil {
			failed++
			lg.Warn("trigger failed", zap.String("job_id", id.String()), zap.Error(err))
			continue
		}
		lg.Info("matching started", zap.String("job_id", id.String()), zap.String("batch_id", run.BatchID.String()))
		runs = append(runs, run)
	}

	if wait {
		for _, run := range runs {
			sum, err := run.Wait(ctx)
			if err != nil {
				failed++
				lg.Error("matching failed", zap.String("job_id", run.JobID.String()), zap.Error(err))
				continue
			}
			lg.Info("matching completed",
				zap.String("job_id", sum.JobID.String()),
				zap.Int("evaluated", sum.Evaluated),
				zap.Int("persisted", sum.Persisted),
				zap.Int("skipped", sum.Skipped),
				zap.Float64("average_score", sum.AverageScore),
				zap.Duration("duration", sum.Duration),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(ids))
	}
	if len(ids) == 0 {
		return errors.New("no jobs to match")
	}
	return nil
}
