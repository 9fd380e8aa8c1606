package main

import (
	"context"
	"fmt"
	"os"

	"candidate-match/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the latest ranked matches of a job to an XLSX file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rawID, _ := cmd.Flags().GetString("job-id")
		out, _ := cmd.Flags().GetString("out")

		jobID, err := uuid.Parse(rawID)
		if err != nil {
			return fmt.Errorf("invalid --job-id: %w", err)
		}
		if out == "" {
			out = fmt.Sprintf("matches-%s.xlsx", jobID)
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			body, err := c.Export.LatestMatchesXLSX(ctx, jobID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			c.Logger.Info("export written", zap.String("path", out), zap.Int("bytes", len(body)))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("job-id", "", "job to export")
	exportCmd.Flags().StringP("out", "o", "", "output file (default matches-<job-id>.xlsx)")
	_ = exportCmd.MarkFlagRequired("job-id")
}
