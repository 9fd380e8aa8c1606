package main

import (
	"context"
	"encoding/json"
	"fmt"

	"candidate-match/internal/aiservice"
	"candidate-match/internal/app"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, redis and AI service connectivity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			out := map[string]any{
				"database":   status(c.DB.Ping(ctx)),
				"redis":      status(c.Redis.Ping(ctx)),
				"ai_service": c.Matching.AIHealth(ctx),
			}
			raw, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))

			if out["database"] != "ok" {
				return fmt.Errorf("database unhealthy")
			}
			if h, ok := out["ai_service"].(aiservice.Health); ok && h.Status != aiservice.StatusHealthy {
				c.Logger.Warn("ai service unhealthy, matching will use fallback scoring")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func status(err error) string {
	if err != nil {
		return "down: " + err.Error()
	}
	return "ok"
}
