package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"candidate-match/internal/app"
	"candidate-match/internal/config"
	"candidate-match/internal/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "matchctl"

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "matchctl operates the candidate matching engine from the command line",
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	viper.SetEnvPrefix("MATCHCTL")
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().Duration("timeout", 10*time.Minute, "overall command timeout")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

func newLogger() *zap.Logger {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return lg.Named(appName)
}

// withContainer loads config from the environment, builds the container and
// closes it after fn returns.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	lg := newLogger()
	defer func() { _ = lg.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("timeout"))
	defer cancel()

	c, err := app.NewContainer(ctx, cfg, lg)
	if err != nil {
		return fmt.Errorf("building container: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer closeCancel()
		if err := c.Close(closeCtx); err != nil {
			lg.Warn("closing container", zap.Error(err))
		}
	}()

	return fn(ctx, c)
}

// jobTargets resolves --job-id or --all-active into job ids.
func jobTargets(ctx context.Context, c *app.Container, rawID string, allActive bool) ([]uuid.UUID, error) {
	if rawID != "" && allActive {
		return nil, fmt.Errorf("--job-id and --all-active are mutually exclusive")
	}
	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("invalid --job-id: %w", err)
		}
		return []uuid.UUID{id}, nil
	}
	if !allActive {
		return nil, fmt.Errorf("either --job-id or --all-active is required")
	}

	jobs, err := c.Jobs.FindActiveJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active jobs: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	return ids, nil
}
