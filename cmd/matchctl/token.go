package main

import (
	"fmt"
	"time"

	"candidate-match/internal/config"
	"candidate-match/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for calling the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rawID, _ := cmd.Flags().GetString("user-id")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		userID := uuid.New()
		if rawID != "" {
			id, err := uuid.Parse(rawID)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
			userID = id
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if ttl <= 0 {
			ttl = cfg.JWT.AccessExpiresIn
		}

		tok, err := jwt.NewHMACService(cfg.JWT.AccessSecret, ttl).GenerateAccessToken(userID, email)
		if err != nil {
			return fmt.Errorf("minting token (is JWT_ACCESS_SECRET set?): %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("user-id", "", "subject user id (random when empty)")
	tokenCmd.Flags().String("email", "", "email claim")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")
}
