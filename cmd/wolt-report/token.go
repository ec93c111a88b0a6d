package main

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"

	"wolt-report-service/internal/auth"
	"wolt-report-service/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a report API token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := config.Load().JWTSecret
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			token, err := auth.IssueAccessToken(secret, subject, auth.ScopeReports, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
