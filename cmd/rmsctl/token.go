package main

import (
	"fmt"
	"rms/config"
	"rms/infras/jwt"
	"time"

	"github.com/spf13/cobra"
)

// newTokenCmd issues staff tokens for local testing and service accounts.
func newTokenCmd() *cobra.Command {
	var (
		staffID        string
		organizationID string
		role           string
		ttl            time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed staff token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwt.New(config.Get()).Issue(staffID, organizationID, role, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}

	cmd.Flags().StringVar(&staffID, "staff", "", "staff id")
	cmd.Flags().StringVar(&organizationID, "org", "", "organization id")
	cmd.Flags().StringVar(&role, "role", "host", "staff role")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")

	_ = cmd.MarkFlagRequired("staff")
	_ = cmd.MarkFlagRequired("org")

	return cmd
}
