package main

import (
	"fmt"
	"os"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/lib/jwt"
	"github.com/spf13/cobra"
)

// tokenCmd mints tokens for local development against an API that has
// auth.jwt_secret set.
func tokenCmd(a *app) *cobra.Command {
	var secret, uid string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uid == "" {
				uid = a.user
			}
			if uid == "" {
				return fmt.Errorf("no uid given: pass --uid or --user")
			}
			if secret == "" {
				return fmt.Errorf("no secret given: pass --secret or set JWT_SECRET")
			}

			token, err := jwt.NewToken(uid, secret, ttl)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret, same as the API's auth.jwt_secret")
	cmd.Flags().StringVar(&uid, "uid", "", "identity to put in the token (default --user)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
