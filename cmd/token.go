package cmd

import (
	"fmt"
	"time"

	"lookout/api"
	"lookout/config"

	"github.com/spf13/cobra"
)

const defaultTokenTTL = 24 * time.Hour

// newTokenCmd creates the 'token' subcommand
func newTokenCmd() *cobra.Command {
	var (
		username string
		roles    []string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for auth.mode=jwt",
		Long:  "Sign an HS256 token with auth.jwt_secret from the loaded configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Auth.Mode != config.AuthModeJWT && !quiet {
				warningColor.Fprintf(cmd.ErrOrStderr(), "Warning: auth.mode is %q, the server will not accept bearer tokens\n", cfg.Auth.Mode)
			}

			token, err := api.IssueToken(cfg, username, roles, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			if outputJSON {
				return outputAsJSON(map[string]any{
					"token":     token,
					"username":  username,
					"expiresAt": time.Now().Add(ttl).UTC().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Subject of the token")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "Roles recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "Token lifetime")

	return cmd
}
