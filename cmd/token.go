package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/roadmap-backend/internal/platform/authtoken"
)

// newTokenCmd signs an access token for local testing against the API.
func newTokenCmd() *cobra.Command {
	var (
		user string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a user id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, cfg, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()
			if cfg.Production() {
				return fmt.Errorf("token issuance is disabled in production")
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenTTL
			}
			v, err := authtoken.NewVerifier(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.JWTLeeway)
			if err != nil {
				return err
			}
			tok, err := v.Issue(userID, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user_id=%s\n%s\n", userID, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (random when empty)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL)")
	return cmd
}
