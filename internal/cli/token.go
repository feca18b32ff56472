package cli

import (
	"errors"
	"fmt"
	"time"

	"eventmanager/config"
	"eventmanager/internal/adapters/auth"
	"eventmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// TokenOptions holds flags for the token command.
type TokenOptions struct {
	UserID string
	Email  string
	Name   string
	Expiry time.Duration
}

// NewTokenCommand creates the token command, which mints a bearer token signed
// with JWT_SECRET for local development and scripting.
func NewTokenCommand() *cobra.Command {
	opts := &TokenOptions{}

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for an organizer",
		Long: `Mint a bearer token signed with JWT_SECRET.

Example:
  eventmanager token --email olga@example.com --name "Olga"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			expiry := opts.Expiry
			if expiry <= 0 {
				expiry = cfg.JWTExpiry
			}
			id := domain.Identity{UserID: opts.UserID, Email: opts.Email, Name: opts.Name}
			if id.UserID == "" {
				id.UserID = uuid.NewString()
			}
			token, err := auth.NewJWTIssuer(cfg.JWTSecret, expiry).Issue(id)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.UserID, "user-id", "", "subject of the token (default: random UUID)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "organizer email (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "organizer display name")
	cmd.Flags().DurationVar(&opts.Expiry, "expiry", 0, "token lifetime (default: JWT_EXPIRY)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
