package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"eventmanager/internal/domain"
)

// DefaultFromAddress is the provider sandbox sender; it can deliver without a
// verified domain, to the account owner only.
const DefaultFromAddress = "onboarding@resend.dev"

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
	// Endpoint overrides the SES endpoint (tests, local emulators).
	Endpoint string
}

// ResendConfig holds configuration for the Resend API.
type ResendConfig struct {
	APIKey string
	// BaseURL overrides the API origin (tests).
	BaseURL string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	Resend      ResendConfig
	SES         SESConfig
}

// NewMailer creates a mailer from config. Provider "resend" (the default) uses the
// Resend API, "ses" uses AWS SES and "noop" only logs. A missing Resend API key
// yields domain.ErrMissingAPIKey.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.FromAddress == "" {
		config.FromAddress = DefaultFromAddress
	}
	switch strings.ToLower(config.Provider) {
	case "", "resend":
		return newResendMailer(config, logger)
	case "ses":
		return newSESMailer(config, logger), nil
	case "noop":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

// formatSender renders `Name <address>` or the bare address.
func formatSender(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, to, subject, html, text string) error {
	n.logger.InfoContext(ctx, "email would be sent (noop)", "to", to, "subject", subject)
	return nil
}
