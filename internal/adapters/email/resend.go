package email

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"eventmanager/internal/domain"

	"github.com/resend/resend-go/v2"
)

type resendMailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

func newResendMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	if strings.TrimSpace(config.Resend.APIKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	client := resend.NewClient(config.Resend.APIKey)
	if config.Resend.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(config.Resend.BaseURL, "/") + "/")
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
	}
	return &resendMailer{
		client: client,
		from:   formatSender(config.FromName, config.FromAddress),
		logger: logger,
	}, nil
}

func (m *resendMailer) Send(ctx context.Context, to, subject, html, text string) error {
	resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		return classifyResendError(err)
	}
	m.logger.DebugContext(ctx, "email sent via resend", "to", to, "id", resp.Id)
	return nil
}

// classifyResendError maps the client's message-only errors onto delivery reasons.
func classifyResendError(err error) error {
	if errors.Is(err, resend.ErrRateLimit) {
		return &domain.DeliveryError{Reason: domain.DeliveryRejected, Err: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "domain is not verified"),
		strings.Contains(msg, "domain") && strings.Contains(msg, "verif"):
		return &domain.DeliveryError{Reason: domain.DeliveryDomainUnverified, Err: err}
	case strings.Contains(msg, "api key"):
		return &domain.DeliveryError{Reason: domain.DeliveryInvalidCredential, Err: err}
	default:
		return &domain.DeliveryError{Reason: domain.DeliveryRejected, Err: err}
	}
}
