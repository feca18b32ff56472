package domain

import (
	"context"
	"errors"
	"strings"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationEmailData holds data for the event invitation email.
type InvitationEmailData struct {
	Email            string
	ParticipantName  string
	OrganizerName    string
	EventTitle       string
	EventDescription string
	EventLocation    string
	EventDate        string
	InvitationURL    string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitation(ctx context.Context, data *InvitationEmailData) error
}

// DeliveryFailure classifies why the email provider rejected a message.
type DeliveryFailure string

const (
	DeliveryDomainUnverified  DeliveryFailure = "domain_unverified"
	DeliveryInvalidCredential DeliveryFailure = "invalid_credential"
	DeliveryRejected          DeliveryFailure = "rejected"
)

// DeliveryError is a typed failure returned by a Mailer.
type DeliveryError struct {
	Reason DeliveryFailure
	Err    error
}

func (e *DeliveryError) Error() string {
	switch e.Reason {
	case DeliveryDomainUnverified:
		return "email domain not verified: verify your sending domain or use the sandbox sender for testing: " + e.Err.Error()
	case DeliveryInvalidCredential:
		return "invalid email API key: " + e.Err.Error()
	default:
		return "failed to send email: " + e.Err.Error()
	}
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDomainVerificationFailure reports whether err means the sending domain must be
// verified before delivery can succeed.
func IsDomainVerificationFailure(err error) bool {
	if err == nil {
		return false
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de.Reason == DeliveryDomainUnverified
	}
	return strings.Contains(strings.ToLower(err.Error()), "domain")
}
