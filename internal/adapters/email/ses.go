package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventmanager/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/smithy-go"
)

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *slog.Logger
}

func newSESMailer(config MailerConfig, logger *slog.Logger) domain.Mailer {
	sesConfig := config.SES
	if sesConfig.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SES; use only in development")
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: sesConfig.InsecureSkipVerify,
				MinVersion:         tls.VersionTLS12,
			},
		},
	}
	awsCfg := aws.Config{
		Region: sesConfig.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				sesConfig.AccessKeyID,
				sesConfig.SecretAccessKey,
				"",
			),
		),
		HTTPClient: httpClient,
	}
	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if sesConfig.Endpoint != "" {
			o.BaseEndpoint = aws.String(sesConfig.Endpoint)
		}
	})
	return &sesMailer{
		client:      client,
		fromAddress: config.FromAddress,
		fromName:    config.FromName,
		logger:      logger,
	}
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(formatSender(s.fromName, s.fromAddress)),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(html),
			Charset: aws.String("UTF-8"),
		}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(text),
			Charset: aws.String("UTF-8"),
		}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return classifySESError(fmt.Errorf("send email via SES: %w", err))
	}
	s.logger.DebugContext(ctx, "email sent via SES", "to", to, "message_id", aws.ToString(result.MessageId))
	return nil
}

var sesCredentialCodes = map[string]bool{
	"InvalidClientTokenId":        true,
	"SignatureDoesNotMatch":       true,
	"UnrecognizedClientException": true,
	"MissingAuthenticationToken":  true,
}

func classifySESError(err error) error {
	var domainErr *types.MailFromDomainNotVerifiedException
	if errors.As(err, &domainErr) {
		return &domain.DeliveryError{Reason: domain.DeliveryDomainUnverified, Err: err}
	}
	var rejected *types.MessageRejected
	if errors.As(err, &rejected) && strings.Contains(strings.ToLower(rejected.ErrorMessage()), "not verified") {
		return &domain.DeliveryError{Reason: domain.DeliveryDomainUnverified, Err: err}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && sesCredentialCodes[apiErr.ErrorCode()] {
		return &domain.DeliveryError{Reason: domain.DeliveryInvalidCredential, Err: err}
	}
	return &domain.DeliveryError{Reason: domain.DeliveryRejected, Err: err}
}
