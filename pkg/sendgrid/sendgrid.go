package sendgrid

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	sg "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Config contains credentials and sender identity for SendGrid.
type Config struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// Sender delivers transactional email through the SendGrid v3 API.
type Sender struct {
	client *sg.Client
	from   *sgmail.Email
	logger zerolog.Logger
}

// New constructs a SendGrid sender.
func New(cfg Config, logger zerolog.Logger) (*Sender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key must be provided")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("sendgrid from address must be provided")
	}

	return &Sender{
		client: sg.NewSendClient(cfg.APIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger.With().Str("component", "sendgrid").Logger(),
	}, nil
}

// Send delivers a single plain-text message.
func (s *Sender) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	to := sgmail.NewEmail(toName, toEmail)
	message := sgmail.NewSingleEmailPlainText(s.from, subject, to, body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d", response.StatusCode)
	}

	s.logger.Debug().Str("to", toEmail).Str("subject", subject).Msg("email accepted by sendgrid")

	return nil
}
