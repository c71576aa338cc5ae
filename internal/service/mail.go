package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bit2byte/mentorhub-api/internal/models"
)

// EmailSender delivers a single transactional email.
type EmailSender interface {
	Send(ctx context.Context, toName, toEmail, subject, body string) error
}

type mailNotifier struct {
	sender EmailSender
	logger zerolog.Logger
}

// NewMailNotifier wraps an EmailSender into the reply-notification seam.
func NewMailNotifier(sender EmailSender, logger zerolog.Logger) ReplyNotifier {
	return &mailNotifier{
		sender: sender,
		logger: logger.With().Str("component", "mail_notifier").Logger(),
	}
}

func (n *mailNotifier) NotifyReply(ctx context.Context, student models.User, assignment models.Assignment, doubtText, reply string) error {
	subject := fmt.Sprintf("Your doubt on %q has a new reply", assignment.Title)
	body := fmt.Sprintf(
		"Hi %s,\n\nA mentor replied to your doubt on the assignment %q.\n\nYour doubt:\n%s\n\nMentor's reply:\n%s\n\nOpen the platform to continue the conversation or mark it resolved.\n",
		student.Name, assignment.Title, doubtText, reply,
	)

	return n.sender.Send(ctx, student.Name, student.Email, subject, body)
}

// LogSender is the development fallback that writes emails to the log instead
// of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log_sender").Logger()}
}

// Send logs the message and reports success.
func (l *LogSender) Send(_ context.Context, _, toEmail, subject, _ string) error {
	l.logger.Info().Str("to", toEmail).Str("subject", subject).Msg("email delivery skipped (log sender)")
	return nil
}
