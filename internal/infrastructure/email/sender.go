package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"servibid/pkg/logger"
)

// Message is one outbound email. HTML is already rendered.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// LogSender only logs. It is used when no email API key is configured.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.WithComponent("email")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("email not sent, no provider configured")
	return nil
}
