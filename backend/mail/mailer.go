package mail

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer delivers plain-text messages through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	host   string
	from   *sgmail.Email
}

func NewSendGridMailer(apiKey, host, from string) *SendGridMailer {
	return &SendGridMailer{
		apiKey: apiKey,
		host:   host,
		from:   sgmail.NewEmail("", from),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail("", msg.To)
	body := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Body, "")

	req := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	req.Method = rest.Post
	req.Body = sgmail.GetRequestBody(body)

	resp, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	// SendGrid отвечает 202 при успехе
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them.
// Used when no SendGrid key is configured.
type LogMailer struct {
	logger *log.Logger
}

func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Printf("[MAIL] to=%s subject=%q", msg.To, msg.Subject)
	return nil
}

// New picks the SendGrid mailer when an API key is set.
func New(apiKey, host, from string, logger *log.Logger) Mailer {
	if apiKey == "" {
		return NewLogMailer(logger)
	}
	return NewSendGridMailer(apiKey, host, from)
}
