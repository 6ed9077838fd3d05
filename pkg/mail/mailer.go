package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/gympoint/gympoint-api/pkg/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages through an SMTP relay.
type Mailer struct {
	client *gomail.Client
	from   string
}

// NewMailer builds an SMTP mailer from configuration.
func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Password),
		)
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &Mailer{client: client, from: cfg.From}, nil
}

// Send delivers a single message.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	email := gomail.NewMsg()
	if err := email.From(m.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
