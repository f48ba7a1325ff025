package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPMailer relays mail through an SMTP server. Secure selects implicit TLS
// (usually port 465); otherwise STARTTLS is used when the server offers it.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Secure   bool
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	message, err := newMessage(m.From, msg, time.Now())
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithTimeout(30 * time.Second),
	}
	if m.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if m.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}
	return opts
}

// newMessage renders msg as a plain text message. Addresses are parsed by go-mail, so a
// value carrying extra headers is rejected.
func newMessage(from string, msg Message, now time.Time) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid MAIL_FROM: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to: %w", err)
		}
	}
	// the subject carries the visitor's name
	m.Subject(strings.NewReplacer("\r", " ", "\n", " ").Replace(msg.Subject))
	m.SetDateWithValue(now)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	return m, nil
}
