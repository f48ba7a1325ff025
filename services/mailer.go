package services

import (
	"context"
	"strings"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// Message is one outbound plain text email.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns the mailer selected by MAIL_PROVIDER ("smtp" or "resend").
// Missing settings do not stop startup; the returned mailer fails every send with a
// configuration error naming the first missing key.
func NewMailer(c map[string]string) Mailer {
	provider := strings.ToLower(config.GetString(c, "MAIL_PROVIDER", "smtp"))

	var required []string
	switch provider {
	case "resend":
		required = []string{"RESEND_API_KEY", "RESEND_FROM_EMAIL"}
	default:
		provider = "smtp"
		required = []string{"MAIL_HOST", "MAIL_PORT", "MAIL_FROM"}
	}
	for _, key := range required {
		if config.GetString(c, key, "") == "" {
			log.Warn().Str("provider", provider).Str("missing", key).Msg("Mail relay is not configured")
			return unconfiguredMailer{key: key}
		}
	}

	if provider == "resend" {
		return NewResendMailer(
			config.GetString(c, "RESEND_API_KEY", ""),
			config.GetString(c, "RESEND_FROM_EMAIL", ""),
		)
	}
	return &SMTPMailer{
		Host:     config.GetString(c, "MAIL_HOST", ""),
		Port:     config.GetInt(c, "MAIL_PORT", 587),
		Username: config.GetString(c, "MAIL_USER", ""),
		Password: config.GetString(c, "MAIL_PASS", ""),
		From:     config.GetString(c, "MAIL_FROM", ""),
		Secure:   config.GetBool(c, "MAIL_SECURE", false),
	}
}

type unconfiguredMailer struct {
	key string
}

func (m unconfiguredMailer) Send(context.Context, Message) error {
	return errs.NewConfigError(m.key)
}
