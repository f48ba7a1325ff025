package services

import (
	"context"
	"fmt"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rs/zerolog/log"
)

// ContactMessage is a visitor's message from the public contact form. It is relayed, never stored.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Mail formats the relay email sent to the site owner.
func (c ContactMessage) Mail(to []string) Message {
	return Message{
		To:      to,
		ReplyTo: c.Email,
		Subject: "Portfolio contact: " + c.Name,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", c.Name, c.Email, c.Message),
	}
}

// ContactService relays contact form submissions to the configured inbox.
type ContactService struct {
	mailer Mailer
	to     []string
}

func NewContactService(mailer Mailer, to []string) *ContactService {
	return &ContactService{mailer: mailer, to: to}
}

func (s *ContactService) Relay(ctx context.Context, msg ContactMessage) error {
	if len(s.to) == 0 {
		return errs.NewConfigError("MAIL_TO")
	}
	if err := s.mailer.Send(ctx, msg.Mail(s.to)); err != nil {
		return err
	}
	log.Info().Str("replyTo", msg.Email).Msg("Contact message relayed")
	return nil
}
