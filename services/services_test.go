package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpupo63/portfolio-backend/errs"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func TestContactMessageMail(t *testing.T) {
	msg := ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "Hello there"}.Mail([]string{"me@example.com"})

	if msg.Subject != "Portfolio contact: Ada" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if msg.ReplyTo != "ada@example.com" {
		t.Errorf("reply-to = %q", msg.ReplyTo)
	}
	if msg.Text != "From: Ada <ada@example.com>\n\nHello there" {
		t.Errorf("text = %q", msg.Text)
	}
}

func TestContactServiceRelay(t *testing.T) {
	mailer := &recordingMailer{}
	svc := NewContactService(mailer, []string{"me@example.com"})
	if err := svc.Relay(context.Background(), ContactMessage{Name: "A", Email: "a@b.c", Message: "m"}); err != nil {
		t.Fatalf("relay: %v", err)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To[0] != "me@example.com" {
		t.Fatalf("unexpected sends: %+v", mailer.sent)
	}

	t.Run("no inbox configured", func(t *testing.T) {
		err := NewContactService(mailer, nil).Relay(context.Background(), ContactMessage{})
		if !errs.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})
}

func TestNewMailer(t *testing.T) {
	t.Run("missing smtp host", func(t *testing.T) {
		m := NewMailer(map[string]string{"MAIL_PORT": "587", "MAIL_FROM": "me@example.com"})
		err := m.Send(context.Background(), Message{To: []string{"x@example.com"}})
		if !errs.IsConfigError(err) || !strings.Contains(err.Error(), "MAIL_HOST") {
			t.Fatalf("expected MAIL_HOST config error, got %v", err)
		}
	})

	t.Run("resend", func(t *testing.T) {
		m := NewMailer(map[string]string{"MAIL_PROVIDER": "resend", "RESEND_API_KEY": "k", "RESEND_FROM_EMAIL": "me@example.com"})
		if _, ok := m.(*ResendMailer); !ok {
			t.Fatalf("expected ResendMailer, got %T", m)
		}
	})

	t.Run("smtp", func(t *testing.T) {
		m := NewMailer(map[string]string{"MAIL_HOST": "smtp.example.com", "MAIL_PORT": "465", "MAIL_FROM": "me@example.com", "MAIL_SECURE": "true"})
		s, ok := m.(*SMTPMailer)
		if !ok || s.Port != 465 || !s.Secure {
			t.Fatalf("unexpected mailer %#v", m)
		}
	})
}

func TestResendMailer(t *testing.T) {
	var got ResendEmailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m := NewResendMailer("re_key", "Site <site@example.com>")
	m.endpoint = srv.URL

	err := m.Send(context.Background(), Message{To: []string{"me@example.com"}, ReplyTo: "ada@example.com", Subject: "s", Text: "t"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer re_key" {
		t.Errorf("authorization = %q", auth)
	}
	if got.From != "Site <site@example.com>" || got.ReplyTo != "ada@example.com" || got.Text != "t" {
		t.Errorf("unexpected payload: %+v", got)
	}

	t.Run("api error", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid from"}`))
		}))
		defer failing.Close()
		m.endpoint = failing.URL
		err := m.Send(context.Background(), Message{To: []string{"me@example.com"}})
		if err == nil || !strings.Contains(err.Error(), "invalid from") {
			t.Fatalf("expected api error, got %v", err)
		}
	})
}

func TestNewMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	render := func(t *testing.T, msg Message) string {
		t.Helper()
		m, err := newMessage("Site <site@example.com>", msg, now)
		if err != nil {
			t.Fatalf("newMessage: %v", err)
		}
		var buf bytes.Buffer
		if _, err := m.WriteTo(&buf); err != nil {
			t.Fatalf("write: %v", err)
		}
		return buf.String()
	}

	t.Run("headers and body", func(t *testing.T) {
		raw := render(t, Message{
			To:      []string{"me@example.com"},
			ReplyTo: "visitor@example.com",
			Subject: "Portfolio contact: Zoë\r\nBcc: victim@example.com",
			Text:    "line one\nline two",
		})

		if strings.Contains(raw, "\r\nBcc:") {
			t.Fatalf("header injection not neutralized:\n%s", raw)
		}
		if !strings.Contains(raw, "Reply-To: <visitor@example.com>") {
			t.Errorf("missing reply-to header:\n%s", raw)
		}
		if !strings.Contains(strings.ToLower(raw), "subject: =?utf-8?q?") {
			t.Errorf("non-ascii subject should be encoded:\n%s", raw)
		}
		if !strings.Contains(raw, "line one\r\nline two") {
			t.Errorf("body not CRLF normalized:\n%q", raw)
		}
		if !strings.Contains(raw, "Date: Sun, 01 Mar 2026 10:00:00 +0000\r\n") {
			t.Errorf("missing date header:\n%s", raw)
		}
	})

	t.Run("reply-to carrying headers is rejected", func(t *testing.T) {
		_, err := newMessage("site@example.com", Message{
			To:      []string{"me@example.com"},
			ReplyTo: "evil@example.com\r\nBcc: victim@example.com",
		}, now)
		if err == nil || !strings.Contains(err.Error(), "reply-to") {
			t.Fatalf("expected reply-to error, got %v", err)
		}
	})

	t.Run("bad from", func(t *testing.T) {
		_, err := newMessage("not an address", Message{To: []string{"me@example.com"}}, now)
		if err == nil || !strings.Contains(err.Error(), "MAIL_FROM") {
			t.Fatalf("expected MAIL_FROM error, got %v", err)
		}
	})
}
