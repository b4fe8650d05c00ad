// Package notifier delivers short plain-text notifications to a single
// recipient address.  The production implementation speaks SMTP; the
// booking workflow only sees the Send signature and a DeliveryError on
// failure.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// DeliveryError reports a failed delivery attempt.  It wraps the
// transport error so callers can still inspect it with errors.As/Is.
type DeliveryError struct {
	To  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver mail to %s: %v", e.To, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// SMTPMailer sends mail through a plain SMTP relay.  The From account
// doubles as the authentication user, matching how the reservation
// system's mail account is provisioned.
type SMTPMailer struct {
	Host string
	Port string
	From string
	Pass string
}

// NewSMTPMailer returns a mailer for the given relay.  Pass may be empty
// for relays that accept unauthenticated local connections.
func NewSMTPMailer(host, port, from, pass string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, From: from, Pass: pass}
}

// Send delivers a plain-text message.  The context is honored only up to
// connection setup; net/smtp does not support per-command deadlines.
// Failures are returned as *DeliveryError.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{To: to, Err: err}
	}
	msg := strings.Join([]string{
		"From: Meeting Room Reservation <" + m.From + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.Pass != "" {
		auth = smtp.PlainAuth("", m.From, m.Pass, m.Host)
	}
	addr := m.Host + ":" + m.Port
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg)); err != nil {
		return &DeliveryError{To: to, Err: err}
	}
	return nil
}
