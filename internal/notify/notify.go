// Package notify delivers out-of-band alerts to hospital staff. Delivery is
// best effort: a failed notification is logged and never fails the referral
// operation that triggered it.
package notify

import (
	"fmt"
	"net/smtp"

	log "github.com/sirupsen/logrus"

	"github.com/kisumu-dev/referral-dispatch/internal/config"
)

// Notifier sends a message to a recipient address.
type Notifier interface {
	Notify(recipient, subject, body string) error
}

// SMTPNotifier sends email through a plain-auth SMTP relay.
type SMTPNotifier struct {
	server   string
	port     int
	username string
	password string
}

// NewSMTPNotifier builds a notifier from the service config.
func NewSMTPNotifier(cfg config.Config) *SMTPNotifier {
	return &SMTPNotifier{
		server:   cfg.SMTPServer,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

// Notify sends the message. Returns an error when the relay rejects it;
// callers are expected to log and continue.
func (n *SMTPNotifier) Notify(recipient, subject, body string) error {
	if n.username == "" {
		return fmt.Errorf("smtp notifier not configured")
	}

	msg := []byte("From: " + n.username + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	addr := fmt.Sprintf("%s:%d", n.server, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.server)
	if err := smtp.SendMail(addr, auth, n.username, []string{recipient}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", recipient, err)
	}
	return nil
}

// LogNotifier writes notifications to the service log. Used in development
// and as the fallback when no SMTP relay is configured.
type LogNotifier struct{}

// Notify logs the message and always succeeds.
func (LogNotifier) Notify(recipient, subject, body string) error {
	log.WithFields(log.Fields{
		"recipient": recipient,
		"subject":   subject,
	}).Info(body)
	return nil
}
