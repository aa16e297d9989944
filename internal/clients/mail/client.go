package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Sender is the part of *gomail.Dialer the client needs.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Client sends single-recipient mail over SMTP.
type Client struct {
	cfg    config.MailConfig
	sender Sender
}

// New builds a client dialing the configured SMTP server.
func New(cfg config.MailConfig) *Client {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}
	return NewWithSender(cfg, dialer)
}

// NewWithSender uses an explicit transport.
func NewWithSender(cfg config.MailConfig, sender Sender) *Client {
	return &Client{cfg: cfg, sender: sender}
}

// Send delivers one message and returns its generated Message-ID.
func (c *Client) Send(ctx context.Context, to, subject, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), c.cfg.Host)

	msg.SetAddressHeader("From", c.cfg.From, c.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetHeader("Message-ID", messageID)
	if isHTML(body) {
		msg.SetBody("text/html", body)
	} else {
		msg.SetBody("text/plain", body)
	}

	if err := c.sender.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return messageID, nil
}

var htmlTag = regexp.MustCompile("<[^>]+>")

func isHTML(message string) bool {
	return htmlTag.MatchString(message)
}
