package alert

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const defaultSubject = "Help desk notification"

// MailSender sends one message and returns its Message-ID.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// GmailChannel delivers to a single address over SMTP.
type GmailChannel struct {
	sender MailSender
}

// NewGmailChannel constructs the strategy.
func NewGmailChannel(sender MailSender) *GmailChannel {
	return &GmailChannel{sender: sender}
}

type gmailParams struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

func (c *GmailChannel) Platform() domain.Platform { return domain.PlatformGmail }

func (c *GmailChannel) Validate(req domain.AlertRequest) error {
	return apperrors.ValidateStruct(gmailParams{
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	})
}

func (c *GmailChannel) Send(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		subject = defaultSubject
	}
	id, err := c.sender.Send(ctx, strings.TrimSpace(req.Email), subject, req.Message)
	if err != nil {
		return nil, apperrors.NewDeliveryError("mail send failed",
			map[string]any{"platform": domain.PlatformGmail}, err)
	}
	return &domain.DispatchResult{Platform: domain.PlatformGmail, Delivered: true, ID: id}, nil
}
