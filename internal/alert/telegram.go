package alert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk/internal/cache"
	"github.com/spec-kit/helpdesk/internal/clients/telegram"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// BotResolver looks up a bot credential by name.
type BotResolver interface {
	Token(ctx context.Context, name string) (string, error)
}

// MessageSender posts to the Bot API.
type MessageSender interface {
	SendMessage(ctx context.Context, token string, msg telegram.SendMessageRequest) (string, error)
}

// TelegramChannel delivers to a chat (optionally a forum thread) through a named bot.
type TelegramChannel struct {
	bots   BotResolver
	sender MessageSender
}

// NewTelegramChannel constructs the strategy.
func NewTelegramChannel(bots BotResolver, sender MessageSender) *TelegramChannel {
	return &TelegramChannel{bots: bots, sender: sender}
}

type telegramParams struct {
	BotName  string `json:"botName" validate:"required"`
	ChatID   string `json:"chatId" validate:"required"`
	Message  string `json:"message" validate:"required"`
	Username string `json:"username" validate:"required"`
}

func (c *TelegramChannel) Platform() domain.Platform { return domain.PlatformTelegram }

func (c *TelegramChannel) Validate(req domain.AlertRequest) error {
	params := telegramParams{
		BotName:  strings.TrimSpace(req.BotName),
		ChatID:   strings.TrimSpace(req.ChatID),
		Message:  strings.TrimSpace(req.Message),
		Username: strings.TrimSpace(req.Username),
	}
	if err := apperrors.ValidateStruct(params); err != nil {
		return err
	}
	if IsAssignment(params.Message) && strings.TrimSpace(req.AssignerName) == "" {
		return apperrors.NewValidationError("invalid fields: assignerName",
			map[string]any{"fields": map[string]any{"assignerName": "required"}})
	}
	if onlySeparators(params.Message) {
		return apperrors.NewValidationCode(apperrors.CodeEmptyEffectiveMessage,
			"message has no content besides separators", nil)
	}
	return nil
}

func (c *TelegramChannel) Send(ctx context.Context, req domain.AlertRequest) (*domain.DispatchResult, error) {
	details := map[string]any{"platform": domain.PlatformTelegram, "botName": req.BotName}

	token, err := c.bots.Token(ctx, req.BotName)
	if err != nil {
		msg := "bot credential lookup failed"
		if errors.Is(err, cache.ErrUnknownBot) {
			msg = "unknown telegram bot"
		}
		return nil, apperrors.NewDeliveryError(msg, details, err)
	}

	id, err := c.sender.SendMessage(ctx, token, telegram.SendMessageRequest{
		ChatID:          strings.TrimSpace(req.ChatID),
		Text:            formatTelegram(req),
		MessageThreadID: req.ThreadID,
	})
	if err != nil {
		return nil, apperrors.NewDeliveryError("telegram send failed", details, err)
	}
	return &domain.DispatchResult{Platform: domain.PlatformTelegram, Delivered: true, ID: id}, nil
}

func formatTelegram(req domain.AlertRequest) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(req.Message))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "by %s", strings.TrimSpace(req.Username))
	if name := strings.TrimSpace(req.AssignerName); name != "" {
		fmt.Fprintf(&b, "\nassigned by %s", name)
	}
	return b.String()
}
