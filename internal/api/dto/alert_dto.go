package dto

import "github.com/spec-kit/helpdesk/internal/domain"

// AlertRequest is an ad-hoc dispatch. Field requirements depend on the platform
// and are checked by the channel.
type AlertRequest struct {
	BotName      string `json:"botName"`
	ChatID       string `json:"chatId"`
	ThreadID     *int64 `json:"threadId"`
	Email        string `json:"email"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Username     string `json:"username"`
	AssignerName string `json:"assignerName"`
}

// ToDomain binds the payload to platform.
func (r AlertRequest) ToDomain(platform string) domain.AlertRequest {
	return domain.AlertRequest{
		Platform:     domain.Platform(platform),
		BotName:      r.BotName,
		ChatID:       r.ChatID,
		ThreadID:     r.ThreadID,
		Email:        r.Email,
		Subject:      r.Subject,
		Message:      r.Message,
		Username:     r.Username,
		AssignerName: r.AssignerName,
	}
}
