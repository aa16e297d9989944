package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// StationRequest creates or replaces a station.
type StationRequest struct {
	Name             string `json:"name" validate:"required,max=120"`
	Location         string `json:"location" validate:"max=255"`
	TelegramBot      string `json:"telegramBot" validate:"required_with=TelegramChatID"`
	TelegramChatID   string `json:"telegramChatId" validate:"required_with=TelegramBot"`
	TelegramThreadID *int64 `json:"telegramThreadId"`
}

// BotRequest registers a Telegram bot credential.
type BotRequest struct {
	Name  string `json:"name" validate:"required,max=80"`
	Token string `json:"token" validate:"required"`
}

// StationResponse view.
type StationResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Location         string    `json:"location"`
	TelegramBot      string    `json:"telegramBot,omitempty"`
	TelegramChatID   string    `json:"telegramChatId,omitempty"`
	TelegramThreadID *int64    `json:"telegramThreadId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// NewStationResponse maps a station.
func NewStationResponse(s *domain.Station) StationResponse {
	return StationResponse{
		ID:               s.ID,
		Name:             s.Name,
		Location:         s.Location,
		TelegramBot:      s.TelegramBot,
		TelegramChatID:   s.TelegramChatID,
		TelegramThreadID: s.TelegramThreadID,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}
