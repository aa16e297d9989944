package domain

import "time"

// Station is a site that raises tickets. Its Telegram fields are the alert
// destination for tickets raised there.
type Station struct {
	ID               int64
	Name             string
	Location         string
	TelegramBot      string
	TelegramChatID   string
	TelegramThreadID *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasTelegram reports whether alerts can be routed to the station's chat.
func (s *Station) HasTelegram() bool {
	return s != nil && s.TelegramBot != "" && s.TelegramChatID != ""
}
