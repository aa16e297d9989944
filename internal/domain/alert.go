package domain

// Platform selects an alert channel.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformGmail    Platform = "gmail"
)

// AlertRequest is a single notification attempt. It is never persisted.
type AlertRequest struct {
	Platform     Platform `json:"platform"`
	BotName      string   `json:"botName,omitempty"`
	ChatID       string   `json:"chatId,omitempty"`
	ThreadID     *int64   `json:"threadId,omitempty"`
	Email        string   `json:"email,omitempty"`
	Subject      string   `json:"subject,omitempty"`
	Message      string   `json:"message"`
	Username     string   `json:"username,omitempty"`
	AssignerName string   `json:"assignerName,omitempty"`
}

// DispatchResult acknowledges a delivered alert.
type DispatchResult struct {
	Platform  Platform `json:"platform"`
	Delivered bool     `json:"delivered"`
	ID        string   `json:"id,omitempty"`
}

// TelegramBot is a named bot credential in the lookup store.
type TelegramBot struct {
	Name  string
	Token string
}
