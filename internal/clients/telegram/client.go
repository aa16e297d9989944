package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrEmptyToken is returned when a send is attempted without a bot credential.
var ErrEmptyToken = errors.New("telegram: empty bot token")

// APIError is a non-ok reply from the Bot API.
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api: status %d code %d: %s", e.StatusCode, e.ErrorCode, e.Description)
}

// Config represents client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Telegram Bot API. It never retries.
type Client struct {
	http *resty.Client
}

// SendMessageRequest mirrors the sendMessage parameters the service uses.
type SendMessageRequest struct {
	ChatID          string `json:"chat_id"`
	Text            string `json:"text"`
	MessageThreadID *int64 `json:"message_thread_id,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// NewClient creates a new Bot API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return &Client{http: httpClient}
}

// SendMessage posts one message and returns the Telegram message id.
func (c *Client) SendMessage(ctx context.Context, token string, msg SendMessageRequest) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	var out sendMessageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("token", token).
		SetBody(msg).
		SetResult(&out).
		SetError(&out).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return "", fmt.Errorf("telegram sendMessage: %w", redactURL(err))
	}
	if resp.IsError() || !out.OK {
		return "", &APIError{StatusCode: resp.StatusCode(), ErrorCode: out.ErrorCode, Description: out.Description}
	}
	return strconv.FormatInt(out.Result.MessageID, 10), nil
}

// redactURL strips the request URL from transport errors; it embeds the bot token.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = "/bot<redacted>/sendMessage"
	}
	return err
}
