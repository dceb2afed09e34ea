package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultAPIBaseURL is the production Telegram Bot API endpoint
const DefaultAPIBaseURL = "https://api.telegram.org"

// sendMessageRequest is the Bot API sendMessage payload. The wire format is
// fixed: HTML parse mode, link previews enabled.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// TelegramNotifier delivers messages to a fixed Telegram chat
type TelegramNotifier struct {
	baseURL string
	token   string
	chatID  string
	client  *http.Client
	logger  *logrus.Logger
}

// NewTelegramNotifier creates a notifier for the given bot token and chat ID.
// baseURL falls back to the production API when empty.
func NewTelegramNotifier(baseURL, token, chatID string, logger *logrus.Logger) *TelegramNotifier {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &TelegramNotifier{
		baseURL: baseURL,
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Send delivers one message. A non-2xx response is a delivery failure for
// this message only; the caller decides whether to continue.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message payload: %v", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram API error: %d", resp.StatusCode)
	}

	return nil
}

// Healthy probes the Bot API with a getMe call
func (n *TelegramNotifier) Healthy(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getMe", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram unreachable: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram API error: %d", resp.StatusCode)
	}

	return nil
}
