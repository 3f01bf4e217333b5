// Package notify delivers best-effort lifecycle notifications.
//
// Notifications are a side channel, not an output: every failure to deliver
// is logged and swallowed so the poll loop never sees it.
package notify

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers a status message with detail text. Implementations must
// not return errors to the caller.
type Notifier interface {
	Notify(status, detail string)
}

// ist stamps messages in the trading zone regardless of where the collector
// runs.
var ist = time.FixedZone("IST", 5*3600+30*60)

// Telegram posts messages to a Telegram chat via the Bot API.
type Telegram struct {
	baseURL    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *slog.Logger
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// NewTelegram creates a notifier for one bot and chat.
func NewTelegram(token, chatID string, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		baseURL: "https://api.telegram.org",
		token:   token,
		chatID:  chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithBaseURL overrides the Bot API base URL.
func WithBaseURL(u string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) TelegramOption {
	return func(t *Telegram) {
		t.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TelegramOption {
	return func(t *Telegram) {
		t.logger = logger
	}
}

// Notify sends one message. Fire and forget: delivery failures are logged,
// never propagated.
func (t *Telegram) Notify(status, detail string) {
	stamp := time.Now().In(ist).Format("02/01/2006, 15:04:05")
	text := "🕒 **Timestamp:** " + stamp + "\n" +
		"📈 **Status:** " + status + "\n" +
		"📋 **Details:** " + detail

	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		t.logger.Warn("encode telegram payload", "error", err)
		return
	}

	resp, err := t.httpClient.Post(
		t.baseURL+"/bot"+t.token+"/sendMessage",
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		t.logger.Warn("send telegram message", "status", status, "error", err)
		return
	}
	defer resp.Body.Close()

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || !result.OK {
		t.logger.Warn("telegram rejected message",
			"status", status,
			"http_status", resp.StatusCode,
		)
		return
	}

	t.logger.Debug("telegram message sent", "status", status)
}

// Nop discards all notifications. Used when the channel is disabled.
type Nop struct{}

func (Nop) Notify(status, detail string) {}
