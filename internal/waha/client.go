package waha

import (
	"context"
	"fmt"
	"strings"
	"time"

	"saham-bot/internal/api"
	"saham-bot/internal/logger"
	"saham-bot/internal/store"
)

// Client sends messages through a WAHA gateway session.
type Client struct {
	api       *api.Client
	session   string
	signature string
}

// NewClient builds a gateway client from configuration. The API key, when
// configured, is sent both as X-Api-Key and as a bearer token; WAHA
// deployments differ on which one they check.
func NewClient(cfg *store.Config) *Client {
	opts := []api.ClientOption{
		api.WithBaseURL(cfg.Waha.BaseURL),
		api.WithTimeout(15 * time.Second),
		api.WithHeader("Content-Type", "application/json"),
		api.WithLogging(true),
	}
	if cfg.Waha.APIKey != "" {
		opts = append(opts,
			api.WithHeader("X-Api-Key", cfg.Waha.APIKey),
			api.WithHeader("Authorization", "Bearer "+cfg.Waha.APIKey),
		)
	}
	return &Client{
		api:       api.NewClient(opts...),
		session:   cfg.Waha.Session,
		signature: cfg.Reply.Signature,
	}
}

type sendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// SendText delivers text to chatID, appending the signature footer when the
// message does not already end with it.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	timer := logger.StartOperation(ctx, "waha.sendText", "chat_id", chatID)

	payload := sendTextRequest{
		ChatID:  chatID,
		Text:    c.withSignature(text),
		Session: c.session,
	}

	if _, err := c.api.POST(ctx, "/api/sendText", payload); err != nil {
		timer.EndWithError(err, "chat_id", chatID)
		return fmt.Errorf("waha sendText: %w", err)
	}

	timer.End()
	return nil
}

func (c *Client) withSignature(text string) string {
	if c.signature == "" || text == "" {
		return text
	}
	trimmed := strings.TrimRight(text, " \n")
	if strings.HasSuffix(trimmed, c.signature) {
		return trimmed
	}
	return trimmed + "\n\n" + c.signature
}
