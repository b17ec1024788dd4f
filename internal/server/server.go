package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"saham-bot/internal/bot"
	"saham-bot/internal/logger"
	"saham-bot/internal/types"
)

// Handler exposes the webhook and health HTTP surface.
type Handler struct {
	bot *bot.Service
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(b *bot.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	h := &Handler{bot: b}
	r.POST("/webhook", h.Webhook)
	r.GET("/health", h.Health)

	return r
}

// messageFields covers the field spellings different WAHA versions use for
// the same message attributes.
type messageFields struct {
	Body      string `json:"body"`
	Text      string `json:"text"`
	Message   string `json:"message"`
	Content   string `json:"content"`
	ChatID    string `json:"chatId"`
	ChatIDAlt string `json:"chat_id"`
	From      string `json:"from"`
	FromMe    bool   `json:"fromMe"`
	FromMeAlt bool   `json:"from_me"`
}

func (m *messageFields) text() string {
	for _, v := range []string{m.Body, m.Text, m.Message, m.Content} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (m *messageFields) chatID() string {
	for _, v := range []string{m.ChatID, m.ChatIDAlt, m.From} {
		if v != "" {
			return v
		}
	}
	return ""
}

func (m *messageFields) fromMe() bool { return m.FromMe || m.FromMeAlt }

// webhookEvent accepts both the enveloped form ({"event": ..., "payload":
// {...}}) and a flat message object.
type webhookEvent struct {
	messageFields
	Event   string         `json:"event"`
	Payload *messageFields `json:"payload"`
}

// Webhook ingests one gateway callback. The gateway only needs a quick
// acknowledgment, so every outcome is a 200; the JSON status reports what
// happened downstream.
func (h *Handler) Webhook(c *gin.Context) {
	ctx := c.Request.Context()

	var evt webhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		logger.Warn(ctx, "Malformed webhook payload", "error", err)
		c.JSON(http.StatusOK, gin.H{"status": string(bot.OutcomeIgnored)})
		return
	}

	fields := evt.messageFields
	if evt.Payload != nil {
		fields = *evt.Payload
	}

	msg := types.InboundMessage{
		ChatID:     fields.chatID(),
		Text:       fields.text(),
		FromMe:     fields.fromMe(),
		ReceivedAt: time.Now(),
	}

	outcome := h.bot.HandleMessage(ctx, msg)
	c.JSON(http.StatusOK, gin.H{"status": string(outcome)})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "saham-bot",
		"timestamp": time.Now().Unix(),
	})
}
