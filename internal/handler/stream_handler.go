package handler

import (
	"agentic-bi-be/internal/pkg/logger"
	internalWS "agentic-bi-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// StreamHandler exposes the websocket endpoint clients use to follow a
// conversation's report events in real time.
type StreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewStreamHandler(hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *StreamHandler) RegisterRoutes(r fiber.Router) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/ws/:conversation_id", websocket.New(func(conn *websocket.Conn) {
		conversationId := conn.Params("conversation_id")
		if conversationId == "" {
			conn.Close()
			return
		}
		h.logger.Info("StreamHandler", "WebSocket connected", map[string]interface{}{"conversation_id": conversationId})
		internalWS.ServeWs(h.hub, conn, conversationId)
	}))
}
