package handlers

import (
	"log"

	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// NotificationHandler upgrades authenticated clients onto the order event
// stream. The connection is receive-only; the hub pushes order_created and
// order_status events as they happen.
type NotificationHandler struct {
	Hub *ws.Hub
}

func NewNotificationHandler(hub *ws.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// WebSocketUpgradeMiddleware ensures the client is trying to upgrade to WebSocket
func (h *NotificationHandler) WebSocketUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler returns the websocket handler function
func (h *NotificationHandler) Handler() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			log.Println("Invalid or missing User ID in WebSocket connection")
			c.Close()
			return
		}

		client := &ws.Client{
			Hub:    h.Hub,
			Conn:   c,
			Send:   make(chan []byte, 256),
			UserID: userID,
		}

		client.Hub.Register <- client

		go client.WritePump()
		client.ReadPump()
	})
}
