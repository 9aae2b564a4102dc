package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers a connection as a subscriber of one conversation
// and runs its pumps until disconnect.
func ServeWs(hub *Hub, c *websocket.Conn, conversationID string) {
	client := &Client{Hub: hub, Conn: c, ConversationID: conversationID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // runs in the handler goroutine
}
