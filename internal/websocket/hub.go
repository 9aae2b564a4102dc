package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"agentic-bi-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// relayChannel is the Redis pub/sub channel used to fan report events
// out across instances.
const relayChannel = "bi_cluster_events"

// Hub tracks websocket subscribers per conversation. A browser opens
// one socket per conversation it is watching; multiple tabs on the
// same conversation each get their own client.
type Hub struct {
	// ConversationID -> subscribed clients
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance relay, nil when single node
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ConversationID] = append(h.clients[client.ConversationID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"conversation_id": client.ConversationID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ConversationID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ConversationID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ConversationID]) == 0 {
					delete(h.clients, client.ConversationID)
					h.logger.Info("Hub", "Conversation has no subscribers left", map[string]interface{}{"conversation_id": client.ConversationID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// dropStalled queues slow consumers for removal. Only Run closes the
// Send channel; queueing happens after the read lock is released so the
// unregister branch can acquire the write lock.
func (h *Hub) dropStalled(stalled []*Client) {
	for _, client := range stalled {
		h.unregister <- client
	}
}

// Notify pushes a payload to every subscriber of one conversation, and
// relays it so subscribers on other instances get it too.
func (h *Hub) Notify(conversationID string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "report_event",
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal notification", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for _, client := range h.clients[conversationID] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"conversation_id": conversationID})
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()
	h.dropStalled(stalled)

	if h.rdb != nil {
		relay := map[string]interface{}{
			"target_conversation_id": conversationID,
			"message":                data,
		}
		jsonRelay, _ := json.Marshal(relay)
		h.rdb.Publish(context.Background(), relayChannel, jsonRelay)
	}
}

// Broadcast pushes a payload to every connected client regardless of
// conversation. Used for system-wide events like ingestion completions.
func (h *Hub) Broadcast(payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "system_event",
		"data": payload,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	var stalled []*Client
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				stalled = append(stalled, client)
			}
		}
	}
	h.mu.RUnlock()
	h.dropStalled(stalled)

	if h.rdb != nil {
		relay := map[string]interface{}{
			"target_conversation_id": "*",
			"message":                data,
		}
		jsonRelay, _ := json.Marshal(relay)
		h.rdb.Publish(context.Background(), relayChannel, jsonRelay)
	}
}

// subscribeToRedis delivers relayed messages to locally connected
// subscribers. Every instance subscribes to the same channel and
// filters by conversation id.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetConversationID string          `json:"target_conversation_id"`
			Message              json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		var stalled []*Client
		if payload.TargetConversationID == "*" {
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						stalled = append(stalled, client)
					}
				}
			}
		} else if clients, ok := h.clients[payload.TargetConversationID]; ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					stalled = append(stalled, client)
				}
			}
		}
		h.mu.RUnlock()
		h.dropStalled(stalled)
	}
}
