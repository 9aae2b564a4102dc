package entity

import "time"

// Message is append-only and ordered by CreatedAt within a conversation.
type Message struct {
	Id             string
	ConversationId string
	Role           string
	Content        string
	CreatedAt      time.Time
}
