package entity

import "time"

// Conversation ids are strings rather than UUIDs: the durable store
// issues UUIDs while the in-memory fallback issues local-conv-N ids
// that are only unique within one process.
type Conversation struct {
	Id        string
	Title     string
	CreatedAt time.Time
}
