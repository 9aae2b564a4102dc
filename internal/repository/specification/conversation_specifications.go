package specification

import "gorm.io/gorm"

// ByConversationID filters messages by their parent conversation.
// Conversation ids travel as strings at the entity layer because the
// memory fallback store issues non-uuid local ids; only durable uuid
// ids ever reach the database.
type ByConversationID struct {
	ConversationID string
}

func (s ByConversationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("conversation_id = ?", s.ConversationID)
}

// ByRole filters messages by author role
type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}
