package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"agentic-bi-be/internal/entity"
)

// ConversationStore is the in-process fallback used when the database
// is unavailable. Ids are issued as local-conv-N / local-msg-N so they
// can never collide with durable uuid ids. Contents last only as long
// as the process.
type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message
	convSeq       int
	msgSeq        int
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (s *ConversationStore) CreateConversation(title string) *entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convSeq++
	conv := &entity.Conversation{
		Id:        fmt.Sprintf("local-conv-%d", s.convSeq),
		Title:     title,
		CreatedAt: time.Now(),
	}
	s.conversations[conv.Id] = conv
	return conv
}

func (s *ConversationStore) GetConversation(id string) (*entity.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	return conv, ok
}

// ListConversations returns conversations newest first.
func (s *ConversationStore) ListConversations() []*entity.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entity.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *ConversationStore) AddMessage(conversationId, role, content string) *entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgSeq++
	msg := &entity.Message{
		Id:             fmt.Sprintf("local-msg-%d", s.msgSeq),
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	s.messages[conversationId] = append(s.messages[conversationId], msg)
	return msg
}

// GetMessages returns messages in insertion order, oldest first.
func (s *ConversationStore) GetMessages(conversationId string) []*entity.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.messages[conversationId]
	out := make([]*entity.Message, len(msgs))
	copy(out, msgs)
	return out
}

func (s *ConversationStore) DeleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, id)
	delete(s.messages, id)
}
