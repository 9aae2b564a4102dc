package service

import (
	"context"
	"strings"

	"agentic-bi-be/internal/constant"
	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/pkg/logger"
	"agentic-bi-be/internal/repository/memory"
	"agentic-bi-be/internal/repository/specification"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/pkg/health"
)

// maxTitleLen bounds the simplified retry payload for conversations.
const maxTitleLen = 120

type IConversationService interface {
	CreateConversation(ctx context.Context, title string) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	ListConversations(ctx context.Context) ([]*entity.Conversation, error)
	AppendMessage(ctx context.Context, conversationId, role, content string) (*entity.Message, error)
	GetHistory(ctx context.Context, conversationId string, limit int) ([]*entity.Message, error)
	DeleteConversation(ctx context.Context, id string) error
}

// conversationService persists conversations durably while the database
// is healthy and falls back to the in-process store when it is not.
// Degradation is one-way for the process lifetime; each entity type
// logs a single warning when it first falls back.
type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
	fallback   *memory.ConversationStore
	gate       *health.Gate
	logger     logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	fallback *memory.ConversationStore,
	gate *health.Gate,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory: uowFactory,
		fallback:   fallback,
		gate:       gate,
		logger:     log,
	}
}

// isLocalId reports whether the id was issued by the fallback store.
// Local ids never resolve against the database.
func isLocalId(id string) bool {
	return strings.HasPrefix(id, "local-")
}

func (cs *conversationService) degrade(entityType string, err error) {
	cs.gate.Degrade()
	if cs.gate.WarnOnce(entityType) {
		perr := &PersistenceError{Entity: entityType, Err: err}
		cs.logger.Warn("ConversationService", "Durable store unavailable, switching to in-memory fallback", map[string]interface{}{
			"entity": entityType,
			"error":  perr.Error(),
		})
	}
}

func (cs *conversationService) CreateConversation(ctx context.Context, title string) (*entity.Conversation, error) {
	if !cs.gate.Ready() {
		return cs.fallback.CreateConversation(title), nil
	}

	conv := &entity.Conversation{Title: title}
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	err := uow.ConversationRepository().Create(ctx, conv)
	if err == nil {
		return conv, nil
	}

	// Retry once with a simplified record before giving up on the
	// durable store.
	simplified := &entity.Conversation{Title: truncate(title, maxTitleLen)}
	if retryErr := uow.ConversationRepository().Create(ctx, simplified); retryErr == nil {
		return simplified, nil
	}

	cs.degrade(constant.EntityConversations, err)
	return cs.fallback.CreateConversation(title), nil
}

func (cs *conversationService) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	if isLocalId(id) || !cs.gate.Ready() {
		conv, _ := cs.fallback.GetConversation(id)
		return conv, nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	conv, err := uow.ConversationRepository().FindOne(ctx, specification.FilterBy{Field: "id", Value: id})
	if err != nil {
		cs.degrade(constant.EntityConversations, err)
		conv, _ := cs.fallback.GetConversation(id)
		return conv, nil
	}
	return conv, nil
}

func (cs *conversationService) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	if !cs.gate.Ready() {
		return cs.fallback.ListConversations(), nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	convs, err := uow.ConversationRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		cs.degrade(constant.EntityConversations, err)
		return cs.fallback.ListConversations(), nil
	}
	return convs, nil
}

func (cs *conversationService) AppendMessage(ctx context.Context, conversationId, role, content string) (*entity.Message, error) {
	if isLocalId(conversationId) || !cs.gate.Ready() {
		return cs.fallback.AddMessage(conversationId, role, content), nil
	}

	msg := &entity.Message{
		ConversationId: conversationId,
		Role:           role,
		Content:        content,
	}
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	err := uow.MessageRepository().Create(ctx, msg)
	if err == nil {
		return msg, nil
	}

	simplified := &entity.Message{
		ConversationId: conversationId,
		Role:           role,
		Content:        truncate(content, 4000),
	}
	if retryErr := uow.MessageRepository().Create(ctx, simplified); retryErr == nil {
		return simplified, nil
	}

	cs.degrade(constant.EntityMessages, err)
	return cs.fallback.AddMessage(conversationId, role, content), nil
}

func (cs *conversationService) GetHistory(ctx context.Context, conversationId string, limit int) ([]*entity.Message, error) {
	if limit <= 0 {
		limit = constant.HistoryWindow
	}

	if isLocalId(conversationId) || !cs.gate.Ready() {
		return tailMessages(cs.fallback.GetMessages(conversationId), limit), nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	msgs, err := uow.MessageRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		cs.degrade(constant.EntityMessages, err)
		return tailMessages(cs.fallback.GetMessages(conversationId), limit), nil
	}
	return tailMessages(msgs, limit), nil
}

func (cs *conversationService) DeleteConversation(ctx context.Context, id string) error {
	if isLocalId(id) || !cs.gate.Ready() {
		cs.fallback.DeleteConversation(id)
		return nil
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.MessageRepository().DeleteByConversationId(ctx, id); err != nil {
		return &PersistenceError{Entity: constant.EntityMessages, Err: err}
	}
	if err := uow.ConversationRepository().Delete(ctx, id); err != nil {
		return &PersistenceError{Entity: constant.EntityConversations, Err: err}
	}
	return nil
}

// tailMessages keeps the most recent messages while preserving oldest
// first ordering.
func tailMessages(msgs []*entity.Message, limit int) []*entity.Message {
	if len(msgs) <= limit {
		return msgs
	}
	return msgs[len(msgs)-limit:]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
