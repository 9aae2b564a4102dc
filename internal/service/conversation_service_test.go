package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/pkg/logger"
	"agentic-bi-be/internal/repository/contract"
	"agentic-bi-be/internal/repository/memory"
	"agentic-bi-be/internal/repository/specification"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/pkg/health"

	"github.com/stretchr/testify/assert"
)

// noopLogger satisfies ILogger and counts warnings.
type noopLogger struct {
	warns int
}

func (l *noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *noopLogger) Info(module, message string, details map[string]interface{})  {}
func (l *noopLogger) Warn(module, message string, details map[string]interface{})  { l.warns++ }
func (l *noopLogger) Error(module, message string, details map[string]interface{}) {}
func (l *noopLogger) Sync() error                                                  { return nil }
func (l *noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (l *noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

// mockConversationRepo fails a configurable number of Create calls.
type mockConversationRepo struct {
	contract.ConversationRepository
	createFails int
	createCalls int
	created     []*entity.Conversation
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *entity.Conversation) error {
	m.createCalls++
	if m.createCalls <= m.createFails {
		return errors.New("connection refused")
	}
	conv.Id = "durable-id"
	m.created = append(m.created, conv)
	return nil
}

type mockMessageRepo struct {
	contract.MessageRepository
	createFails int
	createCalls int
	findAll     []*entity.Message
	findErr     error
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *entity.Message) error {
	m.createCalls++
	if m.createCalls <= m.createFails {
		return errors.New("connection refused")
	}
	msg.Id = "durable-msg-id"
	return nil
}

func (m *mockMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	return m.findAll, m.findErr
}

// mockUow wires the mock repositories into the unit of work contract.
type mockUow struct {
	unitofwork.UnitOfWork
	convRepo *mockConversationRepo
	msgRepo  *mockMessageRepo
}

func (m *mockUow) ConversationRepository() contract.ConversationRepository { return m.convRepo }
func (m *mockUow) MessageRepository() contract.MessageRepository           { return m.msgRepo }

type mockFactory struct {
	uow *mockUow
}

func (m *mockFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return m.uow }

func newServiceUnderTest(convRepo *mockConversationRepo, msgRepo *mockMessageRepo, ready bool) (IConversationService, *health.Gate, *noopLogger) {
	gate := health.NewGate(ready)
	log := &noopLogger{}
	factory := &mockFactory{uow: &mockUow{convRepo: convRepo, msgRepo: msgRepo}}
	svc := NewConversationService(factory, memory.NewConversationStore(), gate, log)
	return svc, gate, log
}

func TestCreateConversationDurable(t *testing.T) {
	convRepo := &mockConversationRepo{}
	svc, gate, _ := newServiceUnderTest(convRepo, &mockMessageRepo{}, true)

	conv, err := svc.CreateConversation(context.Background(), "sales analysis")
	assert.NoError(t, err)
	assert.Equal(t, "durable-id", conv.Id)
	assert.True(t, gate.Ready())
	assert.Equal(t, 1, convRepo.createCalls)
}

func TestCreateConversationRetriesSimplifiedOnce(t *testing.T) {
	convRepo := &mockConversationRepo{createFails: 1}
	svc, gate, _ := newServiceUnderTest(convRepo, &mockMessageRepo{}, true)

	longTitle := strings.Repeat("x", 500)
	conv, err := svc.CreateConversation(context.Background(), longTitle)
	assert.NoError(t, err)
	assert.Equal(t, 2, convRepo.createCalls)
	// The retry carries the simplified payload.
	assert.Len(t, conv.Title, maxTitleLen)
	assert.True(t, gate.Ready(), "single transient failure must not degrade")
}

func TestCreateConversationFallsBackAfterRetry(t *testing.T) {
	convRepo := &mockConversationRepo{createFails: 2}
	svc, gate, log := newServiceUnderTest(convRepo, &mockMessageRepo{}, true)

	conv, err := svc.CreateConversation(context.Background(), "title")
	assert.NoError(t, err)
	assert.Equal(t, "local-conv-1", conv.Id)
	assert.False(t, gate.Ready())
	assert.Equal(t, 1, log.warns)

	// Once degraded there are no further durable attempts and no
	// further warnings for the same entity type.
	callsAfter := convRepo.createCalls
	conv2, err := svc.CreateConversation(context.Background(), "second")
	assert.NoError(t, err)
	assert.Equal(t, "local-conv-2", conv2.Id)
	assert.Equal(t, callsAfter, convRepo.createCalls)
	assert.Equal(t, 1, log.warns)
}

func TestAppendMessageLocalConversationSkipsDatabase(t *testing.T) {
	msgRepo := &mockMessageRepo{}
	svc, gate, _ := newServiceUnderTest(&mockConversationRepo{}, msgRepo, true)

	msg, err := svc.AppendMessage(context.Background(), "local-conv-1", "user", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "local-msg-1", msg.Id)
	assert.Zero(t, msgRepo.createCalls)
	assert.True(t, gate.Ready(), "local id routing is not a degradation")
}

func TestAppendMessageRetryTruncatesContent(t *testing.T) {
	msgRepo := &mockMessageRepo{createFails: 1}
	svc, _, _ := newServiceUnderTest(&mockConversationRepo{}, msgRepo, true)

	longContent := strings.Repeat("y", 5000)
	msg, err := svc.AppendMessage(context.Background(), "conv-1", "user", longContent)
	assert.NoError(t, err)
	assert.Equal(t, 2, msgRepo.createCalls)
	assert.Len(t, msg.Content, 4000)
}

func TestGetHistoryWindowsOldestFirst(t *testing.T) {
	msgs := make([]*entity.Message, 0, 12)
	for i := 0; i < 12; i++ {
		msgs = append(msgs, &entity.Message{Id: string(rune('a' + i)), Content: string(rune('a' + i))})
	}
	msgRepo := &mockMessageRepo{findAll: msgs}
	svc, _, _ := newServiceUnderTest(&mockConversationRepo{}, msgRepo, true)

	history, err := svc.GetHistory(context.Background(), "conv-1", 8)
	assert.NoError(t, err)
	assert.Len(t, history, 8)
	// Keeps the most recent eight, oldest of those first.
	assert.Equal(t, "e", history[0].Content)
	assert.Equal(t, "l", history[7].Content)
}

func TestGetHistoryReadFailureDegrades(t *testing.T) {
	msgRepo := &mockMessageRepo{findErr: errors.New("connection refused")}
	svc, gate, _ := newServiceUnderTest(&mockConversationRepo{}, msgRepo, true)

	history, err := svc.GetHistory(context.Background(), "conv-1", 8)
	assert.NoError(t, err)
	assert.Empty(t, history)
	assert.False(t, gate.Ready())
}

func TestDegradedModeServesAllReadsLocally(t *testing.T) {
	svc, _, _ := newServiceUnderTest(&mockConversationRepo{}, &mockMessageRepo{}, false)

	conv, err := svc.CreateConversation(context.Background(), "offline chat")
	assert.NoError(t, err)
	assert.Equal(t, "local-conv-1", conv.Id)

	_, err = svc.AppendMessage(context.Background(), conv.Id, "user", "hi")
	assert.NoError(t, err)

	listed, err := svc.ListConversations(context.Background())
	assert.NoError(t, err)
	assert.Len(t, listed, 1)

	history, err := svc.GetHistory(context.Background(), conv.Id, 8)
	assert.NoError(t, err)
	assert.Len(t, history, 1)

	assert.NoError(t, svc.DeleteConversation(context.Background(), conv.Id))
	listed, _ = svc.ListConversations(context.Background())
	assert.Empty(t, listed)
}
