package service

import (
	"context"
	"fmt"
	"strings"

	"agentic-bi-be/internal/constant"
	"agentic-bi-be/internal/dto"
	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/pkg/logger"
	"agentic-bi-be/internal/repository/memory"
	"agentic-bi-be/pkg/embedding"
	"agentic-bi-be/pkg/events"
	"agentic-bi-be/pkg/llm"
	pkgNats "agentic-bi-be/pkg/nats"
	"agentic-bi-be/pkg/workflow"
)

// maxGeneratedTitleLen bounds conversation titles derived from the
// first query.
const maxGeneratedTitleLen = 60

type IQueryService interface {
	RunQuery(ctx context.Context, request *dto.RunQueryRequest) (*dto.RunQueryResponse, error)
	GenerateMessage(ctx context.Context, request *dto.GenerateMessageRequest) (*dto.GenerateMessageResponse, error)
	GenerateMessageStream(ctx context.Context, request *dto.GenerateMessageRequest) (<-chan dto.StreamEventDTO, error)
	GetLastReport(ctx context.Context, conversationId string) (*workflow.Report, bool)
}

// queryService runs the analysis workflow over user queries, threading
// conversation history through and persisting both sides of the
// exchange.
type queryService struct {
	orchestrator      *workflow.Orchestrator
	embeddingProvider embedding.Provider
	conversations     IConversationService
	reportCache       *memory.ReportCache
	eventPublisher    *pkgNats.Publisher
	logger            logger.ILogger
}

func NewQueryService(
	orchestrator *workflow.Orchestrator,
	embeddingProvider embedding.Provider,
	conversations IConversationService,
	reportCache *memory.ReportCache,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IQueryService {
	return &queryService{
		orchestrator:      orchestrator,
		embeddingProvider: embeddingProvider,
		conversations:     conversations,
		reportCache:       reportCache,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

// embedQuery turns the query into a vector. A failed embedding does not
// abort the run: dense retrieval degrades and lexical search still works.
func (qs *queryService) embedQuery(ctx context.Context, query string) []float32 {
	vectors, err := qs.embeddingProvider.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		qs.logger.Warn("QueryService", "Query embedding failed, continuing without dense retrieval", map[string]interface{}{
			"error": fmt.Sprintf("%v", err),
		})
		return nil
	}
	return vectors[0]
}

func (qs *queryService) RunQuery(ctx context.Context, request *dto.RunQueryRequest) (*dto.RunQueryResponse, error) {
	if strings.TrimSpace(request.Query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	vector := qs.embedQuery(ctx, request.Query)
	report := qs.orchestrator.Run(ctx, request.Query, vector, "", nil)
	return &dto.RunQueryResponse{Report: report}, nil
}

// prepareConversation resolves or creates the conversation, persists the
// user message and loads the trailing history window.
func (qs *queryService) prepareConversation(ctx context.Context, request *dto.GenerateMessageRequest) (string, []llm.Message, error) {
	conversationId := request.ConversationId
	if conversationId == "" {
		conv, err := qs.conversations.CreateConversation(ctx, titleFromQuery(request.Query))
		if err != nil {
			return "", nil, err
		}
		conversationId = conv.Id
	}

	history, err := qs.conversations.GetHistory(ctx, conversationId, constant.HistoryWindow)
	if err != nil {
		return "", nil, err
	}

	if _, err := qs.conversations.AppendMessage(ctx, conversationId, constant.MessageRoleUser, request.Query); err != nil {
		return "", nil, err
	}

	return conversationId, toLLMHistory(history), nil
}

func (qs *queryService) GenerateMessage(ctx context.Context, request *dto.GenerateMessageRequest) (*dto.GenerateMessageResponse, error) {
	if strings.TrimSpace(request.Query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	conversationId, history, err := qs.prepareConversation(ctx, request)
	if err != nil {
		return nil, err
	}

	vector := qs.embedQuery(ctx, request.Query)
	report := qs.orchestrator.Run(ctx, request.Query, vector, conversationId, history)

	assistant, err := qs.conversations.AppendMessage(ctx, conversationId, constant.MessageRoleAssistant, report.FinalOutput)
	if err != nil {
		return nil, err
	}

	qs.finishRun(ctx, conversationId, report)

	return &dto.GenerateMessageResponse{
		ConversationId:   conversationId,
		AssistantMessage: messageToDTO(assistant),
		Report:           report,
	}, nil
}

// GenerateMessageStream mirrors GenerateMessage but relays workflow
// progress events. The final event carries the persisted assistant
// message; an error event terminates the stream without persistence.
func (qs *queryService) GenerateMessageStream(ctx context.Context, request *dto.GenerateMessageRequest) (<-chan dto.StreamEventDTO, error) {
	if strings.TrimSpace(request.Query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	conversationId, history, err := qs.prepareConversation(ctx, request)
	if err != nil {
		return nil, err
	}

	vector := qs.embedQuery(ctx, request.Query)
	events := qs.orchestrator.RunStream(ctx, request.Query, vector, conversationId, history)

	out := make(chan dto.StreamEventDTO)
	go func() {
		defer close(out)
		for ev := range events {
			wrapped := dto.StreamEventDTO{Event: ev, ConversationId: conversationId}
			if ev.Type == workflow.EventFinal && ev.Report != nil {
				assistant, err := qs.conversations.AppendMessage(ctx, conversationId, constant.MessageRoleAssistant, ev.Report.FinalOutput)
				if err != nil {
					qs.logger.Warn("QueryService", "Failed to persist assistant message", map[string]interface{}{
						"conversation_id": conversationId,
						"error":           err.Error(),
					})
				} else {
					wrapped.AssistantMessage = messageToDTO(assistant)
				}
				qs.finishRun(ctx, conversationId, ev.Report)
			}
			select {
			case out <- wrapped:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (qs *queryService) GetLastReport(ctx context.Context, conversationId string) (*workflow.Report, bool) {
	return qs.reportCache.Get(conversationId)
}

// finishRun caches the report and fans out the completion event.
// Neither step may fail the request.
func (qs *queryService) finishRun(ctx context.Context, conversationId string, report *workflow.Report) {
	qs.reportCache.Save(conversationId, report)
	if qs.eventPublisher != nil {
		intent := ""
		if report.Intent != nil {
			intent = report.Intent.Intent
		}
		evt := events.NewReportCompleted(conversationId, intent, string(report.State))
		if err := qs.eventPublisher.Publish(ctx, evt); err != nil {
			qs.logger.Warn("QueryService", "Failed to publish REPORT_COMPLETED event", map[string]interface{}{
				"conversation_id": conversationId,
				"error":           err.Error(),
			})
		}
	}
}

func toLLMHistory(msgs []*entity.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func messageToDTO(m *entity.Message) *dto.MessageResponse {
	if m == nil {
		return nil
	}
	return &dto.MessageResponse{
		Id:             m.Id,
		ConversationId: m.ConversationId,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func titleFromQuery(query string) string {
	title := strings.TrimSpace(query)
	if len(title) > maxGeneratedTitleLen {
		title = title[:maxGeneratedTitleLen]
	}
	if title == "" {
		title = "New Analysis"
	}
	return title
}
