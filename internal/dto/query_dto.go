package dto

import (
	"agentic-bi-be/pkg/workflow"
)

// RunQueryRequest drives a one-shot workflow run without conversation
// persistence (GET /api/query and POST /api/agents/run).
type RunQueryRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

type RunQueryResponse struct {
	Report *workflow.Report `json:"report"`
}

// GenerateMessageRequest is the conversational entrypoint. An empty
// conversation id starts a new conversation.
type GenerateMessageRequest struct {
	ConversationId string `json:"conversation_id,omitempty"`
	Query          string `json:"query" validate:"required"`
}

type GenerateMessageResponse struct {
	ConversationId   string           `json:"conversation_id"`
	AssistantMessage *MessageResponse `json:"assistant_message"`
	Report           *workflow.Report `json:"report"`
}

// StreamEventDTO wraps a workflow event for the SSE wire, adding the
// conversation id so clients can correlate streams, and the persisted
// assistant message on the final event.
type StreamEventDTO struct {
	workflow.Event
	ConversationId   string           `json:"conversation_id,omitempty"`
	AssistantMessage *MessageResponse `json:"assistant_message,omitempty"`
}
