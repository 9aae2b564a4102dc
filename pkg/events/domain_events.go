package events

import "time"

// NewReportCompleted signals that a workflow run finished and its
// report is available for the conversation.
func NewReportCompleted(conversationId, intent, state string) Event {
	return BaseEvent{
		Type: "REPORT_COMPLETED",
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"intent":          intent,
			"state":           state,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngested signals that a document's chunks were embedded
// and persisted.
func NewDocumentIngested(documentId, modality string, chunks int) Event {
	return BaseEvent{
		Type: "DOCUMENT_INGESTED",
		Data: map[string]interface{}{
			"document_id": documentId,
			"modality":    modality,
			"chunks":      chunks,
		},
		OccurredAt: time.Now(),
	}
}
