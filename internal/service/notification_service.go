package service

import (
	"context"
	"fmt"
	"strings"

	"agentic-bi-be/internal/pkg/logger"
	"agentic-bi-be/pkg/events"
	pkgNats "agentic-bi-be/pkg/nats"
)

// NotificationDelivery defines how real-time updates reach clients.
// Implemented by the websocket hub.
type NotificationDelivery interface {
	Notify(conversationID string, payload interface{})
	Broadcast(payload interface{})
}

// NotificationService bridges the event bus to connected websocket
// clients: report completions go to the owning conversation's
// subscribers, ingestion completions go to everyone.
type NotificationService struct {
	subscriber *pkgNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pkgNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	payload := event.Payload()

	// The NATS subject includes the stream prefix.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	switch typeCode {
	case "REPORT_COMPLETED":
		conversationId, _ := payload["conversation_id"].(string)
		if conversationId == "" {
			return nil
		}
		s.delivery.Notify(conversationId, map[string]interface{}{
			"event":           "report_completed",
			"conversation_id": conversationId,
			"intent":          payload["intent"],
			"state":           payload["state"],
		})
	case "DOCUMENT_INGESTED":
		s.delivery.Broadcast(map[string]interface{}{
			"event":       "document_ingested",
			"document_id": payload["document_id"],
			"modality":    payload["modality"],
			"chunks":      payload["chunks"],
		})
	default:
		// Other event types have no client-facing delivery.
	}
	return nil
}
