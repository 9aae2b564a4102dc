package dto

import "github.com/google/uuid"

// PublishIngestDocumentMessage is the payload queued for the ingest
// worker after a document row is created.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
