package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	Title    string                 `json:"title" validate:"required"`
	Content  string                 `json:"content" validate:"required"`
	Modality string                 `json:"modality,omitempty"` // defaults to "text"
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type IngestDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type DocumentResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	Modality  string                 `json:"modality"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Chunks    int                    `json:"chunks"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt *time.Time             `json:"updated_at"`
}

type DeleteDocumentRequest struct {
	Id uuid.UUID `json:"id"`
}
