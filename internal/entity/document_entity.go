package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one indexed source item (report text, OCR'd dashboard,
// table extract, transcript). Content arrives already extracted;
// file-format parsing happens upstream.
type Document struct {
	Id        uuid.UUID
	Title     string
	Content   string
	Modality  string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// DocumentChunk is one embeddable slice of a document.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ChunkIndex int
	Content    string
	Modality   string
	Metadata   map[string]interface{}
	Embedding  []float32
	CreatedAt  time.Time
}
