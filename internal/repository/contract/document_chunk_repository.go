package contract

import (
	"context"

	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps a chunk with its cosine similarity to the query
// vector (1.0 = identical direction).
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	UpsertBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a cosine nearest-neighbour search over
	// chunks of the given modality, dropping results below threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, modality string, threshold float64) ([]*ScoredChunk, error)
}
