package service

import (
	"context"
	"fmt"

	"agentic-bi-be/internal/entity"
	"agentic-bi-be/internal/repository/unitofwork"
	"agentic-bi-be/pkg/health"
	"agentic-bi-be/pkg/vectorstore"

	"github.com/google/uuid"
)

// Collection names understood by the pgvector searcher. Each maps to a
// chunk modality in the document_chunks table.
const (
	CollectionTextDocs  = "text_docs"
	CollectionImageDocs = "image_docs"
)

// PgVectorSearcher adapts the document chunk repository to the
// vectorstore.Searcher interface, so dense retrieval can run against
// Postgres without an external vector database.
type PgVectorSearcher struct {
	uowFactory unitofwork.RepositoryFactory
	gate       *health.Gate
}

func NewPgVectorSearcher(uowFactory unitofwork.RepositoryFactory, gate *health.Gate) *PgVectorSearcher {
	return &PgVectorSearcher{
		uowFactory: uowFactory,
		gate:       gate,
	}
}

func modalityForCollection(collection string) (string, error) {
	switch collection {
	case CollectionTextDocs:
		return "text", nil
	case CollectionImageDocs:
		return "image", nil
	default:
		return "", fmt.Errorf("unknown collection %q", collection)
	}
}

func (s *PgVectorSearcher) Search(ctx context.Context, collection string, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Point, error) {
	modality, err := modalityForCollection(collection)
	if err != nil {
		return nil, err
	}
	if !s.gate.Ready() {
		return nil, fmt.Errorf("durable store unavailable")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(ctx, vector, topK, modality, 0)
	if err != nil {
		return nil, err
	}

	points := make([]vectorstore.Point, 0, len(scored))
	for _, sc := range scored {
		meta := map[string]interface{}{
			"document_id": sc.Chunk.DocumentId.String(),
			"chunk_index": sc.Chunk.ChunkIndex,
			"text":        sc.Chunk.Content,
		}
		for k, v := range sc.Chunk.Metadata {
			meta[k] = v
		}
		if !matchesFilter(meta, filter) {
			continue
		}
		points = append(points, vectorstore.Point{
			ID:       sc.Chunk.Id.String(),
			Score:    sc.Similarity,
			Metadata: meta,
		})
	}
	return points, nil
}

func (s *PgVectorSearcher) Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, metadatas []map[string]interface{}) error {
	modality, err := modalityForCollection(collection)
	if err != nil {
		return err
	}
	if !s.gate.Ready() {
		return fmt.Errorf("durable store unavailable")
	}
	if len(ids) != len(vectors) || len(ids) != len(metadatas) {
		return fmt.Errorf("mismatched upsert lengths: %d ids, %d vectors, %d metadatas", len(ids), len(vectors), len(metadatas))
	}

	chunks := make([]*entity.DocumentChunk, 0, len(ids))
	for i, id := range ids {
		chunkId, err := uuid.Parse(id)
		if err != nil {
			return fmt.Errorf("chunk id %q is not a uuid: %w", id, err)
		}
		meta := metadatas[i]
		chunk := &entity.DocumentChunk{
			Id:        chunkId,
			Modality:  modality,
			Metadata:  meta,
			Embedding: vectors[i],
		}
		if docId, ok := meta["document_id"].(string); ok {
			parsed, err := uuid.Parse(docId)
			if err != nil {
				return fmt.Errorf("document id %q is not a uuid: %w", docId, err)
			}
			chunk.DocumentId = parsed
		}
		if text, ok := meta["text"].(string); ok {
			chunk.Content = text
		}
		if idx, ok := meta["chunk_index"].(int); ok {
			chunk.ChunkIndex = idx
		}
		chunks = append(chunks, chunk)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().UpsertBulk(ctx, chunks)
}

func matchesFilter(meta map[string]interface{}, filter vectorstore.Filter) bool {
	for k, want := range filter {
		if got, ok := meta[k]; !ok || got != want {
			return false
		}
	}
	return true
}
