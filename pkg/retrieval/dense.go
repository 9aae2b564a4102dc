package retrieval

import (
	"context"

	"agentic-bi-be/pkg/vectorstore"
)

// DenseRetriever produces scored candidates for one modality by delegating
// to the vector search backend. It never filters by score: relevance
// thresholds are the caller's concern.
type DenseRetriever struct {
	searcher   vectorstore.Searcher
	collection string
	modality   Modality
}

func NewDenseRetriever(searcher vectorstore.Searcher, collection string, modality Modality) *DenseRetriever {
	return &DenseRetriever{
		searcher:   searcher,
		collection: collection,
		modality:   modality,
	}
}

// Retrieve runs a nearest-neighbor lookup. On backend failure it returns an
// empty slice and a typed RetrievalError.
func (r *DenseRetriever) Retrieve(ctx context.Context, queryVector []float32, topK int, filter vectorstore.Filter) ([]Candidate, error) {
	points, err := r.searcher.Search(ctx, r.collection, queryVector, topK, filter)
	if err != nil {
		return []Candidate{}, &RetrievalError{Backend: r.collection, Err: err}
	}

	candidates := make([]Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, Candidate{
			ID:          p.ID,
			Score:       p.Score,
			Modality:    r.modality,
			Metadata:    p.Metadata,
			TextExcerpt: excerptFromMetadata(p.Metadata),
		})
	}
	return candidates, nil
}

func excerptFromMetadata(metadata map[string]interface{}) string {
	for _, key := range []string{"text_excerpt", "text", "content"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
