package vectorstore

import "context"

// Filter is an equality-only metadata filter; conditions are ANDed.
// Ranges and regex are not supported.
type Filter map[string]interface{}

// Point is one scored hit from a nearest-neighbor search.
type Point struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Searcher is the nearest-neighbor search contract over named collections.
// The distance metric is cosine similarity; score scale depends on the
// backend and is absorbed by fusion normalization downstream.
type Searcher interface {
	Search(ctx context.Context, collection string, vector []float32, topK int, filter Filter) ([]Point, error)
	Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, metadatas []map[string]interface{}) error
}
