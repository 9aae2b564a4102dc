package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// QdrantSearcher talks to Qdrant over its REST API.
// Plain HTTP keeps us independent of qdrant client library versions.
type QdrantSearcher struct {
	BaseURL string
	Client  *http.Client
}

var _ Searcher = &QdrantSearcher{}

func NewQdrantSearcher(baseURL string) *QdrantSearcher {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantSearcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type qdrantSearchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
	Filter      *qdrantFilter `json:"filter,omitempty"`
}

type qdrantFilter struct {
	Must []qdrantCondition `json:"must"`
}

type qdrantCondition struct {
	Key   string      `json:"key"`
	Match qdrantMatch `json:"match"`
}

type qdrantMatch struct {
	Value interface{} `json:"value"`
}

type qdrantSearchResponse struct {
	Result []qdrantHit `json:"result"`
}

type qdrantHit struct {
	ID      interface{}            `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// EnsureCollection creates the collection if it does not exist yet.
func (q *QdrantSearcher) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	resp, err := q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", collection), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Qdrant answers 200/201 on create and 409 when the collection exists
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant create collection %s: status %d: %s", collection, resp.StatusCode, string(raw))
	}
	return nil
}

func (q *QdrantSearcher) Search(ctx context.Context, collection string, vector []float32, topK int, filter Filter) ([]Point, error) {
	req := qdrantSearchRequest{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
		Filter:      buildFilter(filter),
	}

	resp, err := q.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", collection), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qdrant search %s: status %d: %s", collection, resp.StatusCode, string(raw))
	}

	var parsed qdrantSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("qdrant search %s: decode response: %w", collection, err)
	}

	points := make([]Point, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		points = append(points, Point{
			ID:       fmt.Sprintf("%v", hit.ID),
			Score:    hit.Score,
			Metadata: hit.Payload,
		})
	}
	return points, nil
}

func (q *QdrantSearcher) Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, metadatas []map[string]interface{}) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("qdrant upsert: %d ids for %d vectors", len(ids), len(vectors))
	}

	points := make([]map[string]interface{}, len(ids))
	for i := range ids {
		var payload map[string]interface{}
		if i < len(metadatas) {
			payload = metadatas[i]
		}
		if payload == nil {
			payload = map[string]interface{}{}
		}
		points[i] = map[string]interface{}{
			"id":      ids[i],
			"vector":  vectors[i],
			"payload": payload,
		}
	}

	resp, err := q.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", collection), map[string]interface{}{
		"points": points,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant upsert %s: status %d: %s", collection, resp.StatusCode, string(raw))
	}
	return nil
}

func (q *QdrantSearcher) do(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, q.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return q.Client.Do(req)
}

func buildFilter(filter Filter) *qdrantFilter {
	if len(filter) == 0 {
		return nil
	}
	conditions := make([]qdrantCondition, 0, len(filter))
	for key, value := range filter {
		conditions = append(conditions, qdrantCondition{
			Key:   key,
			Match: qdrantMatch{Value: value},
		})
	}
	return &qdrantFilter{Must: conditions}
}
