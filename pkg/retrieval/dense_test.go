package retrieval

import (
	"context"
	"errors"
	"testing"

	"agentic-bi-be/pkg/vectorstore"
)

func TestDenseRetrieverMapsPoints(t *testing.T) {
	searcher := &fakeSearcher{points: []vectorstore.Point{
		{ID: "p1", Score: 0.92, Metadata: map[string]interface{}{"text": "chunk body", "document_id": "doc-1"}},
		{ID: "p2", Score: 0.80, Metadata: map[string]interface{}{}},
	}}
	r := NewDenseRetriever(searcher, "text_docs", ModalityText)

	candidates, err := r.Retrieve(context.Background(), []float32{0.1, 0.2}, 5, nil)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("len(candidates) = %d, want 2", len(candidates))
	}

	if candidates[0].ID != "p1" || candidates[0].Score != 0.92 {
		t.Errorf("candidates[0] = %+v", candidates[0])
	}
	if candidates[0].Modality != ModalityText {
		t.Errorf("Modality = %s, want text", candidates[0].Modality)
	}
	if candidates[0].TextExcerpt != "chunk body" {
		t.Errorf("TextExcerpt = %q, want metadata text", candidates[0].TextExcerpt)
	}
	if candidates[1].TextExcerpt != "" {
		t.Errorf("TextExcerpt = %q, want empty for bare metadata", candidates[1].TextExcerpt)
	}
}

func TestDenseRetrieverWrapsBackendError(t *testing.T) {
	r := NewDenseRetriever(&fakeSearcher{err: errors.New("connection refused")}, "image_docs", ModalityImage)

	candidates, err := r.Retrieve(context.Background(), []float32{0.1}, 5, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(candidates) != 0 {
		t.Errorf("len(candidates) = %d, want 0", len(candidates))
	}

	var retErr *RetrievalError
	if !errors.As(err, &retErr) {
		t.Fatalf("error type = %T, want *RetrievalError", err)
	}
	if retErr.Backend != "image_docs" {
		t.Errorf("Backend = %s, want image_docs", retErr.Backend)
	}
}
