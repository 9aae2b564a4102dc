package agents

import (
	"context"
	"errors"
	"testing"

	"agentic-bi-be/pkg/retrieval"
	"agentic-bi-be/pkg/vectorstore"
)

// countingSearcher tracks calls so caching behavior is observable.
type countingSearcher struct {
	points []vectorstore.Point
	err    error
	calls  int
}

func (c *countingSearcher) Search(ctx context.Context, collection string, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Point, error) {
	c.calls++
	return c.points, c.err
}

func (c *countingSearcher) Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, metadatas []map[string]interface{}) error {
	return c.err
}

func newTestAgent(text *countingSearcher, topK int) *RetrieverAgent {
	dense := retrieval.NewDenseRetriever(text, "text_docs", retrieval.ModalityText)
	lexical := retrieval.NewBM25Index([]retrieval.BM25Document{
		{ID: "lex1", Text: "quarterly revenue summary"},
	})
	hybrid := retrieval.NewHybridRetriever(dense, lexical, 0.6, 0.4, testLogger())

	imageDense := retrieval.NewDenseRetriever(text, "image_docs", retrieval.ModalityImage)
	multimodal := retrieval.NewMultimodalRetriever(dense, imageDense, nil, 0.7, 0.3, testLogger())

	return NewRetrieverAgent(hybrid, multimodal, retrieval.FusionWeighted, topK, testLogger())
}

func TestRetrieveRoutesByIntent(t *testing.T) {
	searcher := &countingSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	agent := newTestAgent(searcher, 5)

	tests := []struct {
		intent       string
		wantStrategy retrieval.Strategy
	}{
		{IntentDescriptive, retrieval.StrategyMultimodal},
		{IntentDiagnostic, retrieval.StrategyHybrid},
		{IntentPredictive, retrieval.StrategyHybrid},
		{IntentPrescriptive, retrieval.StrategyHybrid},
		{"unknown-label", retrieval.StrategyMultimodal},
	}

	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			batch := agent.Retrieve(context.Background(), "query "+tt.intent, []float32{0.1}, tt.intent)
			if batch.Strategy != tt.wantStrategy {
				t.Errorf("Strategy = %s, want %s", batch.Strategy, tt.wantStrategy)
			}
			if batch.TotalRetrieved != len(batch.Chunks) {
				t.Errorf("TotalRetrieved = %d, len(Chunks) = %d", batch.TotalRetrieved, len(batch.Chunks))
			}
		})
	}
}

func TestRetrieveCachesSuccessfulBatches(t *testing.T) {
	searcher := &countingSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	agent := newTestAgent(searcher, 5)

	agent.Retrieve(context.Background(), "same query", []float32{0.1}, IntentDiagnostic)
	callsAfterFirst := searcher.calls

	agent.Retrieve(context.Background(), "same query", []float32{0.1}, IntentDiagnostic)
	if searcher.calls != callsAfterFirst {
		t.Errorf("second identical call hit the backend: calls = %d, want %d", searcher.calls, callsAfterFirst)
	}

	// A different intent is a different cache key.
	agent.Retrieve(context.Background(), "same query", []float32{0.1}, IntentDescriptive)
	if searcher.calls == callsAfterFirst {
		t.Error("different intent did not reach the backend")
	}
}

func TestRetrieveFailedBatchIsNotCached(t *testing.T) {
	searcher := &countingSearcher{err: errors.New("backend down")}
	agent := newTestAgent(searcher, 5)

	batch := agent.Retrieve(context.Background(), "query", []float32{0.1}, IntentDescriptive)
	if batch.Strategy != retrieval.StrategyFailed {
		t.Fatalf("Strategy = %s, want failed", batch.Strategy)
	}
	callsAfterFirst := searcher.calls

	agent.Retrieve(context.Background(), "query", []float32{0.1}, IntentDescriptive)
	if searcher.calls == callsAfterFirst {
		t.Error("failed batch was served from cache")
	}
}
