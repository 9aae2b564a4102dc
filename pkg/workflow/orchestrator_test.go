package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"agentic-bi-be/pkg/agents"
	"agentic-bi-be/pkg/llm"
	"agentic-bi-be/pkg/retrieval"
	"agentic-bi-be/pkg/vectorstore"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// stubClassifier returns a fixed intent, or the fallback plus an error.
type stubClassifier struct {
	intent string
	err    error
}

func (s *stubClassifier) Classify(ctx context.Context, query string) (*agents.IntentResult, error) {
	if s.err != nil {
		return &agents.IntentResult{Intent: agents.IntentDescriptive, Confidence: 0.0, Reasoning: "Fallback due to error in classification."}, s.err
	}
	return &agents.IntentResult{Intent: s.intent, Confidence: 0.9, Reasoning: "stubbed"}, nil
}

// stubAnalyzer mirrors the degrade contract of the real analyzer.
type stubAnalyzer struct {
	result *agents.AnalysisResult
	err    error
	panics bool
}

func (s *stubAnalyzer) Analyze(ctx context.Context, chunks []retrieval.FusedResult, history []llm.Message, intent string) (*agents.AnalysisResult, error) {
	if s.panics {
		panic("analyzer blew up")
	}
	if s.err != nil {
		return agents.DegradedAnalysisResult(), s.err
	}
	if len(chunks) == 0 {
		return agents.InsufficientDataResult(), nil
	}
	return s.result, nil
}

// stubVisualizer returns a fixed result or degrades.
type stubVisualizer struct {
	result *agents.VisualResult
	err    error
}

func (s *stubVisualizer) Visualize(ctx context.Context, insights []string, chunks []retrieval.FusedResult) (*agents.VisualResult, error) {
	if s.err != nil {
		return agents.EmptyVisualResult(), s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return agents.EmptyVisualResult(), nil
}

// staticSearcher backs the retriever agent with canned points.
type staticSearcher struct {
	points []vectorstore.Point
	err    error
}

func (s *staticSearcher) Search(ctx context.Context, collection string, vector []float32, topK int, filter vectorstore.Filter) ([]vectorstore.Point, error) {
	return s.points, s.err
}

func (s *staticSearcher) Upsert(ctx context.Context, collection string, ids []string, vectors [][]float32, metadatas []map[string]interface{}) error {
	return s.err
}

func newRetriever(searcher vectorstore.Searcher) *agents.RetrieverAgent {
	textDense := retrieval.NewDenseRetriever(searcher, "text_docs", retrieval.ModalityText)
	imageDense := retrieval.NewDenseRetriever(searcher, "image_docs", retrieval.ModalityImage)
	lexical := retrieval.NewBM25Index([]retrieval.BM25Document{
		{ID: "lex1", Text: "revenue summary for the quarter"},
	})
	hybrid := retrieval.NewHybridRetriever(textDense, lexical, 0.6, 0.4, testLogger())
	multimodal := retrieval.NewMultimodalRetriever(textDense, imageDense, nil, 0.7, 0.3, testLogger())
	return agents.NewRetrieverAgent(hybrid, multimodal, retrieval.FusionWeighted, 5, testLogger())
}

func analysisFixture() *agents.AnalysisResult {
	return &agents.AnalysisResult{
		Analysis:    "Revenue grew.",
		Insights:    []string{"growth"},
		DraftReport: "Report for diagnostic query:\n\nRevenue grew.",
	}
}

func TestRunCompletes(t *testing.T) {
	searcher := &staticSearcher{points: []vectorstore.Point{
		{ID: "p1", Score: 0.9, Metadata: map[string]interface{}{"text": "Q3 revenue grew 14%"}},
	}}
	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDiagnostic},
		newRetriever(searcher),
		&stubAnalyzer{result: analysisFixture()},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(context.Background(), "why did revenue grow", []float32{0.1}, "conv-1", nil)

	if report.State != StateComplete {
		t.Fatalf("State = %s, want COMPLETE (error: %s)", report.State, report.Error)
	}
	if report.Intent == nil || report.Intent.Intent != agents.IntentDiagnostic {
		t.Errorf("Intent = %+v, want diagnostic", report.Intent)
	}
	if report.RetrievedChunks.Strategy != retrieval.StrategyHybrid {
		t.Errorf("Strategy = %s, want hybrid for diagnostic intent", report.RetrievedChunks.Strategy)
	}
	if report.FinalOutput != analysisFixture().DraftReport {
		t.Errorf("FinalOutput = %q", report.FinalOutput)
	}
	if report.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %s", report.ConversationID)
	}
}

func TestRunClassificationFailureDegrades(t *testing.T) {
	searcher := &staticSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	o := NewOrchestrator(
		&stubClassifier{err: errors.New("model offline")},
		newRetriever(searcher),
		&stubAnalyzer{result: analysisFixture()},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(context.Background(), "summarize sales", []float32{0.1}, "", nil)

	if report.State != StateComplete {
		t.Fatalf("State = %s, want COMPLETE", report.State)
	}
	// Fallback intent routes to the multimodal path.
	if report.Intent.Intent != agents.IntentDescriptive {
		t.Errorf("Intent = %s, want fallback descriptive", report.Intent.Intent)
	}
	if report.RetrievedChunks.Strategy != retrieval.StrategyMultimodal {
		t.Errorf("Strategy = %s, want multimodal", report.RetrievedChunks.Strategy)
	}
}

func TestRunEmptyRetrievalStillCompletes(t *testing.T) {
	searcher := &staticSearcher{err: errors.New("store down")}
	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDescriptive},
		newRetriever(searcher),
		&stubAnalyzer{},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(context.Background(), "summarize", []float32{0.1}, "", nil)

	if report.State != StateComplete {
		t.Fatalf("State = %s, want COMPLETE", report.State)
	}
	if report.RetrievedChunks.Strategy != retrieval.StrategyFailed {
		t.Errorf("Strategy = %s, want failed", report.RetrievedChunks.Strategy)
	}
	if report.FinalOutput != "Insufficient data for report." {
		t.Errorf("FinalOutput = %q, want insufficient-data placeholder", report.FinalOutput)
	}
}

func TestRunAnalysisFailureDegrades(t *testing.T) {
	searcher := &staticSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDiagnostic},
		newRetriever(searcher),
		&stubAnalyzer{err: errors.New("llm timeout")},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(context.Background(), "why", []float32{0.1}, "", nil)

	// The synchronous path degrades analysis instead of erroring the run.
	if report.State != StateComplete {
		t.Fatalf("State = %s, want COMPLETE", report.State)
	}
	if report.FinalOutput != "Analysis failed." {
		t.Errorf("FinalOutput = %q, want degraded placeholder", report.FinalOutput)
	}
}

func TestRunVisualizationFailureDegrades(t *testing.T) {
	searcher := &staticSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDiagnostic},
		newRetriever(searcher),
		&stubAnalyzer{result: analysisFixture()},
		&stubVisualizer{err: errors.New("render failure")},
		testLogger(),
	)

	report := o.Run(context.Background(), "why", []float32{0.1}, "", nil)

	if report.State != StateComplete {
		t.Fatalf("State = %s, want COMPLETE", report.State)
	}
	if len(report.Visualizations) != 0 || len(report.VisualizationTables) != 0 {
		t.Errorf("expected empty artifacts, got %d charts %d tables",
			len(report.Visualizations), len(report.VisualizationTables))
	}
}

func TestRunPanicBecomesErroredReport(t *testing.T) {
	searcher := &staticSearcher{points: []vectorstore.Point{{ID: "p1", Score: 0.9}}}
	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDiagnostic},
		newRetriever(searcher),
		&stubAnalyzer{panics: true},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(context.Background(), "why", []float32{0.1}, "conv-2", nil)

	if report.State != StateErrored {
		t.Fatalf("State = %s, want ERRORED", report.State)
	}
	if report.FinalOutput != "Workflow failed." {
		t.Errorf("FinalOutput = %q", report.FinalOutput)
	}
	if !strings.Contains(report.Error, "analyzer blew up") {
		t.Errorf("Error = %q, want panic message", report.Error)
	}
	if report.ConversationID != "conv-2" {
		t.Errorf("ConversationID = %s, want conv-2", report.ConversationID)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(
		&stubClassifier{intent: agents.IntentDiagnostic},
		newRetriever(&staticSearcher{}),
		&stubAnalyzer{result: analysisFixture()},
		&stubVisualizer{},
		testLogger(),
	)

	report := o.Run(ctx, "why", []float32{0.1}, "", nil)
	if report.State != StateErrored {
		t.Fatalf("State = %s, want ERRORED", report.State)
	}
}
