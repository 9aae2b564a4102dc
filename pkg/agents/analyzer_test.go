package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agentic-bi-be/pkg/retrieval"
)

func textChunk(id, text string) retrieval.FusedResult {
	return retrieval.FusedResult{
		Candidate: retrieval.Candidate{ID: id, Modality: retrieval.ModalityText, TextExcerpt: text},
	}
}

func TestAnalyzeProducesReport(t *testing.T) {
	a := NewLLMAnalyzer(&mockLLM{response: "Revenue grew steadily."}, testLogger())
	chunks := []retrieval.FusedResult{textChunk("c1", "Q3 revenue grew 14%")}

	result, err := a.Analyze(context.Background(), chunks, nil, IntentDescriptive)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Analysis != "Revenue grew steadily." {
		t.Errorf("Analysis = %q", result.Analysis)
	}
	if len(result.Insights) == 0 {
		t.Error("expected intent insights")
	}
	if !strings.Contains(result.DraftReport, "Revenue grew steadily.") {
		t.Errorf("DraftReport missing summary: %q", result.DraftReport)
	}
	if !strings.Contains(result.DraftReport, "descriptive") {
		t.Errorf("DraftReport missing intent label: %q", result.DraftReport)
	}
}

func TestAnalyzeEmptyChunksIsNotAnError(t *testing.T) {
	// The provider must not be called when there is nothing to analyze.
	a := NewLLMAnalyzer(&mockLLM{err: errors.New("should not be reached")}, testLogger())

	result, err := a.Analyze(context.Background(), nil, nil, IntentDescriptive)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.DraftReport != "Insufficient data for report." {
		t.Errorf("DraftReport = %q, want insufficient-data placeholder", result.DraftReport)
	}
}

func TestAnalyzeIgnoresImageChunks(t *testing.T) {
	a := NewLLMAnalyzer(&mockLLM{err: errors.New("should not be reached")}, testLogger())
	chunks := []retrieval.FusedResult{
		{Candidate: retrieval.Candidate{ID: "img", Modality: retrieval.ModalityImage, TextExcerpt: "chart.png"}},
	}

	result, err := a.Analyze(context.Background(), chunks, nil, IntentDescriptive)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.DraftReport != "Insufficient data for report." {
		t.Errorf("DraftReport = %q, image-only input should be insufficient", result.DraftReport)
	}
}

func TestAnalyzeProviderFailureDegrades(t *testing.T) {
	a := NewLLMAnalyzer(&mockLLM{err: errors.New("model offline")}, testLogger())
	chunks := []retrieval.FusedResult{textChunk("c1", "some content")}

	result, err := a.Analyze(context.Background(), chunks, nil, IntentDiagnostic)
	if err == nil {
		t.Fatal("expected analysis error")
	}

	var anErr *AnalysisError
	if !errors.As(err, &anErr) {
		t.Fatalf("error type = %T, want *AnalysisError", err)
	}

	if result == nil {
		t.Fatal("degraded result is nil")
	}
	if result.Analysis != "Error in analysis." {
		t.Errorf("Analysis = %q, want degraded placeholder", result.Analysis)
	}
	if result.DraftReport != "Analysis failed." {
		t.Errorf("DraftReport = %q, want degraded placeholder", result.DraftReport)
	}
}

func TestAnalysisSystemPromptVariesByIntent(t *testing.T) {
	prompts := map[string]string{
		IntentDiagnostic:   "root causes",
		IntentPredictive:   "trends",
		IntentPrescriptive: "recommended actions",
		IntentDescriptive:  "summarizing",
	}

	for intent, fragment := range prompts {
		if got := analysisSystemPrompt(intent); !strings.Contains(got, fragment) {
			t.Errorf("prompt for %s missing %q: %q", intent, fragment, got)
		}
	}
}
