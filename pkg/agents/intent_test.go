package agents

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"agentic-bi-be/pkg/llm"
)

// mockLLM returns a canned completion for both Chat and Generate.
type mockLLM struct {
	response string
	err      error
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return m.response, m.err
}

func (m *mockLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return m.response, m.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestClassifyParsesLabel(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantIntent string
	}{
		{
			name:       "clean JSON",
			response:   `{"intent": "diagnostic", "confidence": 0.9, "reasoning": "asks why"}`,
			wantIntent: IntentDiagnostic,
		},
		{
			name:       "code fenced JSON",
			response:   "```json\n{\"intent\": \"predictive\", \"confidence\": 0.8, \"reasoning\": \"forecast\"}\n```",
			wantIntent: IntentPredictive,
		},
		{
			name:       "uppercase label",
			response:   `{"intent": "PRESCRIPTIVE", "confidence": 0.7, "reasoning": "recommendation"}`,
			wantIntent: IntentPrescriptive,
		},
		{
			name:       "prose around JSON",
			response:   `Here is my answer: {"intent": "descriptive", "confidence": 1.0, "reasoning": "summary"} hope it helps`,
			wantIntent: IntentDescriptive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLLMIntentClassifier(&mockLLM{response: tt.response}, testLogger())

			result, err := c.Classify(context.Background(), "How did sales go?")
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			if result.Intent != tt.wantIntent {
				t.Errorf("Intent = %s, want %s", result.Intent, tt.wantIntent)
			}
		})
	}
}

func TestClassifyFallsBack(t *testing.T) {
	tests := []struct {
		name string
		mock *mockLLM
	}{
		{"provider failure", &mockLLM{err: errors.New("model offline")}},
		{"no JSON in response", &mockLLM{response: "it is descriptive I think"}},
		{"unknown label", &mockLLM{response: `{"intent": "exploratory", "confidence": 0.5}`}},
		{"malformed JSON", &mockLLM{response: `{"intent": "descriptive", "confidence":}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLLMIntentClassifier(tt.mock, testLogger())

			result, err := c.Classify(context.Background(), "query")
			if err == nil {
				t.Fatal("expected classification error")
			}

			var clsErr *ClassificationError
			if !errors.As(err, &clsErr) {
				t.Fatalf("error type = %T, want *ClassificationError", err)
			}

			// Fallback is always usable: descriptive at zero confidence.
			if result == nil {
				t.Fatal("fallback result is nil")
			}
			if result.Intent != IntentDescriptive {
				t.Errorf("fallback Intent = %s, want descriptive", result.Intent)
			}
			if result.Confidence != 0.0 {
				t.Errorf("fallback Confidence = %f, want 0.0", result.Confidence)
			}
		})
	}
}
