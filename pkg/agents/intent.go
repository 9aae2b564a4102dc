package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"agentic-bi-be/pkg/llm"
)

// Intent labels follow the four analytics categories.
const (
	IntentDescriptive  = "descriptive"
	IntentDiagnostic   = "diagnostic"
	IntentPredictive   = "predictive"
	IntentPrescriptive = "prescriptive"
)

var intentLabels = []string{IntentDescriptive, IntentDiagnostic, IntentPredictive, IntentPrescriptive}

// IntentResult is the outcome of classifying one query.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// IntentClassifier labels a business query with its analytics intent.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) (*IntentResult, error)
}

// LLMIntentClassifier performs zero-shot classification through the LLM
// provider. Classification failure is non-fatal: the fallback result is
// returned together with a ClassificationError so callers can log the
// degradation without branching.
type LLMIntentClassifier struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

var _ IntentClassifier = &LLMIntentClassifier{}

func NewLLMIntentClassifier(provider llm.LLMProvider, logger *log.Logger) *LLMIntentClassifier {
	return &LLMIntentClassifier{
		provider: provider,
		logger:   logger,
	}
}

func (c *LLMIntentClassifier) Classify(ctx context.Context, query string) (*IntentResult, error) {
	prompt := buildIntentPrompt(query)

	response, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.0), llm.WithMaxTokens(150))
	if err != nil {
		c.logger.Printf("[WARN] Intent classification failed, using fallback: %v", err)
		return fallbackIntent(), &ClassificationError{Err: err}
	}

	result, err := parseIntentResponse(response)
	if err != nil {
		c.logger.Printf("[WARN] Intent parsing failed, using fallback: %v", err)
		return fallbackIntent(), &ClassificationError{Err: err}
	}

	c.logger.Printf("[INTENT] Classified as %s (confidence %.2f)", result.Intent, result.Confidence)
	return result, nil
}

func fallbackIntent() *IntentResult {
	return &IntentResult{
		Intent:     IntentDescriptive,
		Confidence: 0.0,
		Reasoning:  "Fallback due to error in classification.",
	}
}

func buildIntentPrompt(query string) string {
	var sb strings.Builder

	sb.WriteString("<system>\n")
	sb.WriteString("You are an intent classifier for business-intelligence queries.\n")
	sb.WriteString("You do NOT answer questions. You only classify intent.\n")
	sb.WriteString("</system>\n\n")

	sb.WriteString("Classify the query into exactly one label:\n")
	sb.WriteString("- descriptive: what happened (summaries, overviews)\n")
	sb.WriteString("- diagnostic: why it happened (causes, drivers)\n")
	sb.WriteString("- predictive: what will happen (forecasts, trends)\n")
	sb.WriteString("- prescriptive: what should be done (recommendations)\n\n")

	sb.WriteString(fmt.Sprintf("Query: %q\n\n", query))

	sb.WriteString("Respond with ONLY a JSON object:\n")
	sb.WriteString(`{"intent": "<label>", "confidence": <0.0-1.0>, "reasoning": "<one sentence>"}`)
	sb.WriteString("\n")

	return sb.String()
}

// parseIntentResponse tolerates code fences and prose around the JSON body.
func parseIntentResponse(response string) (*IntentResult, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response %q", response)
	}

	var result IntentResult
	if err := json.Unmarshal([]byte(response[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("decode intent JSON: %w", err)
	}

	result.Intent = strings.ToLower(strings.TrimSpace(result.Intent))
	if !validIntent(result.Intent) {
		return nil, fmt.Errorf("unknown intent label %q", result.Intent)
	}
	return &result, nil
}

func validIntent(intent string) bool {
	for _, label := range intentLabels {
		if intent == label {
			return true
		}
	}
	return false
}
