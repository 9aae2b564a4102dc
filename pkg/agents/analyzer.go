package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"agentic-bi-be/pkg/llm"
	"agentic-bi-be/pkg/retrieval"
)

// AnalysisResult is the narrative output of the analysis stage.
type AnalysisResult struct {
	Analysis    string   `json:"analysis"`
	Insights    []string `json:"insights"`
	DraftReport string   `json:"draft_report"`
}

// Analyzer synthesizes insights from retrieved chunks, the conversation
// so far, and the classified intent.
type Analyzer interface {
	Analyze(ctx context.Context, chunks []retrieval.FusedResult, history []llm.Message, intent string) (*AnalysisResult, error)
}

// LLMAnalyzer drives analysis through the LLM provider. Failure returns
// the degraded placeholder result plus an AnalysisError; the workflow
// never aborts on an analysis failure.
type LLMAnalyzer struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

var _ Analyzer = &LLMAnalyzer{}

func NewLLMAnalyzer(provider llm.LLMProvider, logger *log.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{
		provider: provider,
		logger:   logger,
	}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, chunks []retrieval.FusedResult, history []llm.Message, intent string) (*AnalysisResult, error) {
	combined := combineTextChunks(chunks)
	if combined == "" {
		return InsufficientDataResult(), nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    "system",
		Content: analysisSystemPrompt(intent),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    "user",
		Content: fmt.Sprintf("Analyze the following retrieved content:\n\n%s", combined),
	})

	summary, err := a.provider.Chat(ctx, messages, llm.WithTemperature(0.3))
	if err != nil {
		a.logger.Printf("[ERROR] Analysis failed: %v", err)
		return DegradedAnalysisResult(), &AnalysisError{Err: err}
	}

	insights := intentInsights(intent)
	return &AnalysisResult{
		Analysis:    summary,
		Insights:    insights,
		DraftReport: buildDraftReport(intent, summary, insights),
	}, nil
}

// InsufficientDataResult is the placeholder when there is nothing to analyze.
func InsufficientDataResult() *AnalysisResult {
	return &AnalysisResult{
		Analysis:    "No textual content to analyze.",
		Insights:    []string{},
		DraftReport: "Insufficient data for report.",
	}
}

// DegradedAnalysisResult is the placeholder when the analyzer itself fails.
func DegradedAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Analysis:    "Error in analysis.",
		Insights:    []string{},
		DraftReport: "Analysis failed.",
	}
}

func combineTextChunks(chunks []retrieval.FusedResult) string {
	var parts []string
	for _, chunk := range chunks {
		if chunk.Modality != retrieval.ModalityText {
			continue
		}
		if chunk.TextExcerpt != "" {
			parts = append(parts, chunk.TextExcerpt)
		}
	}
	return strings.Join(parts, " ")
}

func analysisSystemPrompt(intent string) string {
	base := "You are a business-intelligence analyst. Write a concise analysis of the retrieved content."
	switch intent {
	case IntentDiagnostic:
		return base + " Focus on root causes and key drivers behind the observed outcomes."
	case IntentPredictive:
		return base + " Focus on trends and what they imply going forward."
	case IntentPrescriptive:
		return base + " Focus on concrete recommended actions."
	default:
		return base + " Focus on summarizing what the data shows."
	}
}

func intentInsights(intent string) []string {
	switch intent {
	case IntentDiagnostic:
		return []string{"Diagnostic analysis: identified key issues and causes."}
	case IntentPredictive:
		return []string{"Predictive insights: forecasted trends based on data."}
	case IntentPrescriptive:
		return []string{"Prescriptive recommendations: suggested actions."}
	default:
		return []string{"Descriptive summary generated."}
	}
}

func buildDraftReport(intent, summary string, insights []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Report for %s query:\n\n%s\n\nKey Insights:\n", intent, summary))
	sb.WriteString(strings.Join(insights, "\n"))
	return sb.String()
}
