package workflow

import (
	"context"
	"fmt"
	"log"

	"agentic-bi-be/pkg/agents"
	"agentic-bi-be/pkg/llm"
	"agentic-bi-be/pkg/retrieval"
)

// State names the position of a workflow run in its fixed stage order.
// There is no branching back: each run moves forward until Complete, or
// drops into Errored on an unrecoverable fault.
type State string

const (
	StateIntentPending        State = "INTENT_PENDING"
	StateRetrievalPending     State = "RETRIEVAL_PENDING"
	StateAnalysisPending      State = "ANALYSIS_PENDING"
	StateVisualizationPending State = "VISUALIZATION_PENDING"
	StateComplete             State = "COMPLETE"
	StateErrored              State = "ERRORED"
)

// Report is the assembled output of one workflow run. A report is always
// produced: degraded stages fill their slot with the documented
// placeholder payloads instead of aborting the run.
type Report struct {
	UserQuery           string                   `json:"user_query"`
	Intent              *agents.IntentResult     `json:"intent"`
	RetrievedChunks     retrieval.RetrievalBatch `json:"retrieved_chunks"`
	Analysis            *agents.AnalysisResult   `json:"analysis"`
	Visualizations      []agents.ChartArtifact   `json:"visualizations"`
	VisualizationTables []agents.TableArtifact   `json:"visualization_tables"`
	ConversationID      string                   `json:"conversation_id,omitempty"`
	FinalOutput         string                   `json:"final_output"`
	State               State                    `json:"state"`
	Error               string                   `json:"error,omitempty"`
}

// Orchestrator sequences intent classification, retrieval, analysis and
// visualization over one query. Collaborator failures degrade locally;
// only an unexpected internal fault reaches the Errored state.
type Orchestrator struct {
	classifier agents.IntentClassifier
	retriever  *agents.RetrieverAgent
	analyzer   agents.Analyzer
	visualizer agents.Visualizer
	logger     *log.Logger
}

func NewOrchestrator(
	classifier agents.IntentClassifier,
	retriever *agents.RetrieverAgent,
	analyzer agents.Analyzer,
	visualizer agents.Visualizer,
	logger *log.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		retriever:  retriever,
		analyzer:   analyzer,
		visualizer: visualizer,
		logger:     logger,
	}
}

// Run executes the full workflow synchronously and always returns a
// report. Errored runs carry the error string and the "Workflow failed."
// final output.
func (o *Orchestrator) Run(ctx context.Context, query string, queryVector []float32, conversationID string, history []llm.Message) (report *Report) {
	state := StateIntentPending

	defer func() {
		if r := recover(); r != nil {
			fatal := &WorkflowFatalError{Stage: state, Err: fmt.Errorf("%v", r)}
			o.logger.Printf("[ERROR] %v", fatal)
			report = erroredReport(query, conversationID, fatal)
		}
	}()

	if err := ctx.Err(); err != nil {
		return erroredReport(query, conversationID, &WorkflowFatalError{Stage: state, Err: err})
	}

	// Stage 1: classification failure is non-fatal, falls back to descriptive
	intent, clsErr := o.classifier.Classify(ctx, query)
	if clsErr != nil {
		o.logger.Printf("[WARN] Workflow step 1 degraded: %v", clsErr)
	}
	o.logger.Printf("[INFO] Workflow step 1: intent classified as %s", intent.Intent)

	state = StateRetrievalPending
	batch := o.retriever.Retrieve(ctx, query, queryVector, intent.Intent)
	o.logger.Printf("[INFO] Workflow step 2: retrieved %d chunks (strategy=%s)", len(batch.Chunks), batch.Strategy)

	state = StateAnalysisPending
	analysis, anErr := o.analyzer.Analyze(ctx, batch.Chunks, history, intent.Intent)
	if anErr != nil {
		o.logger.Printf("[WARN] Workflow step 3 degraded: %v", anErr)
	}

	state = StateVisualizationPending
	visual, visErr := o.visualizer.Visualize(ctx, analysis.Insights, batch.Chunks)
	if visErr != nil {
		o.logger.Printf("[WARN] Workflow step 4 degraded: %v", visErr)
		visual = agents.EmptyVisualResult()
	}

	state = StateComplete
	o.logger.Printf("[INFO] Workflow completed")

	return &Report{
		UserQuery:           query,
		Intent:              intent,
		RetrievedChunks:     batch,
		Analysis:            analysis,
		Visualizations:      visual.Visualizations,
		VisualizationTables: visual.Tables,
		ConversationID:      conversationID,
		FinalOutput:         analysis.DraftReport,
		State:               StateComplete,
	}
}

func erroredReport(query, conversationID string, err error) *Report {
	return &Report{
		UserQuery:      query,
		ConversationID: conversationID,
		FinalOutput:    "Workflow failed.",
		State:          StateErrored,
		Error:          err.Error(),
	}
}
