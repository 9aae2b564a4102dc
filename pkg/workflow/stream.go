package workflow

import (
	"context"
	"fmt"

	"agentic-bi-be/pkg/llm"
)

// partialChunkSize is the fixed slice length for partial analysis events.
const partialChunkSize = 200

// streamBuffer bounds the producer so a slow consumer applies backpressure
// instead of unbounded memory growth.
const streamBuffer = 16

// RunStream executes the same state machine as Run but emits progress
// events instead of returning once. A stage error produces a single
// error event and closes the stream; no further events follow. The
// channel is closed when the producer is done, and context cancellation
// stops the producer promptly.
func (o *Orchestrator) RunStream(ctx context.Context, query string, queryVector []float32, conversationID string, history []llm.Message) <-chan Event {
	events := make(chan Event, streamBuffer)

	go func() {
		defer close(events)

		emit := func(e Event) bool {
			select {
			case events <- e:
				return true
			case <-ctx.Done():
				return false
			}
		}

		fail := func(err error) {
			o.logger.Printf("[ERROR] Workflow stream terminated: %v", err)
			emit(errorEvent(err))
		}

		defer func() {
			if r := recover(); r != nil {
				fail(&WorkflowFatalError{Stage: StateErrored, Err: recoveredError(r)})
			}
		}()

		// Stage 1: intent. Classification failure falls back, never errors.
		if !emit(statusEvent(StageIntentStart)) {
			return
		}
		intent, clsErr := o.classifier.Classify(ctx, query)
		if clsErr != nil {
			o.logger.Printf("[WARN] Stream intent degraded: %v", clsErr)
		}
		if !emit(statusEvent(StageIntentDone)) {
			return
		}

		// Stage 2: retrieval. Empty results are valid.
		if !emit(statusEvent(StageRetrievalStart)) {
			return
		}
		batch := o.retriever.Retrieve(ctx, query, queryVector, intent.Intent)
		if !emit(statusEvent(StageRetrievalDone)) {
			return
		}

		// Stage 3: analysis. Unlike the synchronous path, a stage error
		// terminates the stream per the event contract.
		if !emit(statusEvent(StageAnalysisStart)) {
			return
		}
		analysis, anErr := o.analyzer.Analyze(ctx, batch.Chunks, history, intent.Intent)
		if anErr != nil {
			fail(anErr)
			return
		}
		for _, slice := range splitPartials(analysis.Analysis) {
			if !emit(partialEvent(slice)) {
				return
			}
		}
		if !emit(statusEvent(StageAnalysisDone)) {
			return
		}

		// Stage 4: visualization.
		if !emit(statusEvent(StageVisualStart)) {
			return
		}
		visual, visErr := o.visualizer.Visualize(ctx, analysis.Insights, batch.Chunks)
		if visErr != nil {
			fail(visErr)
			return
		}
		if !emit(statusEvent(StageVisualDone)) {
			return
		}

		report := &Report{
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
		emit(Event{Type: EventFinal, Report: report})
	}()

	return events
}

// splitPartials cuts the analysis text into fixed-size slices preserving
// byte order.
func splitPartials(text string) []string {
	if text == "" {
		return nil
	}
	var slices []string
	for i := 0; i < len(text); i += partialChunkSize {
		end := i + partialChunkSize
		if end > len(text) {
			end = len(text)
		}
		slices = append(slices, text[i:end])
	}
	return slices
}

func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
