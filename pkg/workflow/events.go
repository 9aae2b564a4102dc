package workflow

// EventType tags a streamed workflow event.
type EventType string

const (
	EventStatus  EventType = "status"
	EventPartial EventType = "partial"
	EventFinal   EventType = "final"
	EventError   EventType = "error"
)

// Stage markers emitted as status events, in strict temporal order.
const (
	StageIntentStart    = "intent_start"
	StageIntentDone     = "intent_done"
	StageRetrievalStart = "retrieval_start"
	StageRetrievalDone  = "retrieval_done"
	StageAnalysisStart  = "analysis_start"
	StageAnalysisDone   = "analysis_done"
	StageVisualStart    = "visual_start"
	StageVisualDone     = "visual_done"
)

// Event is one record in a workflow's progress stream. The stream is
// single-producer, ordered, and never replayed: after an error event no
// further events follow.
type Event struct {
	Type    EventType `json:"type"`
	Stage   string    `json:"stage,omitempty"`
	Content string    `json:"content,omitempty"`
	Report  *Report   `json:"report,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func statusEvent(stage string) Event {
	return Event{Type: EventStatus, Stage: stage}
}

func partialEvent(content string) Event {
	return Event{Type: EventPartial, Content: content}
}

func errorEvent(err error) Event {
	return Event{Type: EventError, Error: err.Error()}
}
