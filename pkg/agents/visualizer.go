package agents

import (
	"context"
	"log"
	"regexp"
	"strconv"

	"agentic-bi-be/pkg/retrieval"
)

// ChartArtifact is a renderable chart specification. Artifacts are
// structured data rather than rendered images so any frontend can draw
// them.
type ChartArtifact struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// TableArtifact is a simple header+rows table.
type TableArtifact struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// VisualResult holds the artifacts of the visualization stage.
type VisualResult struct {
	Visualizations []ChartArtifact `json:"visualizations"`
	Tables         []TableArtifact `json:"tables"`
}

// Visualizer turns insights and retrieved chunks into chart/table artifacts.
type Visualizer interface {
	Visualize(ctx context.Context, insights []string, chunks []retrieval.FusedResult) (*VisualResult, error)
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// DataVisualizer extracts numeric series from chunk excerpts and builds
// a bar chart plus an insight table. Failure degrades to empty lists.
type DataVisualizer struct {
	logger *log.Logger
}

var _ Visualizer = &DataVisualizer{}

func NewDataVisualizer(logger *log.Logger) *DataVisualizer {
	return &DataVisualizer{logger: logger}
}

func (v *DataVisualizer) Visualize(ctx context.Context, insights []string, chunks []retrieval.FusedResult) (*VisualResult, error) {
	if err := ctx.Err(); err != nil {
		return EmptyVisualResult(), &VisualizationError{Err: err}
	}

	result := EmptyVisualResult()

	values := extractDataPoints(chunks)
	if len(values) > 0 {
		labels := make([]string, len(values))
		for i := range values {
			labels[i] = strconv.Itoa(i + 1)
		}
		result.Visualizations = append(result.Visualizations, ChartArtifact{
			Type:   "chart",
			Title:  "Extracted Data Points",
			Labels: labels,
			Values: values,
		})
	}

	if len(insights) > 0 {
		rows := make([][]string, len(insights))
		for i, insight := range insights {
			rows[i] = []string{insight}
		}
		result.Tables = append(result.Tables, TableArtifact{
			Title:   "Key Insights",
			Headers: []string{"Insight"},
			Rows:    rows,
		})
	}

	v.logger.Printf("[VISUAL] Generated %d visualizations and %d tables",
		len(result.Visualizations), len(result.Tables))
	return result, nil
}

// EmptyVisualResult is the degraded payload when visualization fails.
func EmptyVisualResult() *VisualResult {
	return &VisualResult{
		Visualizations: []ChartArtifact{},
		Tables:         []TableArtifact{},
	}
}

func extractDataPoints(chunks []retrieval.FusedResult) []float64 {
	var values []float64
	for _, chunk := range chunks {
		text := chunk.TextExcerpt
		if text == "" {
			if s, ok := chunk.Metadata["text_excerpt"].(string); ok {
				text = s
			}
		}
		for _, match := range numberPattern.FindAllString(text, -1) {
			if v, err := strconv.ParseFloat(match, 64); err == nil {
				values = append(values, v)
			}
		}
	}
	return values
}
