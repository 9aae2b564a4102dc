package agents

import (
	"context"
	"testing"

	"agentic-bi-be/pkg/retrieval"
)

func TestVisualizeExtractsDataPoints(t *testing.T) {
	v := NewDataVisualizer(testLogger())
	chunks := []retrieval.FusedResult{
		textChunk("c1", "Revenue grew 14.5 percent to 120"),
		textChunk("c2", "Margin fell by -2"),
	}

	result, err := v.Visualize(context.Background(), []string{"growth insight"}, chunks)
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}

	if len(result.Visualizations) != 1 {
		t.Fatalf("len(Visualizations) = %d, want 1", len(result.Visualizations))
	}
	chart := result.Visualizations[0]
	want := []float64{14.5, 120, -2}
	if len(chart.Values) != len(want) {
		t.Fatalf("Values = %v, want %v", chart.Values, want)
	}
	for i := range want {
		if chart.Values[i] != want[i] {
			t.Errorf("Values[%d] = %f, want %f", i, chart.Values[i], want[i])
		}
	}
	if len(chart.Labels) != len(chart.Values) {
		t.Errorf("labels/values mismatch: %d vs %d", len(chart.Labels), len(chart.Values))
	}

	if len(result.Tables) != 1 {
		t.Fatalf("len(Tables) = %d, want 1", len(result.Tables))
	}
	if result.Tables[0].Rows[0][0] != "growth insight" {
		t.Errorf("table row = %v", result.Tables[0].Rows[0])
	}
}

func TestVisualizeNothingToShow(t *testing.T) {
	v := NewDataVisualizer(testLogger())

	result, err := v.Visualize(context.Background(), nil, []retrieval.FusedResult{
		textChunk("c1", "no numbers here"),
	})
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	if len(result.Visualizations) != 0 || len(result.Tables) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestVisualizeCancelledContext(t *testing.T) {
	v := NewDataVisualizer(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := v.Visualize(ctx, []string{"insight"}, nil)
	if err == nil {
		t.Fatal("expected error on cancelled context")
	}
	if result == nil || len(result.Visualizations) != 0 {
		t.Errorf("expected empty degraded result, got %+v", result)
	}
}
