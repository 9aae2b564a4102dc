package retrieval

import (
	"context"
	"errors"
	"testing"

	"agentic-bi-be/pkg/llm"
)

// fakeLLM returns a canned completion.
type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func TestParseRankOrder(t *testing.T) {
	tests := []struct {
		name     string
		response string
		n        int
		want     []int
	}{
		{"comma separated", "2,0,1", 3, []int{2, 0, 1}},
		{"space separated", "1 0 2", 3, []int{1, 0, 2}},
		{"drops out of range", "0,5,1", 3, []int{0, 1}},
		{"drops duplicates", "0,0,1", 3, []int{0, 1}},
		{"prose around indices", "Ranking: 1, 0", 2, []int{1, 0}},
		{"garbage", "no indices here", 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRankOrder(tt.response, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("parseRankOrder(%q) = %v, want %v", tt.response, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("order[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLLMRerankerReorders(t *testing.T) {
	candidates := []Candidate{
		{ID: "a", TextExcerpt: "about cats"},
		{ID: "b", TextExcerpt: "about revenue"},
		{ID: "c", TextExcerpt: "about weather"},
	}
	r := NewLLMReranker(&fakeLLM{response: "1,2,0"}, discardLogger())

	ranked, err := r.Rerank(context.Background(), "revenue trends", candidates, 3)
	if err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("len(ranked) = %d, want 3", len(ranked))
	}
	for i, want := range []string{"b", "c", "a"} {
		if ranked[i].ID != want {
			t.Errorf("ranked[%d].ID = %s, want %s", i, ranked[i].ID, want)
		}
	}
	// Positional scores descend with rank
	if ranked[0].Score <= ranked[1].Score || ranked[1].Score <= ranked[2].Score {
		t.Errorf("scores not descending: %f %f %f", ranked[0].Score, ranked[1].Score, ranked[2].Score)
	}
}

func TestLLMRerankerTruncatesToTopK(t *testing.T) {
	candidates := []Candidate{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}
	r := NewLLMReranker(&fakeLLM{response: "2,1,0"}, discardLogger())

	ranked, err := r.Rerank(context.Background(), "q", candidates, 2)
	if err != nil {
		t.Fatalf("Rerank failed: %v", err)
	}
	if len(ranked) != 2 {
		t.Errorf("len(ranked) = %d, want 2", len(ranked))
	}
}

func TestLLMRerankerErrors(t *testing.T) {
	candidates := []Candidate{{ID: "a"}}

	t.Run("provider failure", func(t *testing.T) {
		r := NewLLMReranker(&fakeLLM{err: errors.New("model offline")}, discardLogger())
		if _, err := r.Rerank(context.Background(), "q", candidates, 1); err == nil {
			t.Error("expected error from provider failure")
		}
	})

	t.Run("unparseable response", func(t *testing.T) {
		r := NewLLMReranker(&fakeLLM{response: "I cannot rank these"}, discardLogger())
		if _, err := r.Rerank(context.Background(), "q", candidates, 1); err == nil {
			t.Error("expected error from unparseable response")
		}
	})

	t.Run("empty candidates pass through", func(t *testing.T) {
		r := NewLLMReranker(&fakeLLM{}, discardLogger())
		ranked, err := r.Rerank(context.Background(), "q", nil, 5)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(ranked) != 0 {
			t.Errorf("len(ranked) = %d, want 0", len(ranked))
		}
	})
}
