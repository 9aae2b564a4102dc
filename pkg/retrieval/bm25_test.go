package retrieval

import (
	"testing"
)

func corpus() []BM25Document {
	return []BM25Document{
		{ID: "d1", Text: "Quarterly revenue grew across all regions"},
		{ID: "d2", Text: "Revenue in APAC declined while EMEA revenue grew"},
		{ID: "d3", Text: "Headcount planning for the next fiscal year"},
		{ID: "d4", Text: "Marketing spend and revenue attribution"},
	}
}

func TestBM25QueryRanksTermMatches(t *testing.T) {
	idx := NewBM25Index(corpus())

	results := idx.Query("revenue", 4)
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	// d2 mentions revenue twice, it must outrank single-mention docs.
	if results[0].ID != "d2" {
		t.Errorf("top result = %s, want d2", results[0].ID)
	}

	// d3 has no match and must score zero, sorted last.
	if results[3].ID != "d3" {
		t.Errorf("last result = %s, want d3", results[3].ID)
	}
	if results[3].Score != 0 {
		t.Errorf("non-matching doc score = %f, want 0", results[3].Score)
	}
}

func TestBM25QueryTopKTruncates(t *testing.T) {
	idx := NewBM25Index(corpus())

	results := idx.Query("revenue", 2)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
}

func TestBM25TiesKeepCorpusOrder(t *testing.T) {
	docs := []BM25Document{
		{ID: "a", Text: "alpha beta"},
		{ID: "b", Text: "alpha beta"},
		{ID: "c", Text: "alpha beta"},
	}
	idx := NewBM25Index(docs)

	results := idx.Query("alpha", 3)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for i, want := range []string{"a", "b", "c"} {
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %s, want %s", i, results[i].ID, want)
		}
	}
}

func TestBM25EmptyCases(t *testing.T) {
	tests := []struct {
		name  string
		docs  []BM25Document
		query string
		topK  int
	}{
		{"empty corpus", nil, "revenue", 5},
		{"zero topk", corpus(), "revenue", 0},
		{"negative topk", corpus(), "revenue", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewBM25Index(tt.docs)
			results := idx.Query(tt.query, tt.topK)
			if len(results) != 0 {
				t.Errorf("len(results) = %d, want 0", len(results))
			}
		})
	}
}

func TestBM25UnknownTermsScoreZero(t *testing.T) {
	idx := NewBM25Index(corpus())

	results := idx.Query("zzzunknown", 4)
	for _, r := range results {
		if r.Score != 0 {
			t.Errorf("doc %s score = %f, want 0", r.ID, r.Score)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Revenue grew 14%", []string{"revenue", "grew", "14"}},
		{"EMEA/APAC split", []string{"emea", "apac", "split"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}
