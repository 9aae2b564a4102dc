package retrieval

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"agentic-bi-be/pkg/llm"
)

// Reranker reorders a candidate set by relevance to the query. The
// returned candidates carry a descending rerank score and are truncated
// to topK. Reranking is optional at the orchestration layer: errors
// degrade to the pre-rerank order.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Candidate, error)
}

// LLMReranker asks the model to rank snippet indices by relevance.
type LLMReranker struct {
	provider llm.LLMProvider
	logger   *log.Logger
}

var _ Reranker = &LLMReranker{}

func NewLLMReranker(provider llm.LLMProvider, logger *log.Logger) *LLMReranker {
	return &LLMReranker{
		provider: provider,
		logger:   logger,
	}
}

func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	prompt := buildRerankPrompt(query, candidates)
	response, err := r.provider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		return nil, fmt.Errorf("rerank generation: %w", err)
	}

	order := parseRankOrder(response, len(candidates))
	if len(order) == 0 {
		return nil, fmt.Errorf("rerank: no valid indices in response %q", truncate(response, 120))
	}

	ranked := make([]Candidate, 0, len(order))
	for pos, idx := range order {
		c := candidates[idx]
		// Positional score so downstream ordering stays explicit
		c.Score = float64(len(order) - pos)
		ranked = append(ranked, c)
	}

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func buildRerankPrompt(query string, candidates []Candidate) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Given the user query:\n\n%q\n\n", query))
	sb.WriteString("Rank the following document snippets in order of relevance. ")
	sb.WriteString("Return a comma-separated list of indices, most relevant first.\n\nSnippets:\n")

	for i, c := range candidates {
		snippet := strings.ReplaceAll(c.TextExcerpt, "\n", " ")
		sb.WriteString(fmt.Sprintf("[%d] %s\n", i, truncate(snippet, 500)))
	}
	sb.WriteString("\nAnswer:")
	return sb.String()
}

// parseRankOrder accepts "0,2,1" or "1 0 2" and drops out-of-range or
// duplicate indices.
func parseRankOrder(response string, n int) []int {
	fields := strings.FieldsFunc(response, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})

	seen := make(map[int]bool, n)
	order := make([]int, 0, n)
	for _, f := range fields {
		idx, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		order = append(order, idx)
	}
	return order
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// rerankFused applies the reranker to a fused list and maps the scores
// back onto FusedResults sorted by rerank score.
func rerankFused(ctx context.Context, reranker Reranker, query string, fused []FusedResult, topK int) ([]FusedResult, error) {
	candidates := make([]Candidate, len(fused))
	byID := make(map[string]FusedResult, len(fused))
	for i, f := range fused {
		candidates[i] = f.Candidate
		byID[f.ID] = f
	}

	ranked, err := reranker.Rerank(ctx, query, candidates, topK)
	if err != nil {
		return nil, err
	}

	out := make([]FusedResult, 0, len(ranked))
	for _, c := range ranked {
		f := byID[c.ID]
		f.RerankScore = c.Score
		f.Reranked = true
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RerankScore > out[j].RerankScore
	})
	return out, nil
}
