package retrieval

import (
	"context"
	"log"
	"sort"

	"agentic-bi-be/pkg/vectorstore"
)

// HybridRetriever merges dense and BM25 rankings for text queries.
// Both sources are overfetched at 2x topK before fusion.
type HybridRetriever struct {
	dense       *DenseRetriever
	lexical     *BM25Index
	denseWeight float64
	bm25Weight  float64
	logger      *log.Logger
}

func NewHybridRetriever(dense *DenseRetriever, lexical *BM25Index, denseWeight, bm25Weight float64, logger *log.Logger) *HybridRetriever {
	if denseWeight <= 0 && bm25Weight <= 0 {
		denseWeight, bm25Weight = 0.6, 0.4
	}
	return &HybridRetriever{
		dense:       dense,
		lexical:     lexical,
		denseWeight: denseWeight,
		bm25Weight:  bm25Weight,
		logger:      logger,
	}
}

// Search runs both sources concurrently and fuses by weighted sum.
// A dense backend failure is not fatal while the lexical index can
// still answer; a missing dense score contributes 0.
func (h *HybridRetriever) Search(ctx context.Context, query string, queryVector []float32, topK int, filter vectorstore.Filter) ([]FusedResult, error) {
	fetch := topK * 2

	var dense []Candidate
	var denseErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		dense, denseErr = h.dense.Retrieve(ctx, queryVector, fetch, filter)
	}()

	lexical := h.lexical.Query(query, fetch)
	<-done

	if denseErr != nil {
		h.logger.Printf("[WARN] Dense retrieval failed, fusing lexical only: %v", denseErr)
		if len(lexical) == 0 {
			return []FusedResult{}, denseErr
		}
	}

	fused := FuseHybrid(dense, lexical, h.denseWeight, h.bm25Weight)
	if len(fused) > topK {
		fused = fused[:topK]
	}
	return fused, nil
}

// FuseHybrid combines dense and lexical candidate lists.
// Every id present in the BM25 list scores dw*dense + bw*bm25 (dense
// treated as 0 when absent); dense-only ids score dw*dense. The output
// is sorted descending, ties keeping input order.
func FuseHybrid(dense, lexical []Candidate, denseWeight, bm25Weight float64) []FusedResult {
	denseByID := make(map[string]Candidate, len(dense))
	for _, c := range dense {
		if _, ok := denseByID[c.ID]; !ok {
			denseByID[c.ID] = c
		}
	}

	combined := make([]FusedResult, 0, len(dense)+len(lexical))
	seen := make(map[string]bool, len(dense)+len(lexical))

	for _, lex := range lexical {
		if seen[lex.ID] {
			continue
		}
		seen[lex.ID] = true

		base := lex
		denseScore := 0.0
		if d, ok := denseByID[lex.ID]; ok {
			denseScore = d.Score
			base = d
			if base.TextExcerpt == "" {
				base.TextExcerpt = lex.TextExcerpt
			}
		}

		combined = append(combined, FusedResult{
			Candidate:  base,
			FusedScore: denseWeight*denseScore + bm25Weight*lex.Score,
		})
	}

	for _, d := range dense {
		if seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		combined = append(combined, FusedResult{
			Candidate:  d,
			FusedScore: denseWeight * d.Score,
		})
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].FusedScore > combined[j].FusedScore
	})
	return combined
}
