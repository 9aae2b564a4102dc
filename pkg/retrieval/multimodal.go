package retrieval

import (
	"context"
	"log"
	"sort"
	"sync"
)

// rrfConstant is the standard Reciprocal Rank Fusion smoothing parameter.
const rrfConstant = 60

// MultimodalRetriever queries the text and image collections, fuses the
// two rankings with the selected method, and optionally reranks.
type MultimodalRetriever struct {
	text        *DenseRetriever
	image       *DenseRetriever
	reranker    Reranker // nil when reranking is disabled
	textWeight  float64
	imageWeight float64
	logger      *log.Logger
}

func NewMultimodalRetriever(text, image *DenseRetriever, reranker Reranker, textWeight, imageWeight float64, logger *log.Logger) *MultimodalRetriever {
	if textWeight <= 0 && imageWeight <= 0 {
		textWeight, imageWeight = 0.5, 0.5
	}
	return &MultimodalRetriever{
		text:        text,
		image:       image,
		reranker:    reranker,
		textWeight:  textWeight,
		imageWeight: imageWeight,
		logger:      logger,
	}
}

// Retrieve dispatches both modality lookups concurrently, joins them, and
// returns the fused top-K. The fusion method is caller-selected, never
// silently switched. Reranking failure degrades to the pre-rerank order.
func (m *MultimodalRetriever) Retrieve(ctx context.Context, query string, queryVector []float32, topK int, method FusionMethod) ([]FusedResult, bool, error) {
	var (
		wg                sync.WaitGroup
		textRes, imageRes []Candidate
		textErr, imageErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		textRes, textErr = m.text.Retrieve(ctx, queryVector, topK, nil)
	}()
	go func() {
		defer wg.Done()
		imageRes, imageErr = m.image.Retrieve(ctx, queryVector, topK, nil)
	}()
	wg.Wait()

	if textErr != nil && imageErr != nil {
		return []FusedResult{}, false, textErr
	}
	if textErr != nil {
		m.logger.Printf("[WARN] Text retrieval failed, using image results only: %v", textErr)
	}
	if imageErr != nil {
		m.logger.Printf("[WARN] Image retrieval failed, using text results only: %v", imageErr)
	}

	var fused []FusedResult
	switch method {
	case FusionRRF:
		fused = FuseRRF(textRes, imageRes)
	default:
		fused = FuseWeighted(textRes, imageRes, m.textWeight, m.imageWeight)
	}

	if len(fused) > topK {
		fused = fused[:topK]
	}

	if m.reranker == nil || len(fused) == 0 {
		return fused, false, nil
	}

	reranked, err := rerankFused(ctx, m.reranker, query, fused, topK)
	if err != nil {
		m.logger.Printf("[WARN] Reranking failed, keeping fused order: %v", err)
		return fused, false, nil
	}
	return reranked, true, nil
}

// NormalizeScores min-max normalizes one modality's scores into [0,1].
// A constant list (max == min) normalizes every entry to 1.0.
func NormalizeScores(results []Candidate) []float64 {
	norms := make([]float64, len(results))
	if len(results) == 0 {
		return norms
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	for i, r := range results {
		if maxScore == minScore {
			norms[i] = 1.0
		} else {
			norms[i] = (r.Score - minScore) / (maxScore - minScore)
		}
	}
	return norms
}

// FuseWeighted normalizes each modality independently and scales by the
// modality weight. Candidates pass through unmodified apart from the
// computed fused score; an id seen in the text list wins over a later
// image entry with the same id.
func FuseWeighted(text, image []Candidate, textWeight, imageWeight float64) []FusedResult {
	textNorms := NormalizeScores(text)
	imageNorms := NormalizeScores(image)

	seen := make(map[string]struct{}, len(text)+len(image))
	fused := make([]FusedResult, 0, len(text)+len(image))
	for i, c := range text {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		fused = append(fused, FusedResult{Candidate: c, FusedScore: textNorms[i] * textWeight})
	}
	for i, c := range image {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		fused = append(fused, FusedResult{Candidate: c, FusedScore: imageNorms[i] * imageWeight})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].FusedScore > fused[j].FusedScore
	})
	return fused
}

// FuseRRF merges rank-ordered modality lists with Reciprocal Rank Fusion:
// each list contributes 1/(60+rank) with rank starting at 1, and an id
// appearing in both modalities accumulates both contributions.
func FuseRRF(text, image []Candidate) []FusedResult {
	byID := make(map[string]*FusedResult, len(text)+len(image))
	order := make([]string, 0, len(text)+len(image))

	accumulate := func(list []Candidate) {
		for rank, c := range list {
			rrf := 1.0 / float64(rrfConstant+rank+1)
			if existing, ok := byID[c.ID]; ok {
				existing.FusedScore += rrf
				continue
			}
			byID[c.ID] = &FusedResult{Candidate: c, FusedScore: rrf}
			order = append(order, c.ID)
		}
	}
	accumulate(text)
	accumulate(image)

	fused := make([]FusedResult, 0, len(order))
	for _, id := range order {
		fused = append(fused, *byID[id])
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].FusedScore > fused[j].FusedScore
	})
	return fused
}
