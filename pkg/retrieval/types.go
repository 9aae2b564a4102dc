package retrieval

// Modality tags a candidate with the source index it came from.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// Candidate is a single scored result from one retrieval source.
// The score is source-local and not comparable across modalities
// until a fusion step normalizes it.
type Candidate struct {
	ID          string                 `json:"id"`
	Score       float64                `json:"score"`
	Modality    Modality               `json:"modality"`
	Metadata    map[string]interface{} `json:"metadata"`
	TextExcerpt string                 `json:"text_excerpt"`
}

// FusedResult is a candidate after fusion. Ordering by FusedScore
// (or RerankScore when Reranked) is the only consumer-visible ranking.
type FusedResult struct {
	Candidate
	FusedScore  float64 `json:"fused_score"`
	RerankScore float64 `json:"rerank_score,omitempty"`
	Reranked    bool    `json:"reranked,omitempty"`
}

// Strategy identifies which retrieval path produced a batch.
type Strategy string

const (
	StrategyMultimodal Strategy = "multimodal"
	StrategyHybrid     Strategy = "hybrid"
	StrategyFailed     Strategy = "failed"
)

// RetrievalBatch is the immutable result of one retrieval call.
type RetrievalBatch struct {
	Chunks         []FusedResult `json:"chunks"`
	TotalRetrieved int           `json:"total_retrieved"`
	Strategy       Strategy      `json:"strategy"`
	Reranked       bool          `json:"reranked"`
}

// FusionMethod selects how multimodal rankings are merged.
type FusionMethod string

const (
	FusionWeighted FusionMethod = "weighted"
	FusionRRF      FusionMethod = "rrf"
)

// FailedBatch returns the batch used when retrieval itself is unavailable.
// Empty results from a healthy backend are NOT a failed batch.
func FailedBatch() RetrievalBatch {
	return RetrievalBatch{
		Chunks:         []FusedResult{},
		TotalRetrieved: 0,
		Strategy:       StrategyFailed,
	}
}
